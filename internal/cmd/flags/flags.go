package flags

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var APIURL = &cli.StringFlag{
	Name:    "api-url",
	Aliases: []string{"u"},
	Usage:   "The base URL of the platform API",
	Value:   "http://localhost:8000",
	Sources: cli.EnvVars("OSUSUME_API_URL"),
}

var PageSize = &cli.IntFlag{
	Name:    "page-size",
	Usage:   "The number of posts requested per page",
	Value:   10,
	Validator: func(value int) error {
		if value < 1 {
			return fmt.Errorf("page size must be positive, got %d", value)
		}
		return nil
	},
	Sources: cli.EnvVars("OSUSUME_PAGE_SIZE"),
}

var RequestTimeout = &cli.DurationFlag{
	Name:    "request-timeout",
	Usage:   "The timeout of a single API request",
	Value:   10 * time.Second,
	Sources: cli.EnvVars("OSUSUME_REQUEST_TIMEOUT"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "The listen address of the Prometheus metrics endpoint, empty disables it",
	Value:   "",
	Sources: cli.EnvVars("OSUSUME_METRICS_ADDR"),
}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("OSUSUME_LOG_LEVEL"),
}
