package config

import "time"

type Config struct {
	APIURL         string        `flag:"api-url"`
	LogLevel       string        `flag:"log-level"`
	PageSize       int           `flag:"page-size"`
	RequestTimeout time.Duration `flag:"request-timeout"`
	MetricsAddr    string        `flag:"metrics-addr"`
}
