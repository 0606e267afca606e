package cmd

import (
	"context"

	"osusume/internal/api"
	"osusume/internal/cache"
	"osusume/internal/cmd/flags"
	"osusume/internal/console"
	"osusume/internal/core"
	"osusume/internal/metrics"
	"osusume/internal/session"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var consoleCmd = &cli.Command{
	Name:  "console",
	Usage: "Start the interactive console",
	Flags: []cli.Flag{
		flags.APIURL,
		flags.PageSize,
		flags.RequestTimeout,
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide[core.PlatformAPI](&api.Client{}),
			pal.Provide(&cache.Store{}),
			pal.Provide(&session.Session{}),
			pal.Provide(&console.Console{}),
			pal.Provide(&metrics.HTTPServer{}),
		)
	},
}
