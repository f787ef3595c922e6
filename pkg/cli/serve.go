package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/recordsd/pkg/engine"
)

// serveBindings maps configuration keys to serve flags.
var serveBindings = map[string]string{
	"site.addr":                    "site-addr",
	"site.baseURL":                 "site-url",
	"data.addr":                    "data-addr",
	"data.baseURL":                 "data-url",
	"query.methodNotAllowedStatus": "reject-status",
	"cache.redisAddr":              "redis-addr",
}

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the site and data servers",
		Long: `Start the site and data servers and run until interrupted.

Examples:
  recordsd serve
  recordsd serve --site-addr 0.0.0.0:3000 --site-url http://localhost:3000
  recordsd serve --reject-status 405 --redis-addr localhost:6379`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g, serveBindings)
			if err != nil {
				return err
			}
			log := newLogger(cmd, cfg)

			e, err := engine.New(cfg, engine.WithLogger(log))
			if err != nil {
				return err
			}
			if err := e.Listen(); err != nil {
				return err
			}

			effective := e.Config()
			fmt.Fprintf(stdout(cmd), "site: %s\ndata: %s\n", effective.Site.BaseURL, effective.Data.BaseURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}

	f := cmd.Flags()
	f.String("site-addr", "", "Site server listen address")
	f.String("site-url", "", "Base URL of the site server")
	f.String("data-addr", "", "Data server listen address")
	f.String("data-url", "", "Base URL of the data server")
	f.Int("reject-status", 403, "Status answered to non-GET collection requests (403 or 405)")
	f.String("redis-addr", "", "Redis address of the response cache (disabled when empty)")
	return cmd
}

func serve(ctx context.Context, e *engine.Engine) error {
	if err := e.Serve(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
