package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/internal/server"
	"github.com/matzehuels/kitchenplan/pkg/observability/metrics"
)

// serveCommand runs the HTTP tool-call server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		noCache   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the kitchen tools over HTTP",
		Long: `Serve the kitchen tools over HTTP.

Endpoints:
  GET  /v1/tools             tool definitions
  POST /v1/tools/{name}      call a tool with a JSON argument object
  GET  /v1/kitchens/{id}     fetch a stored config
  GET  /healthz              liveness
  GET  /metrics              Prometheus metrics (unless --no-metrics)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := c.settings()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.Server.Addr
			}
			runner, err := c.runnerFor(ctx, s, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var opts server.Options
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics.New(reg).Register()
				opts.Registry = reg
			}

			prog := newProgress(logger)
			logger.Info("starting server", "store", s.Store.Backend, "metrics", !noMetrics)
			if err := server.New(runner, logger, opts).ListenAndServe(ctx, addr); err != nil {
				return err
			}
			prog.done("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: settings server.addr)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
