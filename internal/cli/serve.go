package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/internal/api"
	"github.com/matzehuels/ganttsync/internal/config"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, analyze and edit API over HTTP",
		Long: `Serve starts an HTTP server exposing the engine as JSON endpoints:

  GET  /healthz
  GET  /v1/ops
  POST /v1/parse
  POST /v1/analyze
  POST /v1/edit/{op}

The address and timeouts come from the [server] table of the
configuration. Stop with Ctrl-C; in-flight requests get five seconds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			srv := api.New(runner, c.Logger, api.Config{
				Addr:         cfg.Addr,
				ReadTimeout:  cfg.ReadTimeout.Duration,
				WriteTimeout: cfg.WriteTimeout.Duration,
				MaxBodyBytes: cfg.MaxBodyBytes,
			})
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultServerAddr+")")
	return cmd
}
