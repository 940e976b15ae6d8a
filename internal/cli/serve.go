package cli

import (
	"github.com/spf13/cobra"

	"github.com/saltiyazan/charmhub-scrape/internal/server"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags scanFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the survey over HTTP",
		Long: `Serve starts an HTTP API over the latest survey pass. The first pass runs
in the background on startup; POST /api/survey/refresh runs another.`,
		Example: `  charmscan serve --addr :8080
  curl localhost:8080/api/survey?sort=platform&order=desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, flags.serviceOptions())
			if err != nil {
				return err
			}
			defer svc.Close()

			if addr == "" {
				addr = c.Config.Server.Addr
			}

			view := survey.NewView(svc.runner, c.passOptions(&flags))
			go func() {
				if err := view.Refresh(ctx, false); err != nil {
					c.Logger.Error("initial survey failed", "err", err)
				}
			}()

			srv := server.New(view, svc.resolver, svc.prober, c.Logger)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
