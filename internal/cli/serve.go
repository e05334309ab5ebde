package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ordersdash/internal/app"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serve reports over HTTP. The configured Summary and Secondary files are
available as dataset "default"; more pairs can be uploaded to /api/datasets.`,
		Example: `  # Serve on the configured port
  ordersdash serve

  # Serve on another port
  ordersdash serve --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd.Context())
			if cmd.Flags().Changed("port") {
				e.cfg.Server.Port = port
			}
			if err := e.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := e.paths.EnsureDirectories(); err != nil {
				return err
			}

			application, err := app.NewApplication(e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e.logger.Info("starting server", slog.Int("port", e.cfg.Server.Port))
			return application.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
