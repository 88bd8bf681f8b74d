package cli

import (
	"github.com/gmsas95/arogya-cli/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := app.SignalContext()
			defer stop()

			a.Logger.Info("Starting Arogya reminders", zap.String("version", c.version))
			return a.RunDaemon(ctx)
		},
	}
}

func (c *CLI) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder daemon and the local API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := app.SignalContext()
			defer stop()

			a.Logger.Info("Starting Arogya server",
				zap.String("version", c.version),
				zap.String("backend", a.Backend.BaseURL()))
			return a.RunServer(ctx, c.configPath)
		},
	}
}

func (c *CLI) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.printf("Arogya version %s\n", c.version)
		},
	}
}
