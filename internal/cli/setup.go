package cli

import (
	"fmt"

	"github.com/gmsas95/arogya-cli/internal/config"
	"github.com/gmsas95/arogya-cli/internal/onboarding"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Run the setup wizard and write arogya.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := c.dataDir
			if dataDir == "" {
				dataDir = config.GetEnvDefault("AROGYA_STORAGE_DATA_DIR", config.DefaultDataDir())
			}
			if !force && !onboarding.CheckFirstRun(dataDir) {
				return fmt.Errorf("%s already exists, rerun with --force to overwrite", onboarding.ConfigPath(dataDir))
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			w := onboarding.NewWizard(c.in, c.out, logger)
			if c.reader != nil {
				w = onboarding.NewWizard(c.reader, c.out, logger)
			}
			_, err = w.Run(dataDir)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
