package cli

import (
	"github.com/gmsas95/arogya-cli/internal/survey"
	"github.com/spf13/cobra"
)

func (c *CLI) surveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Build patient surveys from YAML definitions",
	}

	preview := &cobra.Command{
		Use:   "preview <file.yaml>",
		Short: "Render a survey definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := survey.LoadFile(args[0])
			if err != nil {
				return err
			}
			c.println(b.Preview())
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save <file.yaml>",
		Short: "Post a survey definition to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := survey.LoadFile(args[0])
			if err != nil {
				return err
			}
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Save(cmd.Context(), a.Backend); err != nil {
				return err
			}
			c.printf("✓ Saved survey %q with %d question(s)\n", b.Payload().Name, len(b.Questions()))
			return nil
		},
	}

	kinds := &cobra.Command{
		Use:   "kinds",
		Short: "List question types and how they are sent",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range survey.Kinds {
				c.printf("%-16s -> %s\n", k, survey.BackendType(k))
			}
		},
	}

	cmd.AddCommand(preview, save, kinds)
	return cmd
}
