package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in to the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				var err error
				if username, err = c.prompt("Username: "); err != nil {
					return err
				}
			}
			password, err := c.secret("Password: ")
			if err != nil {
				return err
			}

			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Backend.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			c.printf("✓ Signed in as %s\n", username)
			if exp, ok := a.Session.Expiry(cmd.Context()); ok {
				c.printf("  Session expires %s\n", exp.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func (c *CLI) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Backend.Logout(cmd.Context()); err != nil {
				return err
			}
			c.println("✓ Signed out")
			return nil
		},
	}
}

func (c *CLI) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <username> <email>",
		Short: "Create a backend account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.secret("Password: ")
			if err != nil {
				return err
			}
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Backend.Signup(cmd.Context(), args[0], args[1], password); err != nil {
				return err
			}
			c.printf("✓ Account created. Sign in with: arogya login %s\n", args[0])
			return nil
		},
	}
}

func (c *CLI) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.PingBackend(cmd.Context()); err != nil {
				return err
			}
			c.printf("✅ Backend reachable at %s\n", a.Backend.BaseURL())
			return nil
		},
	}
}

func (c *CLI) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, session and channel status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.App(cmd.Context())
			if err != nil {
				return err
			}
			cfg := a.Config
			ctx := cmd.Context()

			c.println(c.style.title("Arogya Status"))
			c.printf("Version: %s\n", c.version)
			c.printf("Data:    %s\n", cfg.Storage.DataDir)
			c.printf("Backend: %s\n", a.Backend.BaseURL())
			c.println()

			c.println("Session:")
			if a.Session.SignedIn(ctx) {
				c.println("  ✅ signed in")
				if exp, ok := a.Session.Expiry(ctx); ok {
					c.printf("  Expires: %s\n", exp.Local().Format(time.DateTime))
				}
			} else {
				c.println("  ❌ signed out (run: arogya login)")
			}
			c.println()

			c.println("Reminders:")
			c.printf("  Timezone:   %s\n", cfg.Reminders.Timezone)
			c.printf("  Daily pass: %s\n", cfg.Reminders.DailyCron)
			digest := cfg.Reminders.DigestCron
			if digest == "" {
				digest = "off"
			}
			c.printf("  Digest:     %s\n", digest)
			c.println()

			c.println("Channels:")
			c.printf("  Telegram: %s\n", channelStatus(cfg.Channels.Telegram.Enabled))
			if cfg.Channels.Telegram.Enabled {
				c.printf("    Bot Token: %s\n", maskToken(cfg.Channels.Telegram.BotToken))
			}
			c.printf("  Discord:  %s\n", channelStatus(cfg.Channels.Discord.Enabled))
			if cfg.Channels.Discord.Enabled {
				c.printf("    Token: %s\n", maskToken(cfg.Channels.Discord.Token))
			}
			return nil
		},
	}
}
