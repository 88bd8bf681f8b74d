// Package cli is the arogya command tree.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gmsas95/arogya-cli/internal/app"
	"github.com/gmsas95/arogya-cli/internal/config"
	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/gmsas95/arogya-cli/internal/onboarding"
	"github.com/gmsas95/arogya-cli/internal/store"
	"github.com/spf13/cobra"
)

var Version = "dev"

// Opener builds the application for a command run.
type Opener func(ctx context.Context, configPath, dataDir string) (*app.App, error)

// CLI carries state shared by every command in one invocation.
type CLI struct {
	version    string
	configPath string
	dataDir    string
	strict     bool

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	open   Opener
	style  styles

	app   *app.App
	owned bool
}

type Option func(*CLI)

// WithApp runs commands against an already wired app. The caller closes it.
func WithApp(a *app.App) Option {
	return func(c *CLI) {
		c.app = a
		c.owned = false
	}
}

// WithIO redirects prompts and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *CLI) {
		c.in = in
		c.out = out
	}
}

// WithOpener replaces how the app is built.
func WithOpener(open Opener) Option {
	return func(c *CLI) { c.open = open }
}

func newCLI(version string, opts ...Option) *CLI {
	c := &CLI{
		version: version,
		in:      os.Stdin,
		out:     os.Stdout,
		open:    openApp,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.style = newStyles(c.out)
	return c
}

func openApp(ctx context.Context, configPath, dataDir string) (*app.App, error) {
	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	a, err := app.New(cfg, st, logger, Version, app.Options{})
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// App returns the application, opening it on first use.
func (c *CLI) App(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.open(ctx, c.configPath, c.dataDir)
	if err != nil {
		return nil, err
	}
	c.app = a
	c.owned = true
	return a, nil
}

func (c *CLI) Close() {
	if c.app == nil || !c.owned {
		return
	}
	c.app.Logger.Sync()
	c.app.Close()
	c.app = nil
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string, opts ...Option) (*cobra.Command, *CLI) {
	c := newCLI(version, opts...)

	root := &cobra.Command{
		Use:           "arogya",
		Short:         "Vaccination records, medicine reminders and clinic booking from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.RunE = func(cmd *cobra.Command, args []string) error {
		dataDir := c.dataDir
		if dataDir == "" {
			dataDir = config.GetEnvDefault("AROGYA_STORAGE_DATA_DIR", config.DefaultDataDir())
		}
		if onboarding.CheckFirstRun(dataDir) {
			c.println("👋 First time here? Run: arogya init")
			c.println()
		}
		return cmd.Help()
	}
	root.SetIn(c.in)
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to config file")
	flags.StringVar(&c.dataDir, "data", "", "Path to data directory")
	flags.BoolVar(&c.strict, "strict", false, "Fail on backend errors instead of showing empty lists")

	root.AddCommand(
		c.initCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.signupCmd(),
		c.healthCmd(),
		c.statusCmd(),
		c.vaccinesCmd(),
		c.recordsCmd(),
		c.dueCmd(),
		c.plansCmd(),
		c.surveyCmd(),
		c.doctorsCmd(),
		c.specialtiesCmd(),
		c.slotsCmd(),
		c.bookCmd(),
		c.remindCmd(),
		c.serveCmd(),
		c.versionCmd(),
	)
	return root, c
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	root, c := NewRootCommand(Version)
	defer c.Close()

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.UserMessage(err))
		return 1
	}
	return 0
}
