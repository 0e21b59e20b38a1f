package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mcoot/samuel/internal/config"
	"github.com/mcoot/samuel/internal/factory"
)

// AppBuilder wires an App from the loaded configuration
type AppBuilder func(cfg *config.Config, logger *slog.Logger) (*factory.App, error)

// env is the state shared by every command of one invocation
type env struct {
	build AppBuilder
	cfg   *config.Config
	app   *factory.App
	out   *Output
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd(factory.New)
	return cmd
}

func newRootCmd(build AppBuilder) (*cobra.Command, *env) {
	e := &env{build: build}

	rootCmd := &cobra.Command{
		Use:   "samuel",
		Short: "Inspect your Steam library and manage achievements",
		Long: `samuel lists the games owned by a Steam account and manages the
achievement state of installed games through the local Steam client.

The owned-games list is cached under DATA_DIR and refreshed when it is older
than CACHE_MAX_AGE. API_KEY and STEAM_ID must be set in the environment or
in a .env file in the working directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.LogLevel,
			}))

			app, err := e.build(cfg, logger)
			if err != nil {
				return err
			}
			e.app = app
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	config.RegisterFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(newGamesCmd(e))
	rootCmd.AddCommand(newAchievementsCmd(e))
	rootCmd.AddCommand(newUpdateCacheCmd(e))

	return rootCmd, e
}

// Run executes one invocation and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, build AppBuilder) int {
	cmd, e := newRootCmd(build)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	if e.app != nil {
		if closeErr := e.app.Close(); closeErr != nil {
			e.app.Logger.Warn("failed to close app", slog.Any("error", closeErr))
		}
	}

	if err == nil {
		return 0
	}
	out := e.out
	if out == nil {
		out = NewOutput(config.OutputText, stdout, stderr)
	}
	out.PrintError(err)
	return 1
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr, factory.New)
	stop()
	os.Exit(code)
}
