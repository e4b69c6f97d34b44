package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/waves/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := newApp(runner)

	err := app.Run(ctx, os.Args)
	runner.Close(context.WithoutCancel(ctx))

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(130)
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrLoginRequired):
		logger.Error(err)
		os.Exit(2)
	default:
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command; running it without a subcommand opens the player.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "waves",
		Usage:   "Browse, preview and play Spotify tracks from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Commands: r.register(),
		Action:   r.Play,
	}
}
