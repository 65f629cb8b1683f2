package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})
	err := newApp(runner).Run(ctx, os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close journal", "error", cerr)
	}

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		stop()
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "likesync",
		Usage:   "Copy Spotify liked songs from one account to another",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Configure,
		Commands: r.register(),
	}
}
