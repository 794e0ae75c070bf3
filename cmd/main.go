package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/spotlists/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatalf("application error: %v", err)
	}
}
