// Package main is the entry point of the arrivals CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/new-arrivals-chi/arrivals/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
