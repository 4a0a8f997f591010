package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"formatrisk/internal/services"
)

func main() {
	os.Exit(run())
}

// run executes the root command with a context that is cancelled on
// SIGINT/SIGTERM so an interrupted analysis stops the FITS child process.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "formatrisk: interrupted")
		return 130
	default:
		fmt.Fprintf(os.Stderr, "formatrisk: %s: %v\n", services.Category(err), err)
		return 1
	}
}
