package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iamunixtz/jshunter-agent/pkg/cli"
)

func main() {
	// Ctrl-C cancels in-flight pipeline runs; each run cleans up its own
	// temp file on the way out and observe sweeps leftovers afterwards.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
