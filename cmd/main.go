package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kilometers.ai/bdv-viewer/internal/interfaces/cli"
	"kilometers.ai/bdv-viewer/internal/interfaces/di"
)

func main() {
	container, err := di.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Cancelling the context kills a running build or viewer.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, container.CLIContainer, os.Args[1:])
	cancel()
	os.Exit(code)
}
