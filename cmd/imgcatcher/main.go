package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cwygoda/imgcatcher/cmd/imgcatcher/commands"
)

func main() {
	// Interrupt stops dispatch of new downloads; in-flight tasks finish
	// and the partial summary still prints.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
