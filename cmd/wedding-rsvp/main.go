package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wedding-rsvp/internal/cli"
	"wedding-rsvp/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, log, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
