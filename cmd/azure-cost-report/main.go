package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zgpcy/azure-cost-report/internal/cli"
)

func main() {
	// Ctrl+C cancels the prompt or the in-flight Azure call
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.New().Execute(ctx)
	cli.ReportError(os.Stderr, err)

	stop()
	os.Exit(cli.ExitCode(err))
}
