package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/l20n/cli"
	"github.com/ardnew/l20n/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
		os.Exit(1)
	}
}
