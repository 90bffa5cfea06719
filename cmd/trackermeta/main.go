package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/billmal071/trackermeta/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		cli.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
