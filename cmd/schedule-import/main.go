package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/unive-tools/schedule-sync/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.Execute(ctx, cli.NewImportCmd())
}
