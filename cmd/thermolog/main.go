package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yognotiano/TESIS/internal/cmd"
)

// embeddedConfig is the built-in application.yaml; --config and THERMOLOG_* variables override it.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand(embeddedConfig).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
