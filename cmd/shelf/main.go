package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookshelf/internal/cli"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/logging"
)

func main() {
	config.LoadEnvFiles()

	credsPath, err := cli.DefaultCredentialsPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger, err := logging.New("development", level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		BaseURL:      os.Getenv("SHELF_API_URL"),
		CredsPath:    credsPath,
		In:           os.Stdin,
		Out:          os.Stdout,
		Logger:       logger,
		ReadPassword: cli.TerminalPassword(os.Stdin, os.Stderr),
	}
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
