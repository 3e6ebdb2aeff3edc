package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/app"
	"todo-notes/internal/cli"
	"todo-notes/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log.Level)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}

	runErr := cli.NewRunner(a, os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
	a.Close()
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		if errors.Is(runErr, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
