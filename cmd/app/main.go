package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"prtrack/config"
	"prtrack/internal/cli"
	"prtrack/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	root := cli.New(log, cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}
