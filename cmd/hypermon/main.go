package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"hypermon/internal/app"
	"hypermon/internal/config"
	"hypermon/internal/logger"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	cfgPath := os.Getenv("HYPERMON_CONFIG")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Errorf("load config %s: %v", cfgPath, err)
		os.Exit(1)
	}

	closeLog, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		logger.Errorf("open log file: %v", err)
		os.Exit(1)
	}
	defer closeLog()

	a, err := app.New(cfg)
	if err != nil {
		logger.Errorf("init: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := config.Watch(cfgPath, func(next *config.Config) {
		logger.SetLevel(next.App.LogLevel)
	}); err != nil {
		logger.Warnf("config watch unavailable: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("hypermon starting, env=%s address=%s", cfg.App.Env, cfg.Monitor.Address)
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("exited: %v", err)
		os.Exit(1)
	}
	logger.Infof("hypermon stopped")
}

// setupLogOutput mirrors log lines to a file when app.log_path is set.
func setupLogOutput(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return func() { _ = f.Close() }, nil
}
