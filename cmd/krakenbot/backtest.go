package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/krakenbot/config"
	"github.com/alejandrodnm/krakenbot/internal/adapters/kraken"
	"github.com/alejandrodnm/krakenbot/internal/adapters/notify"
	"github.com/alejandrodnm/krakenbot/internal/adapters/storage"
	"github.com/alejandrodnm/krakenbot/internal/engine"
	"github.com/alejandrodnm/krakenbot/internal/trader"
)

func runBacktest(ctx context.Context, cfg *config.Config, fn engine.SignalFunc, startArg, endArg string) {
	// Validar el rango antes de tocar la red.
	if startArg == "" || endArg == "" {
		slog.Error("backtest requires -start and -end")
		os.Exit(1)
	}
	start, err := parseTime(startArg)
	if err != nil {
		slog.Error("invalid -start", "err", err, "value", startArg)
		os.Exit(1)
	}
	end, err := parseTime(endArg)
	if err != nil {
		slog.Error("invalid -end", "err", err, "value", endArg)
		os.Exit(1)
	}
	if !start.Before(end) {
		slog.Error("-start must be before -end", "start", start, "end", end)
		os.Exit(1)
	}

	client := kraken.NewClient(cfg.API.BaseURL)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole()

	b := trader.NewBacktester(client, store, notifier)
	if _, err := b.Run(ctx, fn, cfg.Trading.Pair, cfg.Interval(), start, end, cfg.Trading.InitialCash); err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}
}
