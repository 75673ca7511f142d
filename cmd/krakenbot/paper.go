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

func runPaper(ctx context.Context, cfg *config.Config, fn engine.SignalFunc, resumeRunID string) {
	client := kraken.NewClient(cfg.API.BaseURL)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole()

	p := trader.NewPaperTrader(trader.Config{
		Pair:        cfg.Trading.Pair,
		Interval:    cfg.Interval(),
		InitialCash: cfg.Trading.InitialCash,
		ResumeRunID: resumeRunID,
	}, client, store, notifier, fn)

	slog.Info("paper trading started — press Ctrl+C to liquidate and exit")

	result, err := p.Run(ctx)
	if result != nil {
		slog.Info("paper trading stopped",
			"trades", len(result.Trades),
			"final_cash", result.FinalCash,
			"return_pct", result.Return*100,
		)
	}
	if err != nil {
		slog.Error("paper trading failed", "err", err)
		os.Exit(1)
	}
}
