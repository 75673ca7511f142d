package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/krakenbot/config"
	"github.com/alejandrodnm/krakenbot/internal/adapters/kraken"
	"github.com/alejandrodnm/krakenbot/internal/adapters/notify"
	"github.com/alejandrodnm/krakenbot/internal/adapters/storage"
	"github.com/alejandrodnm/krakenbot/internal/engine"
	"github.com/alejandrodnm/krakenbot/internal/trader"
)

func runLive(ctx context.Context, cfg *config.Config, fn engine.SignalFunc, resumeRunID string) {
	if cfg.API.Key == "" || cfg.API.Secret == "" {
		slog.Error("live mode requires KRAKEN_API_KEY and KRAKEN_API_SECRET in the environment")
		os.Exit(1)
	}

	slog.Warn("=== LIVE TRADING MODE (REAL MONEY) ===",
		"pair", cfg.Trading.Pair,
		"initial_cash", cfg.Trading.InitialCash,
	)
	slog.Warn("press Ctrl+C within 5 seconds to abort...")

	abortTimer := time.NewTimer(5 * time.Second)
	select {
	case <-abortTimer.C:
	case <-ctx.Done():
		slog.Info("live trading aborted by user")
		return
	}

	client := kraken.NewClient(cfg.API.BaseURL)

	auth, err := kraken.NewAuthClient(cfg.API.BaseURL, cfg.API.Key, cfg.API.Secret)
	if err != nil {
		slog.Error("failed to create auth client — check KRAKEN_API_SECRET", "err", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole()

	t, err := trader.NewLiveTrader(trader.Config{
		Pair:        cfg.Trading.Pair,
		Interval:    cfg.Interval(),
		InitialCash: cfg.Trading.InitialCash,
		ResumeRunID: resumeRunID,
	}, client, store, notifier, fn, auth)
	if err != nil {
		slog.Error("failed to create live trader", "err", err)
		os.Exit(1)
	}

	slog.Info("live trading started — press Ctrl+C to liquidate and exit")

	result, err := t.Run(ctx)
	if result != nil {
		slog.Info("live trading stopped",
			"trades", len(result.Trades),
			"final_cash", result.FinalCash,
			"return_pct", result.Return*100,
		)
	}
	if err != nil {
		slog.Error("live trading failed", "err", err)
		os.Exit(1)
	}
}
