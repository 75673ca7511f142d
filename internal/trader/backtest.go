// Package trader contiene los drivers que alimentan el engine de simulación:
// el backtester (serie completa de una vez) y el paper/live trader
// (incremental, con cadencia de reloj). La regla de transición es la misma
// en ambos — vive en internal/engine, no aquí.
package trader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/alejandrodnm/krakenbot/internal/engine"
	"github.com/alejandrodnm/krakenbot/internal/ports"
)

// Backtester ejecuta un run histórico completo. No persiste estado entre
// llamadas a Run.
type Backtester struct {
	data     ports.MarketData
	store    ports.RunStorage
	notifier ports.Notifier
}

// NewBacktester crea un backtester. store puede ser nil (no persistir).
func NewBacktester(data ports.MarketData, store ports.RunStorage, notifier ports.Notifier) *Backtester {
	return &Backtester{data: data, store: store, notifier: notifier}
}

// Run hace un fetch del rango completo, un RunFull y reporta el resultado.
// Con un error fatal a mitad de simulación, presenta igualmente el trade log
// parcial antes de devolver el error.
func (b *Backtester) Run(ctx context.Context, fn engine.SignalFunc, pair string, interval time.Duration, start, end time.Time, initialCash float64) (*domain.Result, error) {
	slog.Info("backtest starting",
		"strategy", fn.Name(),
		"pair", pair,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"initial_cash", initialCash,
	)

	series, err := b.data.FetchOHLC(ctx, pair, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("trader.Backtest: fetch: %w", err)
	}
	slog.Info("fetched bar series", "bars", series.Len())

	result, err := engine.RunFull(series, fn, initialCash)
	if err != nil {
		if result != nil && b.notifier != nil {
			b.notifier.RunFinished(result)
		}
		return result, fmt.Errorf("trader.Backtest: %w", err)
	}

	if b.notifier != nil {
		b.notifier.RunFinished(result)
	}
	b.persist(ctx, fn.Name(), pair, initialCash, result)

	slog.Info("backtest complete",
		"trades", len(result.Trades),
		"final_cash", result.FinalCash,
		"return_pct", result.Return*100,
	)
	return result, nil
}

// persist guarda el run completo en storage, si hay storage configurado.
// Un fallo de persistencia no invalida el resultado: se loggea y se sigue.
func (b *Backtester) persist(ctx context.Context, strategy, pair string, initialCash float64, result *domain.Result) {
	if b.store == nil {
		return
	}

	rec, err := b.store.CreateRun(ctx, "backtest", strategy, pair, initialCash)
	if err != nil {
		slog.Warn("storage error", "err", err)
		return
	}
	for _, trade := range result.Trades {
		if err := b.store.SaveTrade(ctx, rec.ID, trade); err != nil {
			slog.Warn("storage error", "err", err)
			return
		}
	}
	if err := b.store.FinishRun(ctx, rec.ID, result); err != nil {
		slog.Warn("storage error", "err", err)
	}
}
