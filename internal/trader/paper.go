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

// Config contiene los parámetros de una sesión paper o live.
type Config struct {
	Pair        string
	Interval    time.Duration
	InitialCash float64

	// ResumeRunID reanuda un run existente desde su watermark persistido
	// en lugar de crear uno nuevo. Requiere storage.
	ResumeRunID string
}

// PaperTrader ejecuta la simulación incremental con cadencia de reloj.
// El único estado persistente entre ticks es el WindowState del engine —
// incluido el watermark, que es un campo explícito, no ambiente.
//
// En modo live (exec != nil) cada trade simulado se refleja además como
// orden limit real en el venue; el ledger local sigue siendo la autoridad.
type PaperTrader struct {
	cfg      Config
	data     ports.MarketData
	store    ports.RunStorage
	notifier ports.Notifier
	fn       engine.SignalFunc
	exec     ports.Executor
	mode     string

	state *engine.WindowState
	runID string

	// initialCash es el cash con el que arrancó el run: el configurado, o
	// el persistido cuando se reanuda uno existente.
	initialCash float64
}

// NewPaperTrader crea una sesión paper. store puede ser nil.
func NewPaperTrader(cfg Config, data ports.MarketData, store ports.RunStorage, notifier ports.Notifier, fn engine.SignalFunc) *PaperTrader {
	return &PaperTrader{
		cfg:         cfg,
		data:        data,
		store:       store,
		notifier:    notifier,
		fn:          fn,
		mode:        "paper",
		state:       engine.NewWindowState(domain.NewBarSeries(cfg.Pair, cfg.Interval), cfg.InitialCash),
		initialCash: cfg.InitialCash,
	}
}

// Run ejecuta el loop hasta que el contexto se cancele. A la cancelación
// liquida cualquier posición abierta al último close conocido y devuelve el
// resultado final — la misma regla de fin de run que el backtester.
//
// Un fetch fallido aborta solo el tick actual (el estado no se toca, se
// reintenta en el siguiente); un error del engine es fatal.
func (p *PaperTrader) Run(ctx context.Context) (*domain.Result, error) {
	slog.Info("session starting",
		"mode", p.mode,
		"strategy", p.fn.Name(),
		"pair", p.cfg.Pair,
		"interval", p.cfg.Interval,
		"initial_cash", p.cfg.InitialCash,
	)

	if p.cfg.ResumeRunID != "" {
		if err := p.resume(ctx); err != nil {
			return nil, fmt.Errorf("trader.Paper: %w", err)
		}
	} else if p.store != nil {
		rec, err := p.store.CreateRun(ctx, p.mode, p.fn.Name(), p.cfg.Pair, p.cfg.InitialCash)
		if err != nil {
			slog.Warn("storage error", "err", err)
		} else {
			p.runID = rec.ID
		}
	}

	if err := p.tick(ctx); err != nil {
		return p.finish(context.WithoutCancel(ctx)), fmt.Errorf("trader.Paper: %w", err)
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session stopped", "mode", p.mode)
			// el contexto original ya está cancelado; la liquidación y el
			// cierre del run usan uno sin cancelar
			return p.finish(context.WithoutCancel(ctx)), nil
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				return p.finish(context.WithoutCancel(ctx)), fmt.Errorf("trader.Paper: %w", err)
			}
		}
	}
}

// resume reanuda un run persistido: recupera su cash inicial, reconstruye
// el ledger y el trade log reproduciendo los trades guardados, y siembra el
// watermark y el mark price para que el primer tick continúe donde quedó.
// El cash configurado se ignora — manda el del run original.
func (p *PaperTrader) resume(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("resume %q: storage is required", p.cfg.ResumeRunID)
	}
	p.runID = p.cfg.ResumeRunID

	rec, err := p.store.GetRun(ctx, p.runID)
	if err != nil {
		return fmt.Errorf("resume %q: %w", p.runID, err)
	}
	if p.cfg.InitialCash != rec.InitialCash {
		slog.Warn("configured cash ignored on resume, using the run's",
			"configured", p.cfg.InitialCash, "stored", rec.InitialCash)
	}
	p.initialCash = rec.InitialCash
	p.state.Ledger = domain.NewLedger(rec.InitialCash)

	trades, err := p.store.GetTrades(ctx, p.runID)
	if err != nil {
		return fmt.Errorf("resume %q: %w", p.runID, err)
	}
	for _, trade := range trades {
		switch trade.Action {
		case domain.SignalBuy:
			p.state.Ledger.Position = p.state.Ledger.Cash / trade.Price
			p.state.Ledger.Cash = 0
		case domain.SignalSell:
			p.state.Ledger.Cash = p.state.Ledger.Position * trade.Price
			p.state.Ledger.Position = 0
		}
		p.state.Trades = append(p.state.Trades, trade)
		// sin velas nuevas, el precio del último trade valora la posición
		p.state.MarkPrice = trade.Price
	}

	wm, ok, err := p.store.LoadWatermark(ctx, p.runID)
	if err != nil {
		return fmt.Errorf("resume %q: %w", p.runID, err)
	}
	if ok {
		p.state.SeedWatermark(wm)
	}

	slog.Info("session resumed",
		"run_id", p.runID,
		"trades", len(trades),
		"initial_cash", p.initialCash,
		"cash", p.state.Ledger.Cash,
		"position", p.state.Ledger.Position,
		"watermark", wm.Format(time.RFC3339),
	)
	return nil
}

// tick hace un ciclo completo: fetch de velas nuevas, avance del engine,
// notificación y persistencia. Los errores de fetch se tragan (retry en el
// próximo tick); los del engine se propagan.
func (p *PaperTrader) tick(ctx context.Context) error {
	now := time.Now().UTC()

	// primera vez: al menos una vela hacia atrás; después, desde el watermark
	start := now.Add(-p.cfg.Interval)
	if wm, ok := p.state.LastProcessed(); ok {
		start = wm.Timestamp.Add(time.Second)
	}

	newBars, err := p.data.FetchOHLC(ctx, p.cfg.Pair, p.cfg.Interval, start, now)
	if err != nil {
		// el watermark y el ledger quedan intactos: nada que deshacer
		slog.Error("fetch failed, retrying next tick", "err", err)
		return nil
	}
	if newBars.Len() == 0 {
		slog.Debug("no new bars", "since", start.Format(time.RFC3339))
		return nil
	}

	trades, err := engine.AdvanceWindow(p.state, newBars, p.fn)
	for _, trade := range trades {
		p.report(ctx, trade)
	}
	if err != nil {
		return err
	}

	if wm, ok := p.state.LastProcessed(); ok && p.store != nil && p.runID != "" {
		if serr := p.store.SaveWatermark(ctx, p.runID, wm.Timestamp); serr != nil {
			slog.Warn("storage error", "err", serr)
		}
	}
	return nil
}

// report notifica, persiste y (en modo live) refleja un trade en el venue.
func (p *PaperTrader) report(ctx context.Context, trade domain.Trade) {
	if p.notifier != nil {
		p.notifier.TradeExecuted(trade)
	}
	if p.store != nil && p.runID != "" {
		if err := p.store.SaveTrade(ctx, p.runID, trade); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	if p.exec != nil {
		p.mirror(ctx, trade)
	}
}

// finish liquida la posición abierta, presenta el resumen y cierra el run.
func (p *PaperTrader) finish(ctx context.Context) *domain.Result {
	if trade := engine.Liquidate(p.state); trade != nil {
		slog.Info("closed open position",
			"price", trade.Price, "bar", trade.Timestamp.Format(time.RFC3339))
		p.report(ctx, *trade)
	}

	result := p.state.Result(p.fn.Name(), p.initialCash)
	if p.notifier != nil {
		p.notifier.RunFinished(result)
	}
	if p.store != nil && p.runID != "" {
		if err := p.store.FinishRun(ctx, p.runID, result); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	return result
}
