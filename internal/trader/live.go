package trader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/alejandrodnm/krakenbot/internal/engine"
	"github.com/alejandrodnm/krakenbot/internal/ports"
)

// NewLiveTrader crea una sesión live: el mismo loop incremental que paper,
// pero cada trade simulado se refleja como orden limit real en el venue.
// Requiere un executor con credenciales.
func NewLiveTrader(cfg Config, data ports.MarketData, store ports.RunStorage, notifier ports.Notifier, fn engine.SignalFunc, exec ports.Executor) (*PaperTrader, error) {
	if exec == nil {
		return nil, fmt.Errorf("trader.NewLiveTrader: executor is required for live mode")
	}
	p := NewPaperTrader(cfg, data, store, notifier, fn)
	p.exec = exec
	p.mode = "live"
	return p, nil
}

// mirror envía la orden real correspondiente a un trade simulado. Un rechazo
// del venue no detiene la sesión: el ledger local sigue siendo la autoridad
// y se loggea el error.
func (p *PaperTrader) mirror(ctx context.Context, trade domain.Trade) {
	side := ports.SideBuy
	if trade.Action == domain.SignalSell {
		side = ports.SideSell
	}

	txid, err := p.exec.PlaceOrder(ctx, p.cfg.Pair, side, "limit", trade.Price, trade.Volume)
	if err != nil {
		slog.Error("venue rejected order",
			"side", side, "price", trade.Price, "volume", trade.Volume, "err", err)
		return
	}

	slog.Info("order placed",
		"txid", txid, "side", side, "price", trade.Price, "volume", trade.Volume)
}
