package engine

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// WindowState es el estado incremental del paper trader: la serie acumulada,
// el ledger, el trade log y el watermark — el timestamp de la última vela ya
// procesada. El watermark es estado explícito del driver, no ambiente.
type WindowState struct {
	Series *domain.BarSeries
	Ledger domain.Ledger
	Trades []domain.Trade

	// Watermark es cero hasta que se procesa la primera vela.
	Watermark domain.Bar
	processed bool

	// MarkPrice es el último precio conocido para valorar la posición:
	// el close de la última vela procesada, o el precio del último trade
	// persistido al reanudar una sesión. Cero hasta conocer un precio.
	MarkPrice float64
}

// NewWindowState crea el estado inicial para un par/intervalo y cash inicial.
func NewWindowState(series *domain.BarSeries, initialCash float64) *WindowState {
	return &WindowState{
		Series: series,
		Ledger: domain.NewLedger(initialCash),
	}
}

// LastProcessed devuelve la última vela procesada y false si aún no hay ninguna.
func (w *WindowState) LastProcessed() (domain.Bar, bool) {
	return w.Watermark, w.processed
}

// SeedWatermark marca todo hasta ts (inclusive) como ya procesado. Se usa al
// reanudar una sesión desde un watermark persistido: las velas con timestamp
// <= ts no se vuelven a reproducir.
func (w *WindowState) SeedWatermark(ts time.Time) {
	w.Watermark = domain.Bar{Timestamp: ts}
	w.processed = true
}

// AdvanceWindow incorpora velas nuevas y avanza la simulación exactamente una
// vez por timestamp. Las señales se recalculan sobre TODA la serie acumulada
// (estrategias como medias móviles necesitan la historia completa), pero solo
// se reproducen las velas estrictamente posteriores al watermark. Con newBars
// vacío es un no-op. Devuelve los trades emitidos en esta ventana.
func AdvanceWindow(state *WindowState, newBars *domain.BarSeries, fn SignalFunc) ([]domain.Trade, error) {
	if state == nil || state.Series == nil {
		return nil, fmt.Errorf("engine.AdvanceWindow: nil window state")
	}

	if _, err := state.Series.Extend(newBars); err != nil {
		return nil, fmt.Errorf("engine.AdvanceWindow: %w", err)
	}
	if state.Series.Len() == 0 {
		return nil, nil
	}

	signals, err := fn.Compute(state.Series)
	if err != nil {
		return nil, fmt.Errorf("engine.AdvanceWindow: compute signals: %w", err)
	}

	var emitted []domain.Trade
	for _, bar := range state.Series.Bars {
		if state.processed && !bar.Timestamp.After(state.Watermark.Timestamp) {
			continue
		}

		ledger, trade, err := Advance(state.Ledger, bar, signals.At(bar.Timestamp))
		if err != nil {
			return emitted, fmt.Errorf("engine.AdvanceWindow: %w", err)
		}
		state.Ledger = ledger
		if trade != nil {
			state.Trades = append(state.Trades, *trade)
			emitted = append(emitted, *trade)
		}

		// el watermark avanza aunque la vela no genere trade
		state.Watermark = bar
		state.processed = true
		state.MarkPrice = bar.Close
	}

	return emitted, nil
}

// Liquidate cierra cualquier posición abierta al último precio conocido —
// la misma regla de fin de run que RunFull, para que el comportamiento sea
// consistente entre backtest y paper al interrumpir la sesión. En una sesión
// reanudada sin velas nuevas ese precio es el del último trade persistido.
// Devuelve nil si no hay posición o nunca se conoció un precio.
func Liquidate(state *WindowState) *domain.Trade {
	if state == nil || state.Ledger.Position == 0 || state.MarkPrice <= 0 {
		return nil
	}

	price := state.MarkPrice
	ts := state.Watermark.Timestamp
	if last, ok := state.Series.Last(); ok {
		price = last.Close
		ts = last.Timestamp
	}

	volume := state.Ledger.Position
	state.Ledger.Cash = state.Ledger.Position * price
	state.Ledger.Position = 0
	trade := domain.Trade{
		Action:    domain.SignalSell,
		Timestamp: ts,
		Price:     price,
		Volume:    volume,
	}
	state.Trades = append(state.Trades, trade)
	return &trade
}

// Result congela el estado de la ventana en un Result, usando el último
// precio conocido para valorar una posición aún abierta. Sin precio conocido
// la posición se valora al cash inicial: mejor informar "sin cambios" que
// inventar una pérdida total.
func (w *WindowState) Result(strategy string, initialCash float64) *domain.Result {
	res := &domain.Result{
		Strategy:    strategy,
		Pair:        w.Series.Pair,
		InitialCash: initialCash,
		FinalCash:   w.Ledger.Cash,
		Trades:      w.Trades,
		Series:      w.Series,
	}
	if w.Series.Len() > 0 {
		res.Start = w.Series.Bars[0].Timestamp
		last, _ := w.Series.Last()
		res.End = last.Timestamp
	}
	if w.Ledger.Position > 0 {
		if w.MarkPrice > 0 {
			res.FinalCash = w.Ledger.Position * w.MarkPrice
		} else {
			res.FinalCash = initialCash
		}
	}
	res.Return = domain.ComputeReturn(initialCash, res.FinalCash)
	return res
}
