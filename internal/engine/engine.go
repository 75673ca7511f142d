// Package engine implementa la máquina de estados cash/posición compartida
// por el backtester y el paper trader. Es la única fuente de verdad de la
// regla de transición: los dos drivers difieren solo en cómo llega la serie.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

var (
	// ErrInvalidBar indica una vela con open no positivo — la valoración
	// cash/open no está definida. Fatal para la llamada, nunca se salta.
	ErrInvalidBar = errors.New("invalid bar: non-positive open")

	// ErrBadSignal indica una señal fuera de {hold, buy, sell} — la
	// estrategia está rota y hay que abortar inmediatamente.
	ErrBadSignal = errors.New("signal out of range")

	// ErrEmptySeries indica un run sobre una serie sin velas.
	ErrEmptySeries = errors.New("empty bar series")
)

// SignalFunc es el contrato de estrategia: una función pura de la serie.
// La serie es read-only; recomputarla sobre historia acumulada debe dar
// siempre el mismo resultado.
type SignalFunc interface {
	Name() string
	Compute(series *domain.BarSeries) (domain.SignalSet, error)
}

// Advance aplica la regla de transición a una vela. Determinista, sin
// efectos secundarios: mismo ledger/vela/señal → mismo resultado.
//
//	BUY  estando flat  → position = cash/open, cash = 0, emite Trade
//	SELL estando long  → cash = position*open, position = 0, emite Trade
//	cualquier otro caso → sin cambios, sin Trade
//
// El único precio de ejecución es el open de la vela.
func Advance(ledger domain.Ledger, bar domain.Bar, signal domain.Signal) (domain.Ledger, *domain.Trade, error) {
	if bar.Open <= 0 {
		return ledger, nil, fmt.Errorf("engine.Advance: bar %s: %w",
			bar.Timestamp.Format(time.RFC3339), ErrInvalidBar)
	}
	if !signal.Valid() {
		return ledger, nil, fmt.Errorf("engine.Advance: signal %d: %w", signal, ErrBadSignal)
	}

	switch {
	case signal == domain.SignalBuy && ledger.Position == 0:
		ledger.Position = ledger.Cash / bar.Open
		ledger.Cash = 0
		return ledger, &domain.Trade{
			Action: domain.SignalBuy, Timestamp: bar.Timestamp,
			Price: bar.Open, Volume: ledger.Position,
		}, nil

	case signal == domain.SignalSell && ledger.Position > 0:
		volume := ledger.Position
		ledger.Cash = ledger.Position * bar.Open
		ledger.Position = 0
		return ledger, &domain.Trade{
			Action: domain.SignalSell, Timestamp: bar.Timestamp,
			Price: bar.Open, Volume: volume,
		}, nil

	default:
		return ledger, nil, nil
	}
}

// RunFull ejecuta la simulación completa sobre la serie: computa señales una
// vez, pliega Advance vela a vela, y si al final queda posición abierta la
// liquida al CLOSE de la última vela — el único sitio donde el engine usa
// close en vez de open (marca la posición al último precio conocido).
// Si Advance falla a mitad de run, devuelve el Result parcial junto al error.
func RunFull(series *domain.BarSeries, fn SignalFunc, initialCash float64) (*domain.Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("engine.RunFull: %w", ErrEmptySeries)
	}

	signals, err := fn.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("engine.RunFull: compute signals: %w", err)
	}

	ledger := domain.NewLedger(initialCash)
	var trades []domain.Trade

	for _, bar := range series.Bars {
		var trade *domain.Trade
		ledger, trade, err = Advance(ledger, bar, signals.At(bar.Timestamp))
		if err != nil {
			// se devuelve el Result parcial junto al error para que el
			// driver pueda informar el trade log acumulado hasta el fallo
			return partialResult(series, fn, initialCash, ledger, trades, bar.Timestamp),
				fmt.Errorf("engine.RunFull: %w", err)
		}
		if trade != nil {
			trades = append(trades, *trade)
		}
	}

	last := series.Bars[series.Len()-1]
	if ledger.Position > 0 {
		volume := ledger.Position
		ledger.Cash = ledger.Position * last.Close
		ledger.Position = 0
		trades = append(trades, domain.Trade{
			Action:    domain.SignalSell,
			Timestamp: last.Timestamp,
			Price:     last.Close,
			Volume:    volume,
		})
	}

	return &domain.Result{
		Start:       series.Bars[0].Timestamp,
		End:         last.Timestamp,
		Strategy:    fn.Name(),
		Pair:        series.Pair,
		InitialCash: initialCash,
		FinalCash:   ledger.Cash,
		Return:      domain.ComputeReturn(initialCash, ledger.Cash),
		Trades:      trades,
		Series:      series,
	}, nil
}

// partialResult congela el estado a mitad de run tras un error fatal.
func partialResult(series *domain.BarSeries, fn SignalFunc, initialCash float64, ledger domain.Ledger, trades []domain.Trade, at time.Time) *domain.Result {
	return &domain.Result{
		Start:       series.Bars[0].Timestamp,
		End:         at,
		Strategy:    fn.Name(),
		Pair:        series.Pair,
		InitialCash: initialCash,
		FinalCash:   ledger.Cash,
		Return:      domain.ComputeReturn(initialCash, ledger.Cash),
		Trades:      trades,
		Series:      series,
	}
}
