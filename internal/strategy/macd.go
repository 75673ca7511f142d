package strategy

import (
	"fmt"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/markcheno/go-talib"
)

const macdName = "macd"

// MACD es la estrategia de cruce MACD: compra cuando la línea MACD cruza por
// encima de la signal line, vende cuando cruza por debajo.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD crea la estrategia con los periodos dados (clásico: 12/26/9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

// Name implementa engine.SignalFunc.
func (m *MACD) Name() string { return macdName }

// Compute implementa engine.SignalFunc. Pura: no guarda estado entre llamadas.
func (m *MACD) Compute(series *domain.BarSeries) (domain.SignalSet, error) {
	if m.fast <= 0 || m.slow <= m.fast || m.signal <= 0 {
		return nil, fmt.Errorf("strategy.MACD: invalid periods fast=%d slow=%d signal=%d", m.fast, m.slow, m.signal)
	}

	signals := domain.SignalSet{}
	// talib necesita al menos slow+signal velas para producir valores
	if series == nil || series.Len() < m.slow+m.signal {
		return signals, nil
	}

	closes := make([]float64, series.Len())
	for i, b := range series.Bars {
		closes[i] = b.Close
	}

	macd, signalLine, _ := talib.Macd(closes, m.fast, m.slow, m.signal)

	prevMACD, prevSignal := 0.0, 0.0
	for i, bar := range series.Bars {
		cur, sig := macd[i], signalLine[i]
		switch {
		// cruce alcista: MACD pasa por encima de la signal line
		case prevMACD <= prevSignal && cur > sig:
			signals[bar.Timestamp] = domain.SignalBuy
		// cruce bajista: MACD pasa por debajo de la signal line
		case prevMACD >= prevSignal && cur < sig:
			signals[bar.Timestamp] = domain.SignalSell
		}
		prevMACD, prevSignal = cur, sig
	}

	return signals, nil
}
