package strategy

import (
	"fmt"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/markcheno/go-talib"
)

const smaCrossName = "smacross"

// SMACross es el cruce de medias móviles simples: compra cuando la media
// corta cruza por encima de la larga, vende en el cruce inverso.
type SMACross struct {
	short int
	long  int
}

// NewSMACross crea la estrategia con los periodos dados.
func NewSMACross(short, long int) *SMACross {
	return &SMACross{short: short, long: long}
}

// Name implementa engine.SignalFunc.
func (s *SMACross) Name() string { return smaCrossName }

// Compute implementa engine.SignalFunc.
func (s *SMACross) Compute(series *domain.BarSeries) (domain.SignalSet, error) {
	if s.short <= 0 || s.long <= s.short {
		return nil, fmt.Errorf("strategy.SMACross: invalid periods short=%d long=%d", s.short, s.long)
	}

	signals := domain.SignalSet{}
	if series == nil || series.Len() <= s.long {
		return signals, nil
	}

	closes := make([]float64, series.Len())
	for i, b := range series.Bars {
		closes[i] = b.Close
	}

	shortMA := talib.Sma(closes, s.short)
	longMA := talib.Sma(closes, s.long)

	// empezar cuando ambas medias tienen valor y existe una vela previa
	for i := s.long; i < series.Len(); i++ {
		prevDiff := shortMA[i-1] - longMA[i-1]
		diff := shortMA[i] - longMA[i]
		switch {
		case prevDiff <= 0 && diff > 0:
			signals[series.Bars[i].Timestamp] = domain.SignalBuy
		case prevDiff >= 0 && diff < 0:
			signals[series.Bars[i].Timestamp] = domain.SignalSell
		}
	}

	return signals, nil
}
