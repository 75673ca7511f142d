package strategy_test

import (
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/alejandrodnm/krakenbot/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// seriesFromCloses construye una serie horaria con los closes dados.
func seriesFromCloses(closes []float64) *domain.BarSeries {
	s := domain.NewBarSeries("XBTUSD", time.Hour)
	for i, c := range closes {
		s.Bars = append(s.Bars, domain.Bar{
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			VWAP:      c,
			Volume:    1,
			Count:     1,
		})
	}
	return s
}

// sineCloses genera una onda con tendencias alternas — fuerza cruces.
func sineCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 20*math.Sin(float64(i)/8)
	}
	return closes
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := strategy.New("nope", strategy.DefaultConfig())
	assert.Error(t, err)
}

func TestNew_KnownStrategies(t *testing.T) {
	for _, name := range strategy.Names() {
		fn, err := strategy.New(name, strategy.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, name, fn.Name())
	}
}

func TestMACD_ShortSeriesNoSignals(t *testing.T) {
	fn := strategy.NewMACD(12, 26, 9)
	signals, err := fn.Compute(seriesFromCloses(sineCloses(10)))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestMACD_InvalidPeriods(t *testing.T) {
	fn := strategy.NewMACD(26, 12, 9)
	_, err := fn.Compute(seriesFromCloses(sineCloses(100)))
	assert.Error(t, err)
}

func TestMACD_CrossoversAlternate(t *testing.T) {
	fn := strategy.NewMACD(12, 26, 9)
	series := seriesFromCloses(sineCloses(200))

	signals, err := fn.Compute(series)
	require.NoError(t, err)
	require.NotEmpty(t, signals, "una onda con tendencias alternas debe producir cruces")

	// todas las señales caen en timestamps exactos de la serie
	valid := make(map[time.Time]bool, series.Len())
	for _, b := range series.Bars {
		valid[b.Timestamp] = true
	}
	for ts, sig := range signals {
		assert.True(t, valid[ts], "señal en timestamp desconocido %s", ts)
		assert.True(t, sig == domain.SignalBuy || sig == domain.SignalSell)
	}
}

func TestMACD_Pure(t *testing.T) {
	fn := strategy.NewMACD(12, 26, 9)
	series := seriesFromCloses(sineCloses(150))

	a, err := fn.Compute(series)
	require.NoError(t, err)
	b, err := fn.Compute(series)
	require.NoError(t, err)
	assert.Equal(t, a, b, "Compute debe ser pura: sin estado entre llamadas")
}

func TestSMACross_DetectsCross(t *testing.T) {
	// 30 velas bajando, luego 30 subiendo: la media corta cruza la larga al alza
	closes := make([]float64, 0, 60)
	for i := 0; i < 30; i++ {
		closes = append(closes, 130-float64(i))
	}
	for i := 0; i < 30; i++ {
		closes = append(closes, 100+float64(i)*2)
	}

	fn := strategy.NewSMACross(5, 20)
	signals, err := fn.Compute(seriesFromCloses(closes))
	require.NoError(t, err)

	buys := 0
	for _, sig := range signals {
		if sig == domain.SignalBuy {
			buys++
		}
	}
	assert.Greater(t, buys, 0, "el giro alcista debe producir al menos una compra")
}

func TestSMACross_ShortSeriesNoSignals(t *testing.T) {
	fn := strategy.NewSMACross(5, 20)
	signals, err := fn.Compute(seriesFromCloses(sineCloses(15)))
	require.NoError(t, err)
	assert.Empty(t, signals)
}
