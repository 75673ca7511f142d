package domain

import (
	"fmt"
	"math"
	"time"
)

// Bar es una vela OHLC inmutable para un intervalo fijo.
// Timestamp siempre en UTC.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	VWAP      float64
	Volume    float64
	Count     int64
}

// Validate verifica que los precios OHLC sean positivos y el resto finito y no negativo.
func (b Bar) Validate() error {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsInf(p, 0) || math.IsNaN(p) {
			return fmt.Errorf("bar %s: non-positive OHLC price %v", b.Timestamp.Format(time.RFC3339), p)
		}
	}
	for _, v := range []float64{b.VWAP, b.Volume} {
		if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("bar %s: negative volume field %v", b.Timestamp.Format(time.RFC3339), v)
		}
	}
	if b.Count < 0 {
		return fmt.Errorf("bar %s: negative trade count %d", b.Timestamp.Format(time.RFC3339), b.Count)
	}
	return nil
}

// BarSeries es la secuencia ordenada de velas de un par/intervalo.
// Invariante: timestamps estrictamente crecientes, sin duplicados.
// Se toleran huecos — el exchange omite velas sin trades.
type BarSeries struct {
	Pair     string
	Interval time.Duration
	Bars     []Bar
}

// NewBarSeries crea una serie vacía para el par e intervalo dados.
func NewBarSeries(pair string, interval time.Duration) *BarSeries {
	return &BarSeries{Pair: pair, Interval: interval}
}

// Len devuelve el número de velas.
func (s *BarSeries) Len() int {
	return len(s.Bars)
}

// Last devuelve la última vela, o false si la serie está vacía.
func (s *BarSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Append añade una vela al final manteniendo el orden estricto.
// Rechaza timestamps que retroceden o duplican el último.
func (s *BarSeries) Append(b Bar) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("BarSeries.Append: %w", err)
	}
	if last, ok := s.Last(); ok && !b.Timestamp.After(last.Timestamp) {
		return fmt.Errorf("BarSeries.Append: timestamp %s not after last %s",
			b.Timestamp.Format(time.RFC3339), last.Timestamp.Format(time.RFC3339))
	}
	s.Bars = append(s.Bars, b)
	return nil
}

// Extend añade el sufijo de other que sea estrictamente posterior a la última
// vela de s. Velas solapadas o anteriores se descartan en silencio — esto hace
// idempotente el fetch incremental con rangos solapados. Cada vela añadida
// pasa por Append, así que una vela inválida corta la extensión con error.
func (s *BarSeries) Extend(other *BarSeries) (int, error) {
	if other == nil {
		return 0, nil
	}
	added := 0
	for _, b := range other.Bars {
		if last, ok := s.Last(); ok && !b.Timestamp.After(last.Timestamp) {
			continue
		}
		if err := s.Append(b); err != nil {
			return added, fmt.Errorf("BarSeries.Extend: %w", err)
		}
		added++
	}
	return added, nil
}

// TruncateAfter elimina las velas con timestamp posterior a end.
func (s *BarSeries) TruncateAfter(end time.Time) {
	n := len(s.Bars)
	for n > 0 && s.Bars[n-1].Timestamp.After(end) {
		n--
	}
	s.Bars = s.Bars[:n]
}

// Validate verifica el invariante de orden total estricto de la serie.
func (s *BarSeries) Validate() error {
	for i, b := range s.Bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("BarSeries.Validate: %w", err)
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("BarSeries.Validate: bar %d timestamp %s not after %s",
				i, b.Timestamp.Format(time.RFC3339), s.Bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
