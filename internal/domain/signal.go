package domain

import "time"

// Signal es la salida de una estrategia para una vela concreta.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

// String devuelve el nombre legible de la señal.
func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "hold"
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Valid indica si la señal es uno de los valores conocidos.
func (s Signal) Valid() bool {
	return s == SignalHold || s == SignalBuy || s == SignalSell
}

// SignalSet mapea timestamps de velas a señales BUY/SELL.
// Los timestamps ausentes son HOLD implícito. Solo tienen sentido los
// timestamps que son miembros exactos de la BarSeries que lo produjo.
type SignalSet map[time.Time]Signal

// At devuelve la señal para el timestamp dado, o SignalHold si no hay entrada.
func (ss SignalSet) At(ts time.Time) Signal {
	if ss == nil {
		return SignalHold
	}
	if s, ok := ss[ts]; ok {
		return s
	}
	return SignalHold
}
