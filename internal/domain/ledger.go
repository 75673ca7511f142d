package domain

import "time"

// Ledger es el estado de la simulación: cash y posición, nunca negativos.
// Entre velas, como mucho uno de los dos es positivo — todo invertido o
// todo en cash, sin sizing parcial ni cortos.
type Ledger struct {
	Cash     float64
	Position float64
}

// NewLedger crea un ledger con el cash inicial dado y sin posición.
func NewLedger(initialCash float64) Ledger {
	return Ledger{Cash: initialCash}
}

// Flat indica si el ledger no tiene posición abierta.
func (l Ledger) Flat() bool {
	return l.Position == 0
}

// Equity devuelve el valor total del ledger al precio dado.
func (l Ledger) Equity(price float64) float64 {
	return l.Cash + l.Position*price
}

// Trade es una ejecución simulada, inmutable, en orden de ejecución.
type Trade struct {
	Action    Signal
	Timestamp time.Time
	Price     float64
	// Volume es la cantidad de base ejecutada: lo comprado en un BUY,
	// lo vendido en un SELL o liquidación.
	Volume float64
}

// Result es el snapshot final de un backtest o de una sesión paper.
type Result struct {
	Start       time.Time
	End         time.Time
	Strategy    string
	Pair        string
	InitialCash float64
	FinalCash   float64
	Return      float64
	Trades      []Trade
	Series      *BarSeries
}

// ComputeReturn calcula la fracción de retorno sobre el cash inicial.
func ComputeReturn(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial
}
