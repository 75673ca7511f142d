// Package strategy contiene las estrategias de señales disponibles.
// Cada estrategia es una función pura de la BarSeries: misma serie,
// mismas señales — requisito para que el replay incremental del paper
// trader sea válido.
package strategy

import (
	"fmt"
	"sort"

	"github.com/alejandrodnm/krakenbot/internal/engine"
)

// Config agrupa los parámetros ajustables de las estrategias.
type Config struct {
	// MACD
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int

	// SMA crossover
	ShortPeriod int
	LongPeriod  int
}

// DefaultConfig devuelve los periodos clásicos de cada estrategia.
func DefaultConfig() Config {
	return Config{
		FastPeriod:   12,
		SlowPeriod:   26,
		SignalPeriod: 9,
		ShortPeriod:  20,
		LongPeriod:   50,
	}
}

// factories mapea nombre → constructor. Las estrategias se seleccionan por
// nombre en el arranque, nunca por lookup dinámico.
var factories = map[string]func(Config) engine.SignalFunc{
	macdName:     func(cfg Config) engine.SignalFunc { return NewMACD(cfg.FastPeriod, cfg.SlowPeriod, cfg.SignalPeriod) },
	smaCrossName: func(cfg Config) engine.SignalFunc { return NewSMACross(cfg.ShortPeriod, cfg.LongPeriod) },
}

// New crea la estrategia por nombre, o error si no existe.
func New(name string, cfg Config) (engine.SignalFunc, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("strategy.New: unknown strategy %q (available: %v)", name, Names())
	}
	return factory(cfg), nil
}

// Names devuelve los nombres registrados, ordenados.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
