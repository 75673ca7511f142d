package ports

import (
	"context"
	"fmt"
	"strings"
)

// OrderSide es el lado de una orden real.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Executor coloca órdenes reales en el exchange. Solo lo usa el modo live —
// el engine de simulación nunca lo llama.
type Executor interface {
	// PlaceOrder firma y envía una orden limit y devuelve el transaction id.
	PlaceOrder(ctx context.Context, pair string, side OrderSide, orderType string, price, volume float64) (string, error)
}

// VenueError es el rechazo del exchange: HTTP no-2xx o payload con errores.
type VenueError struct {
	Reasons []string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue rejected order: %s", strings.Join(e.Reasons, "; "))
}
