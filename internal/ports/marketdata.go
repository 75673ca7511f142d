package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// MarketData obtiene velas OHLC históricas del exchange.
type MarketData interface {
	// FetchOHLC devuelve las velas del par en [start, end], ordenadas
	// ascendente y sin duplicados. Pagina internamente contra el upstream
	// y trunca cualquier vela posterior a end. Es idempotente: el mismo
	// rango devuelve el mismo conjunto de velas.
	FetchOHLC(ctx context.Context, pair string, interval time.Duration, start, end time.Time) (*domain.BarSeries, error)
}
