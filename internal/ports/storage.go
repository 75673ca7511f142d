package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// RunRecord identifica un run persistido (backtest o sesión paper).
type RunRecord struct {
	ID          string
	Mode        string
	Strategy    string
	Pair        string
	StartedAt   time.Time
	InitialCash float64
}

// RunStorage persiste runs, trades y el watermark del paper trader.
type RunStorage interface {
	// CreateRun registra el inicio de un run y devuelve su registro.
	CreateRun(ctx context.Context, mode, strategy, pair string, initialCash float64) (RunRecord, error)

	// GetRun devuelve el registro de un run existente.
	GetRun(ctx context.Context, runID string) (RunRecord, error)

	// SaveTrade añade un trade al log persistido del run.
	SaveTrade(ctx context.Context, runID string, trade domain.Trade) error

	// FinishRun cierra el run con el resultado final.
	FinishRun(ctx context.Context, runID string, result *domain.Result) error

	// SaveWatermark guarda el timestamp de la última vela procesada.
	SaveWatermark(ctx context.Context, runID string, ts time.Time) error

	// LoadWatermark devuelve el watermark guardado, o false si no hay.
	LoadWatermark(ctx context.Context, runID string) (time.Time, bool, error)

	// GetTrades devuelve el trade log persistido de un run, en orden.
	GetTrades(ctx context.Context, runID string) ([]domain.Trade, error)

	Close() error
}
