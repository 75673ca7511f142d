package storage

// sqlite.go — persistencia de runs y trades.
//
// Estrategia:
//   - `runs`: una fila por backtest o sesión paper/live, cerrada al terminar.
//   - `trades`: el trade log completo de cada run, append-only.
//   - `watermarks`: última vela procesada por run — permite reanudar una
//     sesión paper sin reprocesar timestamps.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/alejandrodnm/krakenbot/internal/ports"
)

const schema = `
-- Una fila por run; finished_at NULL mientras está en curso
CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    mode         TEXT     NOT NULL,
    strategy     TEXT     NOT NULL,
    pair         TEXT     NOT NULL,
    started_at   DATETIME NOT NULL,
    finished_at  DATETIME,
    initial_cash REAL     NOT NULL,
    final_cash   REAL,
    return_pct   REAL
);

-- Trade log append-only por run
CREATE TABLE IF NOT EXISTS trades (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT     NOT NULL REFERENCES runs(id),
    action TEXT     NOT NULL,
    ts     DATETIME NOT NULL,
    price  REAL     NOT NULL,
    volume REAL     NOT NULL DEFAULT 0
);

-- Última vela procesada por run (solo paper/live)
CREATE TABLE IF NOT EXISTS watermarks (
    run_id TEXT PRIMARY KEY REFERENCES runs(id),
    ts     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, ts);
CREATE INDEX IF NOT EXISTS idx_runs_start ON runs(started_at DESC);
`

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema. Usa ":memory:" para tests.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// CreateRun registra el inicio de un run y devuelve su registro.
func (s *SQLiteStorage) CreateRun(ctx context.Context, mode, strategy, pair string, initialCash float64) (ports.RunRecord, error) {
	rec := ports.RunRecord{
		ID:          uuid.New().String(),
		Mode:        mode,
		Strategy:    strategy,
		Pair:        pair,
		StartedAt:   time.Now().UTC(),
		InitialCash: initialCash,
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, strategy, pair, started_at, initial_cash) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode, rec.Strategy, rec.Pair, rec.StartedAt, initialCash,
	); err != nil {
		return ports.RunRecord{}, fmt.Errorf("storage.CreateRun: %w", err)
	}
	return rec, nil
}

// GetRun devuelve el registro de un run existente.
func (s *SQLiteStorage) GetRun(ctx context.Context, runID string) (ports.RunRecord, error) {
	var rec ports.RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, mode, strategy, pair, started_at, initial_cash FROM runs WHERE id = ?`, runID,
	).Scan(&rec.ID, &rec.Mode, &rec.Strategy, &rec.Pair, &rec.StartedAt, &rec.InitialCash)
	if err != nil {
		return ports.RunRecord{}, fmt.Errorf("storage.GetRun: %q: %w", runID, err)
	}
	rec.StartedAt = rec.StartedAt.UTC()
	return rec, nil
}

// SaveTrade añade un trade al log persistido del run.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, runID string, trade domain.Trade) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (run_id, action, ts, price, volume) VALUES (?, ?, ?, ?, ?)`,
		runID, trade.Action.String(), trade.Timestamp.UTC(), trade.Price, trade.Volume,
	); err != nil {
		return fmt.Errorf("storage.SaveTrade: %w", err)
	}
	return nil
}

// FinishRun cierra el run con el resultado final.
func (s *SQLiteStorage) FinishRun(ctx context.Context, runID string, result *domain.Result) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, final_cash = ?, return_pct = ? WHERE id = ?`,
		time.Now().UTC(), result.FinalCash, result.Return*100, runID,
	); err != nil {
		return fmt.Errorf("storage.FinishRun: %w", err)
	}
	return nil
}

// SaveWatermark guarda (o actualiza) la última vela procesada del run.
func (s *SQLiteStorage) SaveWatermark(ctx context.Context, runID string, ts time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO watermarks (run_id, ts) VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET ts = excluded.ts
	`, runID, ts.UTC()); err != nil {
		return fmt.Errorf("storage.SaveWatermark: %w", err)
	}
	return nil
}

// LoadWatermark devuelve el watermark guardado, o false si no hay.
func (s *SQLiteStorage) LoadWatermark(ctx context.Context, runID string) (time.Time, bool, error) {
	var ts time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT ts FROM watermarks WHERE run_id = ?`, runID,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("storage.LoadWatermark: %w", err)
	}
	return ts.UTC(), true, nil
}

// GetTrades devuelve el trade log persistido de un run, en orden de ejecución.
func (s *SQLiteStorage) GetTrades(ctx context.Context, runID string) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, ts, price, volume FROM trades WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var action string
		var trade domain.Trade
		if err := rows.Scan(&action, &trade.Timestamp, &trade.Price, &trade.Volume); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		switch action {
		case "buy":
			trade.Action = domain.SignalBuy
		case "sell":
			trade.Action = domain.SignalSell
		}
		trade.Timestamp = trade.Timestamp.UTC()
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
