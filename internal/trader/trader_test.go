package trader_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/alejandrodnm/krakenbot/internal/ports"
)

// --- mocks ---

// mockMarketData devuelve series predefinidas, una por llamada, y después
// series vacías. Registra los rangos pedidos.
type mockMarketData struct {
	mu     sync.Mutex
	pages  []*domain.BarSeries
	err    error
	calls  int
	ranges [][2]time.Time
}

func (m *mockMarketData) FetchOHLC(_ context.Context, pair string, interval time.Duration, start, end time.Time) (*domain.BarSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.ranges = append(m.ranges, [2]time.Time{start, end})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.pages) == 0 {
		return domain.NewBarSeries(pair, interval), nil
	}
	page := m.pages[0]
	m.pages = m.pages[1:]
	return page, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	trades   []domain.Trade
	finished []*domain.Result
}

func (m *mockNotifier) TradeExecuted(trade domain.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
}

func (m *mockNotifier) RunFinished(result *domain.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, result)
}

type mockStorage struct {
	mu         sync.Mutex
	runs       []ports.RunRecord
	trades     map[string][]domain.Trade
	watermarks map[string]time.Time
	finished   map[string]*domain.Result
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		trades:     make(map[string][]domain.Trade),
		watermarks: make(map[string]time.Time),
		finished:   make(map[string]*domain.Result),
	}
}

func (m *mockStorage) CreateRun(_ context.Context, mode, strategy, pair string, initialCash float64) (ports.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := ports.RunRecord{
		ID: "run-1", Mode: mode, Strategy: strategy, Pair: pair,
		StartedAt: time.Now(), InitialCash: initialCash,
	}
	m.runs = append(m.runs, rec)
	return rec, nil
}

func (m *mockStorage) GetRun(_ context.Context, runID string) (ports.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.runs {
		if rec.ID == runID {
			return rec, nil
		}
	}
	return ports.RunRecord{}, errors.New("run not found")
}

func (m *mockStorage) SaveTrade(_ context.Context, runID string, trade domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[runID] = append(m.trades[runID], trade)
	return nil
}

func (m *mockStorage) FinishRun(_ context.Context, runID string, result *domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished[runID] = result
	return nil
}

func (m *mockStorage) SaveWatermark(_ context.Context, runID string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watermarks[runID] = ts
	return nil
}

func (m *mockStorage) LoadWatermark(_ context.Context, runID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.watermarks[runID]
	return ts, ok, nil
}

func (m *mockStorage) GetTrades(_ context.Context, runID string) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Trade(nil), m.trades[runID]...), nil
}

func (m *mockStorage) Close() error { return nil }

type mockExecutor struct {
	mu     sync.Mutex
	orders []placedOrder
	err    error
}

type placedOrder struct {
	pair      string
	side      ports.OrderSide
	orderType string
	price     float64
	volume    float64
}

func (m *mockExecutor) PlaceOrder(_ context.Context, pair string, side ports.OrderSide, orderType string, price, volume float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.orders = append(m.orders, placedOrder{pair, side, orderType, price, volume})
	return "TX-1", nil
}

// fixedSignals replica el mock de estrategia del engine.
type fixedSignals struct {
	signals domain.SignalSet
	err     error
}

func (f *fixedSignals) Name() string { return "fixed" }

func (f *fixedSignals) Compute(_ *domain.BarSeries) (domain.SignalSet, error) {
	return f.signals, f.err
}

// --- helpers ---

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(ts time.Time, open, close float64) domain.Bar {
	h, l := open, open
	if close > h {
		h = close
	}
	if close < l {
		l = close
	}
	return domain.Bar{
		Timestamp: ts, Open: open, High: h, Low: l, Close: close,
		VWAP: open, Volume: 1, Count: 1,
	}
}

// threeBars: opens [100, 110, 90], close final 95 — el escenario de referencia.
func threeBars() *domain.BarSeries {
	s := domain.NewBarSeries("XBTUSD", time.Hour)
	s.Bars = []domain.Bar{
		bar(t0, 100, 105),
		bar(t0.Add(time.Hour), 110, 108),
		bar(t0.Add(2*time.Hour), 90, 95),
	}
	return s
}

var errBoom = errors.New("boom")
