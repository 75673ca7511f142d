package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

var ts = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestTradeExecuted_PrintsAction(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.TradeExecuted(domain.Trade{Action: domain.SignalBuy, Timestamp: ts, Price: 100.5})

	out := buf.String()
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "100.50")
	assert.Contains(t, out, "2025-01-01T12:00:00Z")
}

func TestRunFinished_Summary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.RunFinished(&domain.Result{
		Start:       ts,
		End:         ts.Add(48 * time.Hour),
		Strategy:    "macd",
		Pair:        "XBTUSD",
		InitialCash: 1000,
		FinalCash:   950,
		Return:      -0.05,
		Trades: []domain.Trade{
			{Action: domain.SignalBuy, Timestamp: ts, Price: 100},
			{Action: domain.SignalSell, Timestamp: ts.Add(48 * time.Hour), Price: 95},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "macd run on XBTUSD")
	assert.Contains(t, out, "$1000.00")
	assert.Contains(t, out, "$950.00")
	assert.Contains(t, out, "-5.00%")
	assert.Contains(t, out, "SELL")
}

func TestRunFinished_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)

	c.RunFinished(&domain.Result{Strategy: "macd", Pair: "XBTUSD", InitialCash: 1000, FinalCash: 1000})

	assert.Contains(t, buf.String(), "(no trades)")
}
