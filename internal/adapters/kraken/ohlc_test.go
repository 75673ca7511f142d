package kraken

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ohlcPage construye el JSON de una página de /0/public/OHLC.
func ohlcPage(rows string) string {
	return fmt.Sprintf(`{"error":[],"result":{"XXBTZUSD":[%s],"last":0}}`, rows)
}

func ohlcRow(ts int64, open float64) string {
	return fmt.Sprintf(`[%d,"%.1f","%.1f","%.1f","%.1f","%.1f","1.5",12]`,
		ts, open, open+1, open-1, open, open)
}

func TestFetchOHLC_PaginatesAndTruncates(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/0/public/OHLC", r.URL.Path)
		require.Equal(t, "XXBTZUSD", r.URL.Query().Get("pair"))
		require.Equal(t, "60", r.URL.Query().Get("interval"))

		since := r.URL.Query().Get("since")
		requests = append(requests, since)

		// primera página: velas 3600 y 7200; segunda: 7200 (solapada),
		// 10800 y 14400 — la última cae fuera del rango pedido
		if since == "3600" {
			fmt.Fprint(w, ohlcPage(ohlcRow(3600, 100)+","+ohlcRow(7200, 110)))
			return
		}
		fmt.Fprint(w, ohlcPage(ohlcRow(7200, 110)+","+ohlcRow(10800, 90)+","+ohlcRow(14400, 95)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	series, err := c.FetchOHLC(context.Background(), "XBTUSD", time.Hour,
		time.Unix(3600, 0).UTC(), time.Unix(10800, 0).UTC())
	require.NoError(t, err)

	// pagina con since = último ts + 1
	assert.Equal(t, []string{"3600", "7201"}, requests)

	require.Equal(t, 3, series.Len())
	assert.Equal(t, time.Unix(3600, 0).UTC(), series.Bars[0].Timestamp)
	assert.Equal(t, 100.0, series.Bars[0].Open)
	assert.Equal(t, time.Unix(10800, 0).UTC(), series.Bars[2].Timestamp)
	require.NoError(t, series.Validate())
}

func TestFetchOHLC_EmptyPageStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":[],"result":{"XXBTZUSD":[],"last":0}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	series, err := c.FetchOHLC(context.Background(), "XBTUSD", time.Hour,
		time.Unix(3600, 0).UTC(), time.Unix(7200, 0).UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}

func TestFetchOHLC_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":["EQuery:Unknown asset pair"],"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchOHLC(context.Background(), "XBTUSD", time.Hour,
		time.Unix(3600, 0).UTC(), time.Unix(7200, 0).UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown asset pair")
}

func TestFetchOHLC_StalledPaginationFails(t *testing.T) {
	// el upstream repite siempre la misma página sin llegar a end
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, ohlcPage(ohlcRow(3600, 100)+","+ohlcRow(7200, 110)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchOHLC(context.Background(), "XBTUSD", time.Hour,
		time.Unix(3600, 0).UTC(), time.Unix(86400, 0).UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination stalled")
	assert.Equal(t, 2, calls)
}

func TestFetchOHLC_RejectsSubMinuteInterval(t *testing.T) {
	c := NewClient("http://unused")
	_, err := c.FetchOHLC(context.Background(), "XBTUSD", 30*time.Second,
		time.Unix(0, 0), time.Unix(7200, 0))
	assert.Error(t, err)
}
