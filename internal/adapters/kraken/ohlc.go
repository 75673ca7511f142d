package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// FetchOHLC implementa ports.MarketData contra GET /0/public/OHLC.
// Pagina avanzando since = último timestamp + 1 hasta agotar el rango,
// deduplica por timestamp, ordena ascendente y trunca lo posterior a end.
// Idempotente para un rango fijo.
func (c *Client) FetchOHLC(ctx context.Context, pair string, interval time.Duration, start, end time.Time) (*domain.BarSeries, error) {
	pairCode, err := PairCode(pair)
	if err != nil {
		return nil, fmt.Errorf("kraken.FetchOHLC: %w", err)
	}

	intervalMin := int(interval.Minutes())
	if intervalMin <= 0 {
		return nil, fmt.Errorf("kraken.FetchOHLC: interval %s below one minute", interval)
	}

	series := domain.NewBarSeries(pair, interval)
	since := start.Unix()

	for {
		params := url.Values{}
		params.Set("pair", pairCode)
		params.Set("interval", strconv.Itoa(intervalMin))
		params.Set("since", strconv.FormatInt(since, 10))

		result, err := c.getPublic(ctx, "/0/public/OHLC", params)
		if err != nil {
			return nil, fmt.Errorf("kraken.FetchOHLC: page since=%d: %w", since, err)
		}

		rows, err := parseOHLCResult(result, pairCode)
		if err != nil {
			return nil, fmt.Errorf("kraken.FetchOHLC: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		lastTS := int64(0)
		for _, bar := range rows {
			ts := bar.Timestamp.Unix()
			if ts > lastTS {
				lastTS = ts
			}
			// páginas solapadas: descartar lo ya recibido
			if last, ok := series.Last(); ok && !bar.Timestamp.After(last.Timestamp) {
				continue
			}
			if err := series.Append(bar); err != nil {
				return nil, fmt.Errorf("kraken.FetchOHLC: %w", err)
			}
		}

		slog.Debug("fetched OHLC page",
			"pair", pairCode, "since", since, "rows", len(rows), "last", lastTS)

		if lastTS >= end.Unix() {
			break
		}
		// si el cursor no avanza, el upstream repite página: cortar
		if lastTS+1 <= since {
			return nil, fmt.Errorf("kraken.FetchOHLC: pagination stalled at since=%d", since)
		}
		since = lastTS + 1
	}

	series.TruncateAfter(end)
	return series, nil
}

// parseOHLCResult extrae las filas del par del campo result. Cada fila es
// [time, open, high, low, close, vwap, volume, count], con los precios como
// strings. El campo "last" del result se ignora.
func parseOHLCResult(result json.RawMessage, pairCode string) ([]domain.Bar, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}

	raw, ok := payload[pairCode]
	if !ok {
		return nil, nil
	}

	// los precios llegan como strings JSON, time y count como números
	var rows [][]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse rows for %s: %w", pairCode, err)
	}

	bars := make([]domain.Bar, 0, len(rows))
	for i, row := range rows {
		if len(row) < 8 {
			return nil, fmt.Errorf("row %d: expected 8 fields, got %d", i, len(row))
		}

		ts, err := fieldInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad timestamp: %w", i, err)
		}
		fields := make([]float64, 6)
		for j := 1; j <= 6; j++ {
			v, err := fieldFloat64(row[j])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad field %d: %w", i, j, err)
			}
			fields[j-1] = v
		}
		count, err := fieldInt64(row[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad count: %w", i, err)
		}

		bar := domain.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			VWAP:      fields[4],
			Volume:    fields[5],
			Count:     count,
		}
		if err := bar.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// fieldFloat64 convierte un campo OHLC que puede llegar como string o número.
func fieldFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseFloat(x, 64)
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// fieldInt64 convierte time/count, que Kraken envía como número JSON.
func fieldInt64(v any) (int64, error) {
	f, err := fieldFloat64(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
