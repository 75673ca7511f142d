package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/krakenbot/config"
	"github.com/alejandrodnm/krakenbot/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	mode := flag.String("mode", "backtest", "run mode: backtest|paper|live")
	strategyName := flag.String("strategy", "macd", "signal strategy: macd|smacross")
	pair := flag.String("pair", "", "trading pair, e.g. XBTUSD (overrides config)")
	interval := flag.Int("interval", 0, "candle interval in minutes (overrides config)")
	cash := flag.Float64("cash", 0, "initial cash (overrides config)")
	start := flag.String("start", "", "backtest start, RFC 3339 or 2006-01-02")
	end := flag.String("end", "", "backtest end, RFC 3339 or 2006-01-02")
	resume := flag.String("resume", "", "resume a persisted paper/live run by id")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *pair != "" {
		cfg.Trading.Pair = *pair
	}
	if *interval > 0 {
		cfg.Trading.IntervalMinutes = *interval
	}
	if *cash > 0 {
		cfg.Trading.InitialCash = *cash
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	fn, err := strategy.New(*strategyName, strategy.Config{
		FastPeriod:   cfg.Strategy.MACDFast,
		SlowPeriod:   cfg.Strategy.MACDSlow,
		SignalPeriod: cfg.Strategy.MACDSignal,
		ShortPeriod:  cfg.Strategy.SMAShort,
		LongPeriod:   cfg.Strategy.SMALong,
	})
	if err != nil {
		slog.Error("unknown strategy", "err", err, "available", strategy.Names())
		os.Exit(1)
	}

	slog.Info("krakenbot starting",
		"config", *configPath,
		"mode", *mode,
		"strategy", fn.Name(),
		"pair", cfg.Trading.Pair,
		"interval", cfg.Interval(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "backtest":
		runBacktest(ctx, cfg, fn, *start, *end)
	case "paper":
		runPaper(ctx, cfg, fn, *resume)
	case "live":
		runLive(ctx, cfg, fn, *resume)
	default:
		slog.Error("unknown mode, expected backtest|paper|live", "mode", *mode)
		os.Exit(1)
	}
}

// parseTime acepta RFC 3339 o la forma corta 2006-01-02.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
