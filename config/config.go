package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Trading  TradingConfig  `yaml:"trading"`
	Strategy StrategyConfig `yaml:"strategy"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// TradingConfig controla los parámetros por defecto de los runs.
type TradingConfig struct {
	Pair            string  `yaml:"pair"`
	IntervalMinutes int     `yaml:"interval_minutes"`
	InitialCash     float64 `yaml:"initial_cash"`
}

// StrategyConfig contiene los periodos ajustables de las estrategias.
type StrategyConfig struct {
	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`
	SMAShort   int `yaml:"sma_short"`
	SMALong    int `yaml:"sma_long"`
}

// APIConfig contiene el base URL de Kraken y las credenciales.
// Key y secret vienen SOLO del entorno (.env), nunca del YAML.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"-"`
	Secret  string `yaml:"-"`
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las credenciales y los overrides de logging vienen del entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Interval devuelve el intervalo de velas como time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Trading.IntervalMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KRAKEN_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("KRAKEN_API_SECRET"); v != "" {
		cfg.API.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.Pair == "" {
		cfg.Trading.Pair = "XBTUSD"
	}
	if cfg.Trading.IntervalMinutes <= 0 {
		cfg.Trading.IntervalMinutes = 15
	}
	if cfg.Trading.InitialCash <= 0 {
		cfg.Trading.InitialCash = 100000
	}
	if cfg.Strategy.MACDFast <= 0 {
		cfg.Strategy.MACDFast = 12
	}
	if cfg.Strategy.MACDSlow <= 0 {
		cfg.Strategy.MACDSlow = 26
	}
	if cfg.Strategy.MACDSignal <= 0 {
		cfg.Strategy.MACDSignal = 9
	}
	if cfg.Strategy.SMAShort <= 0 {
		cfg.Strategy.SMAShort = 20
	}
	if cfg.Strategy.SMALong <= 0 {
		cfg.Strategy.SMALong = 50
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.kraken.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "krakenbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
