package ops

import (
	"os"
	"path/filepath"
	"strings"

	"marketspread/internal/market"
	"marketspread/internal/risk"
	"marketspread/pkg/conn"
	"marketspread/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"
)

// Sink drivers.
const (
	SinkLog      = "log"
	SinkPostgres = "postgres"
	SinkNone     = "none"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 4096
	defaultAppName   = "marketspread"
)

// FileConfig mirrors the config file layout. Decimals are strings so no
// precision is lost before they are parsed.
type FileConfig struct {
	Market    MarketConfig    `json:"market" yaml:"market"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Sink      SinkConfig      `json:"sink" yaml:"sink"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Profiling ProfilingConfig `json:"profiling" yaml:"profiling"`
	Workers   int             `json:"workers" yaml:"workers"`
	QueueSize int             `json:"queueSize" yaml:"queueSize"`
}

// MarketConfig configures the quote store.
type MarketConfig struct {
	SpreadThreshold string `json:"spreadThreshold" yaml:"spreadThreshold"`
	Shards          int    `json:"shards" yaml:"shards"`
}

// LedgerConfig configures the dedup ledger.
type LedgerConfig struct {
	Shards int `json:"shards" yaml:"shards"`
}

// RiskConfig holds the optional pre-trade limits.
type RiskConfig struct {
	Version              uint16 `json:"version" yaml:"version"`
	KillSwitch           bool   `json:"killSwitch" yaml:"killSwitch"`
	MaxOrderQty          string `json:"maxOrderQty" yaml:"maxOrderQty"`
	MaxOrderNotional     string `json:"maxOrderNotional" yaml:"maxOrderNotional"`
	MaxPriceDeviationBps int64  `json:"maxPriceDeviationBps" yaml:"maxPriceDeviationBps"`
}

// SinkConfig selects where decisions are journaled.
type SinkConfig struct {
	Driver   string              `json:"driver" yaml:"driver"`
	Postgres conn.PostgresOption `json:"postgres" yaml:"postgres"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// ProfilingConfig configures continuous profiling.
type ProfilingConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	ServerAddress   string `json:"serverAddress" yaml:"serverAddress"`
	ApplicationName string `json:"applicationName" yaml:"applicationName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Market       market.Config
	LedgerShards int
	Risk         risk.Config
	Sink         SinkConfig
	Metrics      MetricsConfig
	Profiling    ProfilingConfig
	Workers      int
	QueueSize    int
}

// FieldError reports which config field failed validation.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + " " + strings.TrimSpace(e.Value) + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Default returns the configuration used when no file is given.
func Default() Loaded {
	loaded, _ := Resolve(FileConfig{})
	return loaded
}

// Load reads a config file. Files ending in .yaml or .yml are YAML, anything else is JSON.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "parse config %s", path)
	}
	return Resolve(cfg)
}

// Parse decodes raw config bytes.
func Parse(data []byte, yamlFormat bool) (FileConfig, error) {
	var cfg FileConfig
	if yamlFormat {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, errors.Wrap(err, "decode yaml")
		}
		return cfg, nil
	}
	if err := sonic.ConfigFastest.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, errors.Wrap(err, "decode json")
	}
	return cfg, nil
}

// Resolve validates cfg and fills in defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	threshold := market.DefaultSpreadThreshold
	if cfg.Market.SpreadThreshold != "" {
		v, err := parseDecimal("market.spreadThreshold", cfg.Market.SpreadThreshold)
		if err != nil {
			return Loaded{}, err
		}
		if v.Sign() <= 0 {
			return Loaded{}, &FieldError{Field: "market.spreadThreshold", Value: cfg.Market.SpreadThreshold, Err: exception.ErrConfigInvalidThreshold}
		}
		threshold = v
	}

	riskCfg, err := resolveRisk(cfg.Risk)
	if err != nil {
		return Loaded{}, err
	}

	sink := cfg.Sink
	sink.Driver = strings.ToLower(strings.TrimSpace(sink.Driver))
	switch sink.Driver {
	case "":
		sink.Driver = SinkLog
	case SinkLog, SinkPostgres, SinkNone:
	default:
		return Loaded{}, &FieldError{Field: "sink.driver", Value: cfg.Sink.Driver, Err: exception.ErrConfigUnknownSink}
	}

	profiling := cfg.Profiling
	if profiling.ApplicationName == "" {
		profiling.ApplicationName = defaultAppName
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return Loaded{
		Market:       market.Config{SpreadThreshold: threshold, Shards: cfg.Market.Shards},
		LedgerShards: cfg.Ledger.Shards,
		Risk:         riskCfg,
		Sink:         sink,
		Metrics:      cfg.Metrics,
		Profiling:    profiling,
		Workers:      workers,
		QueueSize:    queueSize,
	}, nil
}

func resolveRisk(cfg RiskConfig) (risk.Config, error) {
	out := risk.Config{
		Version:              cfg.Version,
		KillSwitch:           cfg.KillSwitch,
		MaxPriceDeviationBps: cfg.MaxPriceDeviationBps,
	}
	if cfg.MaxPriceDeviationBps < 0 {
		return risk.Config{}, &FieldError{Field: "risk.maxPriceDeviationBps", Err: exception.ErrConfigInvalidLimit}
	}

	limits := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"risk.maxOrderQty", cfg.MaxOrderQty, &out.MaxOrderQty},
		{"risk.maxOrderNotional", cfg.MaxOrderNotional, &out.MaxOrderNotional},
	}
	for _, l := range limits {
		if l.raw == "" {
			continue
		}
		v, err := parseDecimal(l.field, l.raw)
		if err != nil {
			return risk.Config{}, err
		}
		if v.IsNegative() {
			return risk.Config{}, &FieldError{Field: l.field, Value: l.raw, Err: exception.ErrConfigInvalidLimit}
		}
		*l.dst = v
	}
	return out, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: exception.ErrConfigInvalidDecimal}
	}
	return v, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
