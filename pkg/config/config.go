package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SymbolSettings are the per-symbol risk and clustering knobs.
type SymbolSettings struct {
	RiskCap       float64 `yaml:"risk_cap"`
	ClusterRadius float64 `yaml:"cluster_radius"`
	SLBuffer      float64 `yaml:"sl_buffer"`
	SpreadCap     float64 `yaml:"spread_cap"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		BarsTable        string        `yaml:"bars_table"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		ScanTTL  time.Duration `yaml:"scan_ttl"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	PriceFeed struct {
		Mode         string        `yaml:"mode"` // http or ws
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		WebSocketURL string        `yaml:"websocket_url"`
		Timeout      time.Duration `yaml:"timeout"`
		PingInterval time.Duration `yaml:"ping_interval"`
	} `yaml:"pricefeed"`
	Scheduler struct {
		Enabled  bool   `yaml:"enabled"`
		CronSpec string `yaml:"cron_spec"`
	} `yaml:"scheduler"`
	Scan struct {
		Symbols          []string                  `yaml:"symbols"`
		TrendLookback    int                       `yaml:"trend_lookback"`
		ATRWindow        int                       `yaml:"atr_window"`
		StructLookback   int                       `yaml:"struct_lookback"`
		PullbackLookback int                       `yaml:"pullback_lookback"`
		BullThreshold    float64                   `yaml:"bull_threshold"`
		BearThreshold    float64                   `yaml:"bear_threshold"`
		MinRR            float64                   `yaml:"min_rr"`
		Timeout          time.Duration             `yaml:"timeout"`
		PerSymbol        map[string]SymbolSettings `yaml:"per_symbol"`
	} `yaml:"scan"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scan.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("PRICEFEED_API_KEY"); v != "" {
		c.PriceFeed.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Scan.TrendLookback == 0 {
		c.Scan.TrendLookback = 20
	}
	if c.Scan.ATRWindow == 0 {
		c.Scan.ATRWindow = 20
	}
	if c.Scan.StructLookback == 0 {
		c.Scan.StructLookback = 60
	}
	if c.Scan.PullbackLookback == 0 {
		c.Scan.PullbackLookback = 120
	}
	if c.Scan.BullThreshold == 0 {
		c.Scan.BullThreshold = 0.6
	}
	if c.Scan.BearThreshold == 0 {
		c.Scan.BearThreshold = 0.6
	}
	if c.Scan.MinRR == 0 {
		c.Scan.MinRR = 2.0
	}
	if c.Scan.Timeout == 0 {
		c.Scan.Timeout = 15 * time.Second
	}
	if c.PriceFeed.Mode == "" {
		c.PriceFeed.Mode = "http"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("scan.symbols cannot be empty")
	}
	if c.PriceFeed.Mode != "http" && c.PriceFeed.Mode != "ws" {
		return fmt.Errorf("pricefeed.mode must be 'http' or 'ws', got '%s'", c.PriceFeed.Mode)
	}
	if c.PriceFeed.Mode == "http" && c.PriceFeed.BaseURL == "" {
		return fmt.Errorf("pricefeed.base_url is required for http mode")
	}
	if c.PriceFeed.Mode == "ws" && c.PriceFeed.WebSocketURL == "" {
		return fmt.Errorf("pricefeed.websocket_url is required for ws mode")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.CronSpec == "" {
		return fmt.Errorf("scheduler.cron_spec is required when scheduler is enabled")
	}
	return nil
}

// SymbolSettings resolves per-symbol settings. Symbols missing from the
// config get a conservative zero-risk-cap default with a tiny cluster radius.
func (c *Config) SymbolSettings(symbol string) SymbolSettings {
	if s, ok := c.Scan.PerSymbol[symbol]; ok {
		return s
	}
	return SymbolSettings{ClusterRadius: 0.001}
}
