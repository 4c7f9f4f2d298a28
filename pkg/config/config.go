package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Source struct {
		Adapter     string        `yaml:"adapter"`
		RawTTL      time.Duration `yaml:"raw_ttl"`
		SearchTTL   time.Duration `yaml:"search_ttl"`
		HTTPTimeout time.Duration `yaml:"http_timeout"`
		UserAgent   string        `yaml:"user_agent"`
	} `yaml:"source"`
	CoinGecko struct {
		BaseURL     string  `yaml:"base_url"`
		RPS         float64 `yaml:"rps"`
		Burst       float64 `yaml:"burst"`
		MaxAttempts int     `yaml:"max_attempts"`
		MaxTerms    int     `yaml:"max_terms"`
		IDsPerTerm  int     `yaml:"ids_per_term"`
		MaxIDs      int     `yaml:"max_ids"`
		Cap         int     `yaml:"cap"`
	} `yaml:"coingecko"`
	DexScreener struct {
		BaseURL     string        `yaml:"base_url"`
		RPS         float64       `yaml:"rps"`
		Burst       float64       `yaml:"burst"`
		MaxAttempts int           `yaml:"max_attempts"`
		MaxTerms    int           `yaml:"max_terms"`
		Pacing      time.Duration `yaml:"pacing"`
		Cap         int           `yaml:"cap"`
		Dedupe      string        `yaml:"dedupe"`
	} `yaml:"dexscreener"`
	Blend struct {
		WeightCoinGecko   float64 `yaml:"weight_coingecko"`
		WeightDexScreener float64 `yaml:"weight_dexscreener"`
		Cap               int     `yaml:"cap"`
	} `yaml:"blend"`
	Seeds struct {
		File string `yaml:"file"`
	} `yaml:"seeds"`
	Heat struct {
		WeightVolume    float64 `yaml:"weight_volume"`
		WeightLiquidity float64 `yaml:"weight_liquidity"`
	} `yaml:"heat"`
	Sink struct {
		Type string `yaml:"type"` // clickhouse | kafka | none
	} `yaml:"sink"`
	Kafka struct {
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
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Jobs struct {
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"jobs"`
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

	if v := os.Getenv("ADAPTER"); v != "" {
		c.Source.Adapter = v
	}
	if v := os.Getenv("SEEDS_FILE"); v != "" {
		c.Seeds.File = v
	}
	if v := os.Getenv("SINK"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Jobs.Redis.Addr = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Source.Adapter == "" {
		return fmt.Errorf("source.adapter is required")
	}
	if c.Seeds.File == "" {
		return fmt.Errorf("seeds.file is required")
	}
	if c.Source.Adapter == "coingecko" || c.Source.Adapter == "blend" {
		if c.CoinGecko.RPS <= 0 {
			return fmt.Errorf("coingecko.rps must be positive, got %v", c.CoinGecko.RPS)
		}
		if c.CoinGecko.Burst < 1 {
			return fmt.Errorf("coingecko.burst must be at least 1, got %v", c.CoinGecko.Burst)
		}
	}
	if c.Source.Adapter == "dexscreener" || c.Source.Adapter == "blend" {
		if c.DexScreener.RPS <= 0 {
			return fmt.Errorf("dexscreener.rps must be positive, got %v", c.DexScreener.RPS)
		}
		if c.DexScreener.Burst < 1 {
			return fmt.Errorf("dexscreener.burst must be at least 1, got %v", c.DexScreener.Burst)
		}
	}
	switch c.Sink.Type {
	case "", "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("sink.type must be 'kafka', 'clickhouse' or 'none', got '%s'", c.Sink.Type)
	}
	if c.Sink.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with sink.type 'kafka'")
	}
	if c.Sink.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required with sink.type 'clickhouse'")
	}
	switch c.DexScreener.Dedupe {
	case "", "first", "volume":
	default:
		return fmt.Errorf("dexscreener.dedupe must be 'first' or 'volume', got '%s'", c.DexScreener.Dedupe)
	}
	return nil
}
