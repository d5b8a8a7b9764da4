package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type QuotesCfg struct {
	RatesURL       string             `yaml:"rates_url"`
	GoldURL        string             `yaml:"gold_url"`
	CacheTTLMs     int                `yaml:"cache_ttl_ms"`
	TimeoutMs      int                `yaml:"timeout_ms"`
	FallbackPrices map[string]float64 `yaml:"fallback_prices"`
}

type TimingsCfg struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

type MetricsCfg struct {
	ListenAddr string `yaml:"listen_addr"`
}

type DashCfg struct {
	ListenAddr string `yaml:"listen_addr"`
}

type RedisCfg struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	ActiveKey string `yaml:"active_key"`
	QuoteNS   string `yaml:"quote_ns"`
	MetricsNS string `yaml:"metrics_ns"`
	Stream    string `yaml:"stream"`
}

type Config struct {
	Quotes  QuotesCfg  `yaml:"quotes"`
	Timings TimingsCfg `yaml:"timings"`
	Metrics MetricsCfg `yaml:"metrics"`
	Dash    DashCfg    `yaml:"dash"`
	Redis   RedisCfg   `yaml:"redis"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Quotes.CacheTTLMs == 0 {
		c.Quotes.CacheTTLMs = 30000
	}
	if c.Quotes.TimeoutMs == 0 {
		c.Quotes.TimeoutMs = 10000
	}
	if c.Timings.PollIntervalMs == 0 {
		c.Timings.PollIntervalMs = 15000
	}
	if c.Dash.ListenAddr == "" {
		c.Dash.ListenAddr = ":8080"
	}
	if c.Redis.ActiveKey == "" {
		c.Redis.ActiveKey = "quote:active"
	}
	if c.Redis.QuoteNS == "" {
		c.Redis.QuoteNS = "quote:last:"
	}
	if c.Redis.MetricsNS == "" {
		c.Redis.MetricsNS = "pair:metrics:"
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "quote:stream"
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Quotes.CacheTTLMs) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Quotes.TimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Timings.PollIntervalMs) * time.Millisecond
}
