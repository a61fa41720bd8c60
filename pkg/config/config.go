package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FinAgent/pkg/util"
)

// NamedSymbol maps a display name to the symbol used by the market data source.
type NamedSymbol struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"130s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
		CORS            bool          `yaml:"cors"`
		TrustedProxies  []string      `yaml:"trusted_proxies"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
		Ship   struct {
			Enabled   bool          `yaml:"enabled"`
			Topic     string        `yaml:"topic" default:"finagent.logs"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
		} `yaml:"ship"`
	} `yaml:"logging"`
	MarketData struct {
		ChartURL       string        `yaml:"chart_url" default:"https://query1.finance.yahoo.com"`
		SummaryURL     string        `yaml:"summary_url" default:"https://query2.finance.yahoo.com"`
		CookieURL      string        `yaml:"cookie_url" default:"https://fc.yahoo.com"`
		UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout" default:"10s"`
		MaxConcurrency int           `yaml:"max_concurrency" default:"6"`
		Indices        []NamedSymbol `yaml:"indices"`
		Trending       []string      `yaml:"trending"`
	} `yaml:"market_data"`
	Dashboard struct {
		DefaultTicker         string        `yaml:"default_ticker" default:"AAPL"`
		HistoryWindow         string        `yaml:"history_window" default:"6mo"`
		BasketWindow          string        `yaml:"basket_window" default:"5d"`
		RSIPeriod             int           `yaml:"rsi_period" default:"14"`
		MoversLimit           int           `yaml:"movers_limit" default:"3"`
		VolumeAlertMultiplier float64       `yaml:"volume_alert_multiplier" default:"1.5"`
		StreamInterval        time.Duration `yaml:"stream_interval" default:"30s"`
		StreamMinInterval     time.Duration `yaml:"stream_min_interval" default:"5s"`
	} `yaml:"dashboard"`
	Risk struct {
		DefaultBeta    float64 `yaml:"default_beta" default:"1.0"`
		RSIOverbought  float64 `yaml:"rsi_overbought" default:"70"`
		RSIOversold    float64 `yaml:"rsi_oversold" default:"30"`
		HighBeta       float64 `yaml:"high_beta" default:"1.5"`
		HighVolatility float64 `yaml:"high_volatility" default:"3"`
	} `yaml:"risk"`
	News struct {
		NewsAPIKey   string        `yaml:"newsapi_key"`
		NewsAPIURL   string        `yaml:"newsapi_url" default:"https://newsapi.org/v2"`
		MarketAuxKey string        `yaml:"marketaux_key"`
		MarketAuxURL string        `yaml:"marketaux_url" default:"https://api.marketaux.com/v1"`
		Timeout      time.Duration `yaml:"timeout" default:"15s"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"60s"`
	} `yaml:"news"`
	Agent struct {
		APIKey        string        `yaml:"api_key"`
		BaseURL       string        `yaml:"base_url" default:"https://api.anthropic.com"`
		Model         string        `yaml:"model" default:"claude-3-5-sonnet-20241022"`
		Temperature   float64       `yaml:"temperature"`
		MaxTokens     int           `yaml:"max_tokens" default:"2048"`
		Timeout       time.Duration `yaml:"timeout" default:"120s"`
		Attempts      int           `yaml:"attempts" default:"2"`
		MaxToolRounds int           `yaml:"max_tool_rounds" default:"6"`
	} `yaml:"agent"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity" default:"20"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5"`
	} `yaml:"rate_limit"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"finagent"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Compression  string        `yaml:"compression" default:"gzip"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

// DefaultIndices is the index basket shown on the dashboard when none is configured.
func DefaultIndices() []NamedSymbol {
	return []NamedSymbol{
		{Name: "S&P 500", Symbol: "^GSPC"},
		{Name: "NASDAQ", Symbol: "^IXIC"},
		{Name: "Dow Jones", Symbol: "^DJI"},
		{Name: "Nifty 50", Symbol: "^NSEI"},
		{Name: "Sensex", Symbol: "^BSESN"},
	}
}

// DefaultTrending is the trending basket used to rank gainers and losers.
func DefaultTrending() []string {
	return []string{"TSLA", "NVDA", "AAPL", "MSFT", "META", "AMZN", "GOOGL"}
}

// Load reads and parses a YAML configuration file.
// A missing file is not an error; defaults and env overrides still apply.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyDefaults(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Agent.APIKey = v
	}
	if v := os.Getenv("MODEL_ID"); v != "" {
		c.Agent.Model = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Agent.Temperature = t
		}
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		c.News.NewsAPIKey = v
	}
	if v := os.Getenv("MARKETAUX_API_KEY"); v != "" {
		c.News.MarketAuxKey = v
	}
	if v := os.Getenv("TRENDING_SYMBOLS"); v != "" {
		c.MarketData.Trending = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if len(c.MarketData.Indices) == 0 {
		c.MarketData.Indices = DefaultIndices()
	}
	if len(c.MarketData.Trending) == 0 {
		c.MarketData.Trending = DefaultTrending()
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.MarketData.FetchTimeout <= 0 {
		return fmt.Errorf("market_data.fetch_timeout must be positive")
	}
	if c.MarketData.MaxConcurrency < 1 {
		return fmt.Errorf("market_data.max_concurrency must be >= 1")
	}
	if len(c.MarketData.Indices) == 0 {
		return fmt.Errorf("market_data.indices cannot be empty")
	}
	for _, ix := range c.MarketData.Indices {
		if ix.Name == "" || ix.Symbol == "" {
			return fmt.Errorf("market_data.indices entries need name and symbol")
		}
	}
	if len(c.MarketData.Trending) == 0 {
		return fmt.Errorf("market_data.trending cannot be empty")
	}
	if c.Dashboard.RSIPeriod < 2 {
		return fmt.Errorf("dashboard.rsi_period must be >= 2")
	}
	if c.Dashboard.MoversLimit < 1 {
		return fmt.Errorf("dashboard.movers_limit must be >= 1")
	}
	if c.Dashboard.VolumeAlertMultiplier <= 0 {
		return fmt.Errorf("dashboard.volume_alert_multiplier must be positive")
	}
	if c.Risk.RSIOversold >= c.Risk.RSIOverbought {
		return fmt.Errorf("risk.rsi_oversold (%v) must be below risk.rsi_overbought (%v)", c.Risk.RSIOversold, c.Risk.RSIOverbought)
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 1 {
		return fmt.Errorf("agent.temperature must be in [0,1], got %v", c.Agent.Temperature)
	}
	if c.Logging.Ship.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("logging.ship requires kafka.brokers")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
