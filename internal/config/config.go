package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"findash/internal/freshness"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Storage struct {
	Path string `json:"path"`
}

type AlphaVantage struct {
	APIKey    string `json:"api_key"`
	Endpoint  string `json:"endpoint"`
	Attempts  int    `json:"attempts"`
	BackoffMs int    `json:"backoff_ms"`
}

// Enabled reports whether the market data feature can run. Without a
// key the quote, history and company surfaces return errors while the
// rest of the dashboard keeps working.
func (a AlphaVantage) Enabled() bool { return a.APIKey != "" }

type News struct {
	Source        string `json:"source"` // "newsapi" or "finnhub"
	APIKey        string `json:"api_key"`
	Endpoint      string `json:"endpoint"`
	Country       string `json:"country"`
	Attempts      int    `json:"attempts"`
	BackoffMs     int    `json:"backoff_ms"`
	RetentionDays int    `json:"retention_days"`
}

func (n News) Enabled() bool { return n.APIKey != "" }

type Cache struct {
	QuoteTTLSec   int `json:"quote_ttl_sec"`
	CompanyTTLSec int `json:"company_ttl_sec"`
	NewsTTLSec    int `json:"news_ttl_sec"`
}

func (c Cache) QuoteTTL() time.Duration   { return time.Duration(c.QuoteTTLSec) * time.Second }
func (c Cache) CompanyTTL() time.Duration { return time.Duration(c.CompanyTTLSec) * time.Second }
func (c Cache) NewsTTL() time.Duration    { return time.Duration(c.NewsTTLSec) * time.Second }

type Dashboard struct {
	Tickers []string `json:"tickers"`
}

type Config struct {
	Server       Server       `json:"server"`
	Storage      Storage      `json:"storage"`
	AlphaVantage AlphaVantage `json:"alphavantage"`
	News         News         `json:"news"`
	Cache        Cache        `json:"cache"`
	Dashboard    Dashboard    `json:"dashboard"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Storage: Storage{
			Path: "findash.db",
		},
		AlphaVantage: AlphaVantage{
			Endpoint:  "https://www.alphavantage.co/query",
			Attempts:  3,
			BackoffMs: 1000,
		},
		News: News{
			Source:        "newsapi",
			Country:       "us",
			Attempts:      3,
			BackoffMs:     1000,
			RetentionDays: 30,
		},
		Cache: Cache{
			QuoteTTLSec:   int(freshness.QuoteTTL / time.Second),
			CompanyTTLSec: int(freshness.CompanyTTL / time.Second),
			NewsTTLSec:    int(freshness.NewsTTL / time.Second),
		},
		Dashboard: Dashboard{
			Tickers: []string{"AAPL", "GOOGL", "MSFT", "TSLA"},
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does
// not exist it returns defaults. Environment variables override select
// fields so secrets stay out of the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.News.Source {
	case "newsapi", "finnhub":
	default:
		return fmt.Errorf("config: unknown news source %q", cfg.News.Source)
	}
	if cfg.Server.RequestTimeoutSec <= 0 {
		cfg.Server.RequestTimeoutSec = 10
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	envInt("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec)
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_ENDPOINT"); v != "" {
		cfg.AlphaVantage.Endpoint = v
	}
	envInt("ALPHAVANTAGE_ATTEMPTS", &cfg.AlphaVantage.Attempts)
	if v := os.Getenv("NEWS_SOURCE"); v != "" {
		cfg.News.Source = strings.ToLower(v)
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.News.APIKey = v
	}
	if v := os.Getenv("NEWS_ENDPOINT"); v != "" {
		cfg.News.Endpoint = v
	}
	if v := os.Getenv("NEWS_COUNTRY"); v != "" {
		cfg.News.Country = v
	}
	envInt("NEWS_RETENTION_DAYS", &cfg.News.RetentionDays)
	envInt("QUOTE_TTL_SEC", &cfg.Cache.QuoteTTLSec)
	envInt("COMPANY_TTL_SEC", &cfg.Cache.CompanyTTLSec)
	envInt("NEWS_TTL_SEC", &cfg.Cache.NewsTTLSec)
	if v := os.Getenv("DEFAULT_TICKERS"); v != "" {
		cfg.Dashboard.Tickers = splitCSV(v)
	}
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x > 0 {
		*dst = x
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
