package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Feed struct {
	// Path of an ITCH 5.0 file to replay. Empty runs the synthetic feeder.
	Path string
	// PriceScale is the number of implied decimals in feed prices
	PriceScale int32
	// ProgressEvery logs a progress line every N feed messages (0 disables)
	ProgressEvery int
	// MessageLogPath records every decoded message as CSV when set
	MessageLogPath string
}

type Sinks struct {
	TradeCSVPath string
	TradeDBPath  string
	KafkaBrokers []string
	KafkaTopic   string
}

type Server struct {
	// APIAddr is the market data listen address. Empty disables the API.
	APIAddr string
}

type Log struct {
	File    string
	Verbose bool
}

type Generator struct {
	Enabled bool
	// Mode is "limit" for plain limit flow or "mixed" for every order type
	Mode     string
	Interval time.Duration
	// BasePrice anchors generated prices, in ticks
	BasePrice int64
}

type Config struct {
	// Symbols are provisioned before any order arrives
	Symbols   []string
	Feed      Feed
	Sinks     Sinks
	Server    Server
	Log       Log
	Generator Generator
}

func Default() Config {
	return Config{
		Symbols: []string{"AAPL", "MSFT"},
		Feed: Feed{
			PriceScale:    4,
			ProgressEvery: 1_000_000,
		},
		Sinks: Sinks{
			KafkaTopic: "trades",
		},
		Server: Server{
			APIAddr: ":8080",
		},
		Generator: Generator{
			Enabled:   true,
			Mode:      "mixed",
			Interval:  100 * time.Millisecond,
			BasePrice: 1_000_000, // 100.0000 at 4 implied decimals
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if syms := os.Getenv("SYMBOLS"); syms != "" {
		cfg.Symbols = splitList(syms)
	}

	cfg.Feed.Path = getEnv("FEED_PATH", cfg.Feed.Path)
	cfg.Feed.MessageLogPath = getEnv("MESSAGE_CSV_PATH", cfg.Feed.MessageLogPath)
	if scale := os.Getenv("PRICE_SCALE"); scale != "" {
		if n, err := strconv.Atoi(scale); err == nil && n >= 0 {
			cfg.Feed.PriceScale = int32(n)
		}
	}
	if every := os.Getenv("PROGRESS_EVERY"); every != "" {
		if n, err := strconv.Atoi(every); err == nil {
			cfg.Feed.ProgressEvery = n
		}
	}

	cfg.Sinks.TradeCSVPath = getEnv("TRADE_CSV_PATH", cfg.Sinks.TradeCSVPath)
	cfg.Sinks.TradeDBPath = getEnv("TRADE_DB_PATH", cfg.Sinks.TradeDBPath)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Sinks.KafkaBrokers = splitList(brokers)
	}
	cfg.Sinks.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.Sinks.KafkaTopic)

	if addr, ok := os.LookupEnv("API_ADDR"); ok {
		cfg.Server.APIAddr = addr
	}

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	if v := os.Getenv("VERBOSE"); v != "" {
		cfg.Log.Verbose = v == "true"
	}

	if gen := os.Getenv("ENABLE_TXGEN"); gen != "" {
		cfg.Generator.Enabled = gen == "true"
	}
	cfg.Generator.Mode = getEnv("TXGEN_MODE", cfg.Generator.Mode)
	if ms := os.Getenv("TXGEN_INTERVAL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			cfg.Generator.Interval = time.Duration(n) * time.Millisecond
		}
	}

	return cfg
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
