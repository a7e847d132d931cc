package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at startup and passed by value afterwards.
type Config struct {
	// Upstreams
	TrendsBaseURL string
	NgramBaseURL  string
	UserAgent     string
	Language      string // hl parameter and Accept-Language
	TZOffset      int    // minutes west of UTC, sent as tz to the trends API
	NgramCorpus   int

	// HTTP client
	TrendsTimeout   time.Duration
	NgramTimeout    time.Duration
	DialTimeout     time.Duration
	ResponseSizeCap int64

	// Pacing
	TrendingDelayMin time.Duration
	TrendingDelayMax time.Duration
	QueryDelayMin    time.Duration
	QueryDelayMax    time.Duration
	BusinessDelayMin time.Duration
	BusinessDelayMax time.Duration
	NgramDelay       time.Duration

	DefaultRegion string

	// Server
	ServerAddr     string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel string
}

// Load reads a .env file when one exists, then the environment, with defaults.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() Config {
	return Config{
		TrendsBaseURL: getEnv("TRENDS_BASE_URL", "https://trends.google.com"),
		NgramBaseURL:  getEnv("NGRAM_BASE_URL", "https://books.google.com"),
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
		Language:    getEnv("TRENDS_LANGUAGE", "en-US"),
		TZOffset:    getInt("TRENDS_TZ_OFFSET", 360),
		NgramCorpus: getInt("NGRAM_CORPUS", 26),

		TrendsTimeout:   getDuration("TRENDS_TIMEOUT", 25*time.Second),
		NgramTimeout:    getDuration("NGRAM_TIMEOUT", 10*time.Second),
		DialTimeout:     getDuration("DIAL_TIMEOUT", 10*time.Second),
		ResponseSizeCap: int64(getInt("RESPONSE_SIZE_CAP", 5*1024*1024)),

		TrendingDelayMin: getDuration("TRENDING_DELAY_MIN", 3*time.Second),
		TrendingDelayMax: getDuration("TRENDING_DELAY_MAX", 7*time.Second),
		QueryDelayMin:    getDuration("QUERY_DELAY_MIN", 1*time.Second),
		QueryDelayMax:    getDuration("QUERY_DELAY_MAX", 3*time.Second),
		BusinessDelayMin: getDuration("BUSINESS_DELAY_MIN", 2*time.Second),
		BusinessDelayMax: getDuration("BUSINESS_DELAY_MAX", 5*time.Second),
		NgramDelay:       getDuration("NGRAM_DELAY", 2*time.Second),

		DefaultRegion: getEnv("DEFAULT_REGION", "US"),

		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
