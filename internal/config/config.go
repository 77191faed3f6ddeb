package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	AdminToken     string
	RateLimitRPM   int
	CacheTTL       time.Duration
	KeyCacheTTL    time.Duration
	SumTimeout     time.Duration
	MaxConcurrency int
	MaxPairs       int
	LogLevel       string
	LogFormat      string
	LogFile        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getint ignores values that are not positive integers.
func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// Load reads a .env file when one exists, then the environment, with sane defaults.
// Variables already set in the environment win over the .env file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "calcapi"),
		AdminToken:     getenv("ADMIN_TOKEN", ""),
		RateLimitRPM:   getint("RATE_LIMIT_RPM", 60),
		CacheTTL:       getdur("CACHE_TTL", 5*time.Minute),
		KeyCacheTTL:    getdur("KEY_CACHE_TTL", 60*time.Second),
		SumTimeout:     getdur("SUM_TIMEOUT", 2*time.Second),
		MaxConcurrency: getint("MAX_CONCURRENCY", 16),
		MaxPairs:       getint("MAX_PAIRS", 100),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		LogFile:        getenv("LOG_FILE", ""),
	}
}
