package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string

	// Product Store collaborator.
	StoreURL     string
	StoreToken   string // admin bearer token, attached to every mutation
	StoreTimeout time.Duration

	// Reconciliation knobs.
	UpdateWorkers  int     // bounded mutation concurrency
	AutoloadMax    int     // categories below this count are detail-loaded eagerly
	MatchThreshold float64 // minimum similarity (0..100) to accept a subcategory match
	SessionTTL     time.Duration
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8083"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	workers, _ := strconv.Atoi(getenv("UPDATE_WORKERS", "5"))
	autoload, _ := strconv.Atoi(getenv("AUTOLOAD_MAX", "100"))
	threshold, _ := strconv.ParseFloat(getenv("MATCH_THRESHOLD", "70"), 64)
	storeTimeout, _ := time.ParseDuration(getenv("STORE_TIMEOUT", "15s"))
	sessionTTL, _ := time.ParseDuration(getenv("SESSION_TTL", "30m"))
	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           port,
		AllowOrigins:   origins,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        getenv("LOG_FILE", "logs/catalog-service.log"),
		StoreURL:       strings.TrimRight(getenv("STORE_URL", "http://localhost:5000/api"), "/"),
		StoreToken:     getenv("STORE_TOKEN", ""),
		StoreTimeout:   storeTimeout,
		UpdateWorkers:  workers,
		AutoloadMax:    autoload,
		MatchThreshold: threshold,
		SessionTTL:     sessionTTL,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
