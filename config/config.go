/*
Package config loads server configuration.

PURPOSE:
  Collects runtime settings from a .env file (if present), environment
  variables, and command-line flags. Flags win over environment, which
  wins over defaults.

SETTINGS:
  PORT          HTTP server port (default: 8080)
  DB_PATH       SQLite database path (default: payroll.db, ":memory:" works)
  JWT_SECRET    HS256 signing secret for bearer tokens
  CORS_ORIGINS  Comma-separated list of allowed origins (default: *)
  LOG_LEVEL     zerolog level: debug, info, warn, error (default: info)
  SCENARIOS     Enable the demo scenario endpoints (default: false)
  AUTO_CALC     Enable the month-end wage run scheduler (default: false)

SEE ALSO:
  - cmd/server/main.go: Consumer of this package
*/
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all runtime settings for the server.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	CORSOrigins []string
	LogLevel    zerolog.Level
	Scenarios   bool
	AutoCalc    bool
}

// Load reads configuration from .env, environment, and flags.
// Call once from main before starting the server.
func Load() Config {
	// .env is optional; ignore the error when absent
	_ = godotenv.Load()

	cfg := Config{
		Port:        envInt("PORT", 8080),
		DBPath:      envString("DB_PATH", "payroll.db"),
		JWTSecret:   envString("JWT_SECRET", ""),
		CORSOrigins: splitOrigins(envString("CORS_ORIGINS", "*")),
		LogLevel:    parseLevel(envString("LOG_LEVEL", "info")),
		Scenarios:   envBool("SCENARIOS", false),
		AutoCalc:    envBool("AUTO_CALC", false),
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.BoolVar(&cfg.Scenarios, "scenarios", cfg.Scenarios, "enable demo scenario endpoints")
	flag.BoolVar(&cfg.AutoCalc, "auto-calc", cfg.AutoCalc, "enable the month-end wage run scheduler")
	flag.Parse()

	return cfg
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
