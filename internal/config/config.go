// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an error
// and the process exits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultEnvFile is loaded before reading the environment, when present.
const DefaultEnvFile = ".env"

// Config holds all runtime configuration for the job board.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// ServerName is the base host. A board is selected by the extra
	// leftmost label, e.g. "design.hasjob.co" with ServerName "hasjob.co".
	ServerName string

	Timezone      *time.Location
	HascoreServer string // empty disables geodata lookups
	UseSSL        bool

	LogLevel string
	LogFile  string

	TagRefreshMinutes int
}

// Load reads DefaultEnvFile (if it exists) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("HASJOB_PORT")
	if port == "" {
		port = "8080"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Asia/Kolkata"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tzName, err)
	}

	useSSL := false
	if s := os.Getenv("USE_SSL"); s != "" {
		useSSL, err = strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("USE_SSL must be a boolean, got %q", s)
		}
	}

	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	if _, err := logrus.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	refresh := 15
	if s := os.Getenv("TAG_REFRESH_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("TAG_REFRESH_MINUTES must be a positive integer, got %q", s)
		}
		refresh = v
	}

	return &Config{
		Port:              port,
		DatabaseURL:       dbURL,
		RedisURL:          redisURL,
		ServerName:        strings.ToLower(os.Getenv("SERVER_NAME")),
		Timezone:          tz,
		HascoreServer:     os.Getenv("HASCORE_SERVER"),
		UseSSL:            useSSL,
		LogLevel:          level,
		LogFile:           os.Getenv("LOG_FILE"),
		TagRefreshMinutes: refresh,
	}, nil
}
