// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultPort is the TCP port remote players listen on.
const DefaultPort = 5108

// MinIterations is the smallest accepted search budget, one per card in hand.
const MinIterations = 9

// Config holds every setting the binaries read.
type Config struct {
	Host          string
	Port          int
	Iterations    int
	Pace          time.Duration
	Seed          uint64
	LogLevel      logrus.Level
	LogFormat     string
	DatabaseURL   string
	RedisAddr     string
	SpectatorAddr string
}

// Addr returns host:port.
func (c *Config) Addr() string { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }

var (
	cfg      *Config
	loadOnce sync.Once
	loadErr  error
)

// Load reads the given .env files (or ./.env) once and builds the Config from
// the environment. Missing .env files are not an error. Later calls return
// the first result.
func Load(paths ...string) (*Config, error) {
	loadOnce.Do(func() {
		cfg, loadErr = load(paths...)
	})
	return cfg, loadErr
}

func load(paths ...string) (*Config, error) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without caching.
func FromEnv() (*Config, error) {
	c := &Config{
		Host:          getenv("JASS_HOST", "localhost"),
		Port:          DefaultPort,
		Iterations:    10000,
		Pace:          time.Second,
		LogLevel:      logrus.InfoLevel,
		LogFormat:     getenv("JASS_LOG_FORMAT", "text"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		SpectatorAddr: os.Getenv("JASS_SPECTATOR_ADDR"),
	}

	var err error
	if v := os.Getenv("JASS_PORT"); v != "" {
		if c.Port, err = strconv.Atoi(v); err != nil || c.Port < 1 || c.Port > 65535 {
			return nil, fmt.Errorf("invalid JASS_PORT %q", v)
		}
	}
	if v := os.Getenv("JASS_MCTS_ITERATIONS"); v != "" {
		if c.Iterations, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid JASS_MCTS_ITERATIONS %q: %w", v, err)
		}
	}
	if c.Iterations < MinIterations {
		return nil, fmt.Errorf("JASS_MCTS_ITERATIONS must be at least %d, got %d", MinIterations, c.Iterations)
	}
	if v := os.Getenv("JASS_PACE"); v != "" {
		if c.Pace, err = time.ParseDuration(v); err != nil || c.Pace < 0 {
			return nil, fmt.Errorf("invalid JASS_PACE %q", v)
		}
	}
	if v := os.Getenv("JASS_SEED"); v != "" {
		if c.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid JASS_SEED %q: %w", v, err)
		}
	}
	if v := os.Getenv("JASS_LOG_LEVEL"); v != "" {
		if c.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("invalid JASS_LOG_LEVEL: %w", err)
		}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return nil, fmt.Errorf("invalid JASS_LOG_FORMAT %q, want text or json", c.LogFormat)
	}
	return c, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
