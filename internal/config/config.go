package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Addr           string `env:"DUEL_ADDR" envDefault:":8080"`
	LogLevel       string `env:"DUEL_LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"DUEL_LOG_DEVELOPMENT" envDefault:"false"`

	SweepInterval time.Duration `env:"DUEL_SWEEP_INTERVAL" envDefault:"10m"`
	UnmatchedTTL  time.Duration `env:"DUEL_UNMATCHED_TTL" envDefault:"1h"`

	OutboxSize     int           `env:"DUEL_OUTBOX_SIZE" envDefault:"16"`
	WriteTimeout   time.Duration `env:"DUEL_WRITE_TIMEOUT" envDefault:"3s"`
	PingInterval   time.Duration `env:"DUEL_PING_INTERVAL" envDefault:"30s"`
	OriginPatterns []string      `env:"DUEL_ORIGIN_PATTERNS" envSeparator:","`

	ShutdownTimeout time.Duration `env:"DUEL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the given .env files (".env" when none are named), then the
// process environment. Variables already set in the environment win.
// A missing default .env is fine; a missing named file is not.
func Load(files ...string) (Config, error) {
	explicit := len(files) > 0
	if !explicit {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("DUEL_ADDR must not be empty"))
	}
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("DUEL_LOG_LEVEL: %w", lerr))
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"DUEL_SWEEP_INTERVAL", c.SweepInterval},
		{"DUEL_UNMATCHED_TTL", c.UnmatchedTTL},
		{"DUEL_WRITE_TIMEOUT", c.WriteTimeout},
		{"DUEL_PING_INTERVAL", c.PingInterval},
		{"DUEL_SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
	}
	for _, v := range durations {
		if v.d <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %s", v.name, v.d))
		}
	}
	if c.OutboxSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("DUEL_OUTBOX_SIZE must be positive, got %d", c.OutboxSize))
	}
	return err
}
