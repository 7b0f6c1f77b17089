package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Addr         string `env:"QUIZ_ADDR" envDefault:":8080"`
	StoreDriver  string `env:"QUIZ_STORE" envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"QUIZ_SQLITE_PATH" envDefault:"quiz.db"`
	SeedFile     string `env:"QUIZ_SEED_FILE"`
	HistoryLimit int    `env:"QUIZ_HISTORY_LIMIT" envDefault:"10"`
	LogLevel     string `env:"QUIZ_LOG_LEVEL" envDefault:"info"`
	Dev          bool   `env:"QUIZ_DEV"`
}

// Load reads the given .env files (a missing file is fine) and then parses
// the environment. Variables already set win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.StoreDriver)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	return nil
}
