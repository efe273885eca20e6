package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	FrontendTUI      = "tui"
	FrontendTelegram = "telegram"

	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

var (
	ErrUnknownFrontend       = errors.New("unknown frontend")
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
	ErrTelegramNotConfigured = errors.New("telegram frontend needs TELEGRAM_APITOKEN and OWNER_TELEGRAM_ID")
)

type App struct {
	Frontend string `yaml:"frontend" env:"PERSONA_FRONTEND" env-default:"tui" env-description:"tui or telegram"`
	Language string `yaml:"language" env:"PERSONA_LANGUAGE" env-default:"en" env-description:"en or zh"`
}

type Storage struct {
	Backend       string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite" env-description:"sqlite, redis or memory"`
	SQLitePath    string `yaml:"sqlite_path" env:"SQLITE_PATH" env-description:"defaults to <user config dir>/persona-chat/persona-chat.db"`
	RedisEndpoint string `yaml:"redis_endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
}

type Telegram struct {
	TelegramAPIToken string `env:"TELEGRAM_APITOKEN"`
	OwnerTelegramID  int64  `yaml:"owner_telegram_id" env:"OWNER_TELEGRAM_ID"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Path  string `yaml:"path" env:"LOG_PATH" env-description:"log file; the tui frontend defaults to persona-chat.log"`
}

type Config struct {
	App      App      `yaml:"app"`
	Storage  Storage  `yaml:"storage"`
	Telegram Telegram `yaml:"telegram"`
	Log      Log      `yaml:"log"`
}

// LoadConfig reads an optional .env, then cfgPath when it exists, then the environment.
func LoadConfig(cfgPath string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if cfgPath != "" && fileExists(cfgPath) {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = defaultSQLitePath()
	}
	if cfg.App.Frontend == FrontendTUI && cfg.Log.Path == "" {
		cfg.Log.Path = "persona-chat.log"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Usage prints every supported variable with its description.
func Usage(header string) func() {
	var cfg Config
	return cleanenv.FUsage(os.Stderr, &cfg, &header)
}

func (c *Config) validate() error {
	switch c.App.Frontend {
	case FrontendTUI:
	case FrontendTelegram:
		if c.Telegram.TelegramAPIToken == "" || c.Telegram.OwnerTelegramID == 0 {
			return ErrTelegramNotConfigured
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrontend, c.App.Frontend)
	}
	switch c.Storage.Backend {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageBackend, c.Storage.Backend)
	}
	return nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "persona-chat.db"
	}
	return filepath.Join(dir, "persona-chat", "persona-chat.db")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
