package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Board    BoardConfig    `yaml:"board"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

type APIConfig struct {
	// BaseURL коллекции задач, например http://127.0.0.1:5000/api/tasks
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type BoardConfig struct {
	DefaultSort string `yaml:"default_sort"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000/api/tasks",
			Timeout: 10 * time.Second,
		},
		Server:  ServerConfig{Addr: "127.0.0.1:5000"},
		Storage: StorageConfig{Driver: "sqlite", Path: "./data/taskboard.db"},
		Board:   BoardConfig{DefaultSort: "default"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load читает YAML поверх значений по умолчанию и применяет переменные
// окружения. Пустой path или отсутствующий файл не ошибка.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("ошибка чтения конфига: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("ошибка разбора конфига %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TASKBOARD_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TASKBOARD_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TASKBOARD_HTTP_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("TASKBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASKBOARD_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TASKBOARD_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TASKBOARD_SORT"); v != "" {
		cfg.Board.DefaultSort = v
	}
	if v := os.Getenv("TASKBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	return nil
}

func (c Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url должен начинаться с http:// или https://: %q", c.API.BaseURL)
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "sqlite3":
		if c.Storage.Path == "" {
			return errors.New("storage.path обязателен для sqlite")
		}
	default:
		return fmt.Errorf("неизвестный storage.driver: %q", c.Storage.Driver)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout не может быть отрицательным")
	}
	return nil
}
