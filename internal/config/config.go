package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the per-user data directory.
const AppName = "todo-widget"

// Config holds all configuration for the application
type Config struct {
	LogLevel       string
	LogDir         string
	DataDir        string
	HTTPAddr       string
	TelegramToken  string
	TelegramChatID int64
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"log-dir":   "log_dir",
	"data-dir":  "data_dir",
	"http-addr": "http_addr",
}

// Load loads configuration from a .env file, environment variables and the
// given flags, in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("data_dir", defaultDataDir())
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := &Config{
		LogLevel:       v.GetString("log_level"),
		LogDir:         v.GetString("log_dir"),
		DataDir:        v.GetString("data_dir"),
		HTTPAddr:       v.GetString("http_addr"),
		TelegramToken:  v.GetString("telegram_token"),
		TelegramChatID: v.GetInt64("telegram_chat_id"),
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID environment variable is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// ConnectionFile returns the path of the persisted connection settings.
func (c *Config) ConnectionFile() string {
	return filepath.Join(c.DataDir, "db-config.json")
}

// TelegramEnabled reports whether the Telegram shell should run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
