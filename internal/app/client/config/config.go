package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".timeline"
	defaultSyncInterval  = 5 * time.Minute
	defaultBatchSize     = 200
	defaultTimeout       = 30 * time.Second
)

type Config struct {
	Env           string
	ServerAddress string
	EnableTLS     bool
	ConfigDir     string
	TokenPath     string
	DataPath      string
	LogFile       string
	SyncInterval  time.Duration
	// BatchSize максимум операций в одном POST /api/data
	BatchSize      int
	RequestTimeout time.Duration
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env (если есть), переменные окружения и значения viper.
// Флаги cobra, привязанные к viper, имеют приоритет.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("CONFIG_DIR", "")
	viper.SetDefault("SYNC_INTERVAL", defaultSyncInterval)
	viper.SetDefault("BATCH_SIZE", defaultBatchSize)
	viper.SetDefault("REQUEST_TIMEOUT", defaultTimeout)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, defaultConfigDir)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg := &Config{
		Env:            viper.GetString("APP_ENV"),
		ServerAddress:  viper.GetString("SERVER_ADDRESS"),
		EnableTLS:      viper.GetBool("ENABLE_TLS"),
		ConfigDir:      configDir,
		TokenPath:      pathOr(viper.GetString("TOKEN_PATH"), configDir, "token"),
		DataPath:       pathOr(viper.GetString("DATA_PATH"), configDir, "timeline.db"),
		LogFile:        pathOr(viper.GetString("LOG_FILE"), configDir, "client.log"),
		SyncInterval:   viper.GetDuration("SYNC_INTERVAL"),
		BatchSize:      viper.GetInt("BATCH_SIZE"),
		RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
	}

	return cfg, cfg.validate()
}

func pathOr(value, dir, name string) string {
	if value != "" {
		return value
	}
	return filepath.Join(dir, name)
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// BaseURL адрес сервера со схемой. Адрес со схемой используется как есть.
func (c *Config) BaseURL() string {
	addr := strings.TrimRight(c.ServerAddress, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if c.EnableTLS {
		return "https://" + addr
	}
	return "http://" + addr
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
