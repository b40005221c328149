// Package config загружает конфигурацию сервера и агента.
// Приоритет: значения по умолчанию → YAML файл → переменные окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration обертка над time.Duration с поддержкой строк в YAML ("30s", "1h")
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ServerConfig конфигурация облачного сервиса синхронизации
type ServerConfig struct {
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Sync     SyncConfig     `yaml:"sync"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`

	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig настройки хранилища
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig настройки аутентификации агентов.
// Secret только из окружения, в YAML не хранится.
type AuthConfig struct {
	Secret   string   `yaml:"-"` // env-only: MARKETSYNC_AUTH_SECRET
	TokenTTL Duration `yaml:"token_ttl"`
}

// SyncConfig параметры протокола синхронизации на сервере
type SyncConfig struct {
	DefaultPullLimit int `yaml:"default_pull_limit"`
	MaxPullLimit     int `yaml:"max_pull_limit"`
	// RateLimit запросов к /sync/* с одного адреса в окно RateWindow
	RateLimit  int      `yaml:"rate_limit"`
	RateWindow Duration `yaml:"rate_window"`
}

// SnapshotConfig настройки периодических снапшотов каталога.
// Пустой bucket отключает выгрузку в S3 (локальный режим).
type SnapshotConfig struct {
	Interval  Duration `yaml:"interval"`
	Dir       string   `yaml:"dir"`
	Endpoint  string   `yaml:"endpoint"`
	Bucket    string   `yaml:"bucket"`
	AccessKey string   `yaml:"-"` // env-only: MARKETSYNC_SNAPSHOT_ACCESS_KEY
	SecretKey string   `yaml:"-"` // env-only: MARKETSYNC_SNAPSHOT_SECRET_KEY
	Region    string   `yaml:"region"`
	UseSSL    *bool    `yaml:"use_ssl"`
}

// LogConfig настройки логирования
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AgentConfig конфигурация локального агента
type AgentConfig struct {
	// ServerURL базовый URL облачного сервиса
	ServerURL string `yaml:"server_url"`
	// Token статический токен агента; только из окружения
	Token    string          `yaml:"-"`      // env-only: MARKETSYNC_AGENT_TOKEN
	Listen   string          `yaml:"listen"` // локальный адрес для /sync/initiate
	Database DatabaseConfig  `yaml:"database"`
	Sync     AgentSyncConfig `yaml:"sync"`
	Log      LogConfig       `yaml:"log"`
}

// AgentSyncConfig параметры цикла синхронизации агента
type AgentSyncConfig struct {
	// Interval периодичность фоновой синхронизации в режиме serve;
	// 0 отключает планировщик, остается только ручной триггер
	Interval  Duration `yaml:"interval"`
	PullLimit int      `yaml:"pull_limit"`
	// RetryAttempts количество попыток на один сетевой вызов
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelay    Duration `yaml:"retry_delay"`
}

// LoadServer загружает конфигурацию сервера.
// Отсутствующий файл не ошибка: используются значения по умолчанию.
func LoadServer(path string) (*ServerConfig, error) {
	cfg := serverDefaults()

	if err := loadYAMLFile(path, cfg); err != nil {
		return nil, err
	}

	// env overrides
	if v := os.Getenv("MARKETSYNC_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("MARKETSYNC_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MARKETSYNC_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("MARKETSYNC_SNAPSHOT_ACCESS_KEY"); v != "" {
		cfg.Snapshot.AccessKey = v
	}
	if v := os.Getenv("MARKETSYNC_SNAPSHOT_SECRET_KEY"); v != "" {
		cfg.Snapshot.SecretKey = v
	}
	if v := os.Getenv("MARKETSYNC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAgent загружает конфигурацию агента
func LoadAgent(path string) (*AgentConfig, error) {
	cfg := agentDefaults()

	if err := loadYAMLFile(path, cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETSYNC_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("MARKETSYNC_AGENT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("MARKETSYNC_AGENT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MARKETSYNC_AGENT_PULL_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MARKETSYNC_AGENT_PULL_LIMIT: %w", err)
		}
		cfg.Sync.PullLimit = limit
	}
	if v := os.Getenv("MARKETSYNC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serverDefaults() *ServerConfig {
	return &ServerConfig{
		Listen: ":8080",
		Database: DatabaseConfig{
			Path: "data/marketsync.db",
		},
		Auth: AuthConfig{
			TokenTTL: Duration(365 * 24 * time.Hour),
		},
		Sync: SyncConfig{
			DefaultPullLimit: 100,
			MaxPullLimit:     500,
			RateLimit:        120,
			RateWindow:       Duration(time.Minute),
		},
		Snapshot: SnapshotConfig{
			Interval: Duration(1 * time.Hour),
			Dir:      "data/snapshots",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		ReadTimeout:     Duration(30 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(15 * time.Second),
	}
}

func agentDefaults() *AgentConfig {
	return &AgentConfig{
		ServerURL: "http://localhost:8080",
		Listen:    "127.0.0.1:8181",
		Database: DatabaseConfig{
			Path: "marketsync-agent.db",
		},
		Sync: AgentSyncConfig{
			Interval:      0,
			PullLimit:     100,
			RetryAttempts: 3,
			RetryDelay:    Duration(2 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadYAMLFile читает YAML файл в cfg; отсутствующий файл не ошибка
func loadYAMLFile(path string, cfg interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required (MARKETSYNC_AUTH_SECRET)")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Sync.DefaultPullLimit < 1 || c.Sync.MaxPullLimit < c.Sync.DefaultPullLimit {
		return fmt.Errorf("invalid pull limits: default=%d max=%d",
			c.Sync.DefaultPullLimit, c.Sync.MaxPullLimit)
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Endpoint == "" {
		return fmt.Errorf("snapshot endpoint is required when bucket is set")
	}
	return nil
}

func (c *AgentConfig) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Sync.PullLimit < 1 {
		return fmt.Errorf("pull_limit must be >= 1")
	}
	if c.Sync.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1")
	}
	return nil
}
