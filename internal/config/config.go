// config - источник загрузки конфигурации catalog-web и catalogctl.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Перед чтением подхватывается ./.env (если есть): переменные из него
// не перетирают уже выставленные в окружении.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Драйверы хранилища сессии.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	GRPC     GRPCConfig    `yaml:"grpc"`
	Backend  BackendConfig `yaml:"backend"`
	Storage  StorageConfig `yaml:"storage"`
	Ads      AdsConfig     `yaml:"ads"`
	CORS     CORSConfig    `yaml:"cors"`
	Session  SessionConfig `yaml:"session"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймаут входящего запроса и исходящего вызова к бэкенду.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
	Backend time.Duration `yaml:"backend" env:"BACKEND_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — веб-интерфейс, JSON API и /metrics.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// GRPCConfig — gRPC health-сервер. Пустой порт отключает его.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50070"`
}

func (g GRPCConfig) Addr() string { return net.JoinHostPort(g.Host, g.Port) }

// BackendConfig — внешний REST-бэкенд каталога.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"   env:"BACKEND_URL"`
	UserAgent string `yaml:"user_agent" env:"BACKEND_USER_AGENT" env-default:"go-catalog"`
}

// StorageConfig — долговременное хранилище token/user.
type StorageConfig struct {
	Driver      string `yaml:"driver"       env:"STORAGE_DRIVER" env-default:"sqlite"`
	Path        string `yaml:"path"         env:"STORAGE_PATH"   env-default:"./data/catalog.db"`
	RedisURL    string `yaml:"redis_url"    env:"REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"   env-default:"catalog:ls:"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

// AdsConfig — шаблоны редиректа внешних ссылок через рекламные сети.
// {url} в шаблоне заменяется экранированной ссылкой; пустой шаблон — прямая ссылка.
type AdsConfig struct {
	Default     string `yaml:"default"     env:"ADS_DEFAULT"     env-default:"linkvertise"`
	Linkvertise string `yaml:"linkvertise" env:"ADS_LINKVERTISE"`
	AdMaven     string `yaml:"admaven"     env:"ADS_ADMAVEN"`
}

// CORSConfig — разрешённые источники для /api.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// Политики отката сессии при недоступном /auth/me.
const (
	FallbackStale  = "stale"
	FallbackStrict = "strict"
)

// SessionConfig — поведение сессии.
type SessionConfig struct {
	FallbackPolicy string `yaml:"fallback_policy" env:"SESSION_FALLBACK" env-default:"stale"`
}

var (
	ErrNoBackendURL   = errors.New("backend.base_url is required")
	ErrUnknownStorage = errors.New("unknown storage driver")
	ErrNoStorageDSN   = errors.New("storage driver requires a dsn")
	ErrUnknownPolicy  = errors.New("unknown session fallback policy")
)

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return ErrNoBackendURL
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: %s needs storage.path", ErrNoStorageDSN, c.Storage.Driver)
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("%w: %s needs storage.redis_url", ErrNoStorageDSN, c.Storage.Driver)
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: %s needs storage.database_url", ErrNoStorageDSN, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage.Driver)
	}

	switch c.Session.FallbackPolicy {
	case FallbackStale, FallbackStrict:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, c.Session.FallbackPolicy)
	}

	return nil
}
