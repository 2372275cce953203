package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	EnvLocal      = "local"
	EnvDev        = "dev"
	EnvProduction = "production"
)

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
// Порядок источников: config.toml -> .env -> переменные окружения
type Config struct {
	App               AppConfig               `toml:"app"`
	Server            ServerConfig            `toml:"server"`
	Database          DatabaseConfig          `toml:"database"`
	Logs              LogsConfig              `toml:"logs"`
	Metrics           MetricsConfig           `toml:"metrics"`
	Cache             CacheConfig             `toml:"cache"`
	Redis             RedisConfig             `toml:"redis"`
	ConsultantService ConsultantServiceConfig `toml:"consultant_service"`
	Scheduler         SchedulerConfig         `toml:"scheduler"`
	RabbitMQ          RabbitMQConfig          `toml:"rabbitmq"`
	RateLimit         RateLimitConfig         `toml:"rate_limit"`
	CORS              CORSConfig              `toml:"cors"`
}

type AppConfig struct {
	Env      string `toml:"env" env:"APP_ENV"`
	Timezone string `toml:"timezone" env:"APP_TIMEZONE"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    int `toml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout     int `toml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
	ShutdownTimeout int `toml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" env:"DB_HOST"`
	Port            int    `toml:"port" env:"DB_PORT"`
	User            string `toml:"user" env:"DB_USER"`
	Password        string `toml:"password" env:"DB_PASSWORD"`
	DBName          string `toml:"dbname" env:"DB_NAME"`
	SSLMode         string `toml:"sslmode" env:"DB_SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `toml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	AutoMigrate     bool   `toml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" env:"LOG_FILE"`
	Level string `toml:"level" env:"LOG_LEVEL"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"METRICS_ENABLED"`
	ServiceName string `toml:"service_name" env:"METRICS_SERVICE_NAME"`
	Path        string `toml:"path" env:"METRICS_PATH"`
}

type CacheConfig struct {
	Backend    string `toml:"backend" env:"CACHE_BACKEND"`
	TTLSeconds int    `toml:"ttl_seconds" env:"CACHE_TTL_SECONDS"`
	Size       int    `toml:"size" env:"CACHE_SIZE"`
}

// TTL время жизни записей кэша доступности
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string `toml:"addr" env:"REDIS_ADDR"`
	Password string `toml:"password" env:"REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"REDIS_DB"`
}

type ConsultantServiceConfig struct {
	URL     string `toml:"url" env:"CONSULTANT_SERVICE_URL"`
	Timeout int    `toml:"timeout" env:"CONSULTANT_SERVICE_TIMEOUT"`
}

type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled" env:"SCHEDULER_ENABLED"`
	IntervalMinutes int    `toml:"interval_minutes" env:"SCHEDULER_INTERVAL_MINUTES"`
	HorizonDays     int    `toml:"horizon_days" env:"SCHEDULER_HORIZON_DAYS"`
	StatusBackend   string `toml:"status_backend" env:"SCHEDULER_STATUS_BACKEND"`
	HistorySize     int    `toml:"history_size" env:"SCHEDULER_HISTORY_SIZE"`
}

type RabbitMQConfig struct {
	Enabled       bool   `toml:"enabled" env:"RABBITMQ_ENABLED"`
	URL           string `toml:"url" env:"RABBITMQ_URL"`
	Queue         string `toml:"queue" env:"RABBITMQ_QUEUE"`
	PrefetchCount int    `toml:"prefetch_count" env:"RABBITMQ_PREFETCH_COUNT"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RPS     float64 `toml:"rps" env:"RATE_LIMIT_RPS"`
	Burst   int     `toml:"burst" env:"RATE_LIMIT_BURST"`
	// Прокси, которым доверяется X-Forwarded-For, адреса или CIDR
	TrustedProxies []string `toml:"trusted_proxies" env:"RATE_LIMIT_TRUSTED_PROXIES" envSeparator:","`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load загружает конфигурацию из toml файла, .env и переменных окружения
// Отсутствующий toml файл не является ошибкой
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("config: decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	// .env не обязателен
	_ = godotenv.Load(".env")

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	c.App.Env = strings.ToLower(c.App.Env)
	if c.App.Env == "" {
		c.App.Env = EnvLocal
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}

	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "availability_service"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 30
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1000
	}

	if c.ConsultantService.Timeout == 0 {
		c.ConsultantService.Timeout = 5
	}

	if c.Scheduler.IntervalMinutes == 0 {
		c.Scheduler.IntervalMinutes = 60
	}
	if c.Scheduler.HorizonDays == 0 {
		c.Scheduler.HorizonDays = 28
	}
	if c.Scheduler.StatusBackend == "" {
		c.Scheduler.StatusBackend = CacheBackendMemory
	}
	if c.Scheduler.HistorySize == 0 {
		c.Scheduler.HistorySize = 50
	}

	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "availability.generate_slots"
	}
	if c.RabbitMQ.PrefetchCount == 0 {
		c.RabbitMQ.PrefetchCount = 10
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("%w: unknown app timezone %q", ErrInvalidConfig, c.App.Timezone)
	}

	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	switch c.Scheduler.StatusBackend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("%w: unknown scheduler status backend %q", ErrInvalidConfig, c.Scheduler.StatusBackend)
	}

	if (c.Cache.Backend == CacheBackendRedis || c.Scheduler.StatusBackend == CacheBackendRedis) && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required for redis backends", ErrInvalidConfig)
	}

	if c.Scheduler.HorizonDays < 0 || c.Scheduler.HorizonDays > 90 {
		return fmt.Errorf("%w: scheduler.horizon_days must be within 0..90", ErrInvalidConfig)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}

	if c.ConsultantService.URL == "" {
		return fmt.Errorf("%w: consultant_service.url is required", ErrInvalidConfig)
	}

	for _, proxy := range c.RateLimit.TrustedProxies {
		proxy = strings.TrimSpace(proxy)
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("%w: rate_limit.trusted_proxies: invalid entry %q", ErrInvalidConfig, proxy)
		}
	}

	return nil
}

// Location часовой пояс, в котором считается "сегодня"
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}
