package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server             ServerConfig             `toml:"server"`
	Database           DatabaseConfig           `toml:"database"`
	Redis              RedisConfig              `toml:"redis"`
	AvailabilityEngine AvailabilityEngineConfig `toml:"availability_engine"`
	Zoom               ZoomConfig               `toml:"zoom"`
	Bitrix             BitrixConfig             `toml:"bitrix"`
	Reconciler         ReconcilerConfig         `toml:"reconciler"`
	Drafts             DraftsConfig             `toml:"drafts"`
	Logs               LogsConfig               `toml:"logs"`
	Metrics            MetricsConfig            `toml:"metrics"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig настройки подключения к Redis (change feed)
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// AvailabilityEngineConfig настройки клиента движка доступности
type AvailabilityEngineConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// ZoomConfig настройки интеграции с Zoom
type ZoomConfig struct {
	URL       string `toml:"url"`
	AuthToken string `toml:"auth_token"`
	Timeout   int    `toml:"timeout"`
	Timezone  string `toml:"timezone"`
}

// BitrixConfig настройки интеграции с календарём Bitrix24
type BitrixConfig struct {
	WebhookURL string `toml:"webhook_url"`
	OwnerID    string `toml:"owner_id"`
	Timeout    int    `toml:"timeout"`
}

// ReconcilerConfig настройки реконсилера слотов
type ReconcilerConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"` // период фонового обновления снапшота
	OracleTimeout       int `toml:"oracle_timeout"`        // таймаут запросов к движку доступности, секунды
}

// DraftsConfig настройки черновиков бронирования
type DraftsConfig struct {
	TTLMinutes      int    `toml:"ttl_minutes"`      // время жизни неактивного черновика
	CleanupSchedule string `toml:"cleanup_schedule"` // cron-выражение для очистки
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load загружает конфигурацию из toml файла и применяет значения по умолчанию
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.AvailabilityEngine.Timeout == 0 {
		cfg.AvailabilityEngine.Timeout = 10
	}
	if cfg.Zoom.Timeout == 0 {
		cfg.Zoom.Timeout = 10
	}
	if cfg.Bitrix.Timeout == 0 {
		cfg.Bitrix.Timeout = 10
	}
	if cfg.Reconciler.PollIntervalSeconds == 0 {
		cfg.Reconciler.PollIntervalSeconds = 30
	}
	if cfg.Reconciler.OracleTimeout == 0 {
		cfg.Reconciler.OracleTimeout = 10
	}
	if cfg.Drafts.TTLMinutes == 0 {
		cfg.Drafts.TTLMinutes = 30
	}
	if cfg.Drafts.CleanupSchedule == "" {
		cfg.Drafts.CleanupSchedule = "@every 1m"
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "tl-admin-service"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if cfg.AvailabilityEngine.URL == "" {
		return fmt.Errorf("config: availability_engine.url is required")
	}
	return nil
}
