package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/batchcatalog-backend/internal/data/db"
	"github.com/yungbote/batchcatalog-backend/internal/platform/envutil"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/platform/playback"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

// ConfigFileEnv names the optional YAML file layered under the environment.
const ConfigFileEnv = "CATALOG_CONFIG_YAML"

type Config struct {
	LogMode string `yaml:"log_mode"`
	Port    string `yaml:"port"`

	DB DBConfig `yaml:"db"`

	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`

	LivePrefix     string `yaml:"playback_live_prefix"`
	RecordedPrefix string `yaml:"playback_recorded_prefix"`

	IngestConcurrency int `yaml:"ingest_file_concurrency"`
	UploadMaxMemoryMB int `yaml:"upload_max_memory_mb"`

	// SessionIdleTTLMinutes of 0 keeps editing sessions until closed.
	SessionIdleTTLMinutes int `yaml:"session_idle_ttl_minutes"`

	CORSOrigins []string `yaml:"cors_origins"`

	Otel OtelConfig `yaml:"otel"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		Port:    "8080",
		DB: DBConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "batchcatalog",
			SQLitePath: "catalog.db",
		},
		RedisChannel:      "catalog",
		LivePrefix:        playback.DefaultLivePrefix,
		RecordedPrefix:    playback.DefaultRecordedPrefix,
		IngestConcurrency: 4,
		UploadMaxMemoryMB: 32,

		SessionIdleTTLMinutes: int(services.DefaultSessionIdleTTL / time.Minute),
		Otel: OtelConfig{
			ServiceName: "batchcatalog",
			Environment: "development",
			SampleRatio: 0.1,
		},
	}
}

// LoadConfig resolves defaults, then the YAML file named by
// CATALOG_CONFIG_YAML, then environment variables.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String(ConfigFileEnv, ""); path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	overlayEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func overlayEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Port = envutil.String("PORT", cfg.Port)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.RedisAddr = envutil.String("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisChannel = envutil.String("REDIS_CHANNEL", cfg.RedisChannel)

	cfg.LivePrefix = envutil.String("PLAYBACK_LIVE_PREFIX", cfg.LivePrefix)
	cfg.RecordedPrefix = envutil.String("PLAYBACK_RECORDED_PREFIX", cfg.RecordedPrefix)

	cfg.IngestConcurrency = envutil.Int("INGEST_FILE_CONCURRENCY", cfg.IngestConcurrency)
	cfg.UploadMaxMemoryMB = envutil.Int("UPLOAD_MAX_MEMORY_MB", cfg.UploadMaxMemoryMB)
	cfg.SessionIdleTTLMinutes = envutil.Int("SESSION_IDLE_TTL_MINUTES", cfg.SessionIdleTTLMinutes)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("APP_ENV", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.IngestConcurrency < 1 {
		return fmt.Errorf("INGEST_FILE_CONCURRENCY must be positive, got %d", c.IngestConcurrency)
	}
	if c.UploadMaxMemoryMB < 1 {
		return fmt.Errorf("UPLOAD_MAX_MEMORY_MB must be positive, got %d", c.UploadMaxMemoryMB)
	}
	if c.SessionIdleTTLMinutes < 0 {
		return fmt.Errorf("SESSION_IDLE_TTL_MINUTES must not be negative, got %d", c.SessionIdleTTLMinutes)
	}
	return nil
}

func (c Config) dbConfig() db.Config {
	return db.Config{
		Driver:     c.DB.Driver,
		Host:       c.DB.Host,
		Port:       c.DB.Port,
		User:       c.DB.User,
		Password:   c.DB.Password,
		Name:       c.DB.Name,
		SQLitePath: c.DB.SQLitePath,
	}
}

func (c Config) uploadMaxMemory() int64 {
	return int64(c.UploadMaxMemoryMB) << 20
}

func (c Config) sessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleTTLMinutes) * time.Minute
}
