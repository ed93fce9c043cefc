package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store driver constants
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

const (
	// DefaultMaxLogs caps the stored log list
	DefaultMaxLogs = 100
	// DefaultGracePeriod keeps a completed request correlatable for late phases
	DefaultGracePeriod = 5 * time.Second
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"; empty picks by env
}

// CaptureConfig tunes the correlation engine
type CaptureConfig struct {
	MaxLogs                int           `mapstructure:"max_logs"`
	GracePeriod            time.Duration `mapstructure:"grace_period"`
	ExcludedSchemes        []string      `mapstructure:"excluded_schemes"`
	TrackedTypes           []string      `mapstructure:"tracked_types"`
	CheckRecordingPerPhase bool          `mapstructure:"check_recording_per_phase"`
	MaxEventsPerSecond     float64       `mapstructure:"max_events_per_second"` // 0 disables the limiter
	ResetOnStart           bool          `mapstructure:"reset_on_start"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`      // memory, redis or postgres
	Namespace   string `mapstructure:"namespace"`   // key prefix / notify channel prefix
	Compression string `mapstructure:"compression"` // "none" or "zstd"
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "traffic-recorder",
			Port: 8080,
			Env:  "production",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Capture: CaptureConfig{
			MaxLogs:         DefaultMaxLogs,
			GracePeriod:     DefaultGracePeriod,
			ExcludedSchemes: []string{"chrome-extension://", "data:", "blob:"},
			TrackedTypes:    []string{"xmlhttprequest", "fetch", "main_frame"},
			ResetOnStart:    true,
		},
		Store: StoreConfig{
			Driver:      StoreDriverMemory,
			Namespace:   "recorder",
			Compression: "none",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "recorder",
			SSLMode: "disable",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func NewConfig() (*Config, error) {
	return Load(".", "./config")
}

// Load reads config.yaml from the first matching path, falling back to
// defaults when no file exists. Environment variables override both.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Capture.MaxLogs <= 0 {
		cfg.Capture.MaxLogs = DefaultMaxLogs
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.port", d.App.Port)
	v.SetDefault("app.env", d.App.Env)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("capture.max_logs", d.Capture.MaxLogs)
	v.SetDefault("capture.grace_period", d.Capture.GracePeriod)
	v.SetDefault("capture.excluded_schemes", d.Capture.ExcludedSchemes)
	v.SetDefault("capture.tracked_types", d.Capture.TrackedTypes)
	v.SetDefault("capture.check_recording_per_phase", d.Capture.CheckRecordingPerPhase)
	v.SetDefault("capture.max_events_per_second", d.Capture.MaxEventsPerSecond)
	v.SetDefault("capture.reset_on_start", d.Capture.ResetOnStart)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.namespace", d.Store.Namespace)
	v.SetDefault("store.compression", d.Store.Compression)

	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
