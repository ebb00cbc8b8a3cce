package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claude/liftlog/internal/models"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Timer     TimerConfig     `yaml:"timer"`
	Stats     StatsConfig     `yaml:"stats"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	WebDir string `yaml:"web_dir"`
}

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type StorageConfig struct {
	Driver        string         `yaml:"driver"`
	SQLitePath    string         `yaml:"sqlite_path"`
	Postgres      DatabaseConfig `yaml:"postgres"`
	MigrationsDir string         `yaml:"migrations_dir"`
	CacheMB       int            `yaml:"cache_mb"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TimerConfig struct {
	Tick           Duration `yaml:"tick"`
	WarningSeconds int      `yaml:"warning_seconds"`
	DefaultRest    string   `yaml:"default_rest"`
}

type StatsConfig struct {
	Weeks         int `yaml:"weeks"`
	ForecastWeeks int `yaml:"forecast_weeks"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration reads YAML strings such as "1s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// SlogLevel maps log.level to a slog level. Unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_STORAGE_DRIVER,
//	LIFTLOG_SQLITE_PATH, LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_LOG_LEVEL, LIFTLOG_TAILSCALE_ENABLED
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("LIFTLOG_SERVER_HOST", &cfg.Server.Host)
	num("LIFTLOG_SERVER_PORT", &cfg.Server.Port)
	str("LIFTLOG_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("LIFTLOG_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("LIFTLOG_DB_HOST", &cfg.Storage.Postgres.Host)
	num("LIFTLOG_DB_PORT", &cfg.Storage.Postgres.Port)
	str("LIFTLOG_DB_NAME", &cfg.Storage.Postgres.Name)
	str("LIFTLOG_DB_USER", &cfg.Storage.Postgres.User)
	str("LIFTLOG_DB_PASSWORD", &cfg.Storage.Postgres.Password)
	str("LIFTLOG_DB_SSLMODE", &cfg.Storage.Postgres.SSLMode)
	str("LIFTLOG_LOG_LEVEL", &cfg.Log.Level)
	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/liftlog.db"
	}
	if c.Storage.MigrationsDir == "" {
		c.Storage.MigrationsDir = "migrations"
	}
	if c.Timer.Tick == 0 {
		c.Timer.Tick = Duration(time.Second)
	}
	if c.Timer.WarningSeconds == 0 {
		c.Timer.WarningSeconds = 10
	}
	if c.Timer.DefaultRest == "" {
		c.Timer.DefaultRest = models.DefaultRestTime
	}
	if c.Stats.Weeks == 0 {
		c.Stats.Weeks = 12
	}
	if c.Stats.ForecastWeeks == 0 {
		c.Stats.ForecastWeeks = 6
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "liftlog"
	}
	if c.Tailscale.StateDir == "" {
		c.Tailscale.StateDir = "data/tsnet"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.driver %q must be sqlite, postgres or memory", c.Storage.Driver)
	}
	if c.Storage.CacheMB < 0 {
		return fmt.Errorf("storage.cache_mb must not be negative")
	}
	if c.Timer.Tick < 0 {
		return fmt.Errorf("timer.tick must be positive")
	}
	if c.Timer.WarningSeconds < 0 {
		return fmt.Errorf("timer.warning_seconds must not be negative")
	}
	if !models.ValidRestTime(c.Timer.DefaultRest) {
		return fmt.Errorf("timer.default_rest %q must look like m:ss", c.Timer.DefaultRest)
	}
	if c.Stats.Weeks < 1 || c.Stats.ForecastWeeks < 1 {
		return fmt.Errorf("stats.weeks and stats.forecast_weeks must be at least 1")
	}
	return nil
}
