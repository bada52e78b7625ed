package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service. Values come from defaults,
// then an optional YAML file named by CONFIG_FILE, then the environment.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
	CORS     CORSConfig     `yaml:"cors"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RequestTimeout bounds every store round-trip made for one request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type EventsConfig struct {
	// RabbitMQURL empty disables event publishing.
	RabbitMQURL string `yaml:"rabbitmq_url"`
	Exchange    string `yaml:"exchange"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "3000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Events: EventsConfig{
			Exchange: "ecommerce.events",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// Load builds and validates the configuration.
func Load() (*Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getenv("HOST", cfg.Server.Host)
	cfg.Server.Port = getenv("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getenvDuration("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getenvDuration("WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = getenvDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.RequestTimeout = getenvDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout)

	cfg.Database.DSN = getenv("DATABASE_DSN", cfg.Database.DSN)
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = composeDSN(
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASS"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_NAME"),
		)
	}
	cfg.Database.MaxOpenConns = getenvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getenvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getenvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Auth.APIKey = getenv("API_KEY", cfg.Auth.APIKey)

	cfg.Events.RabbitMQURL = getenv("RABBITMQ_URL", cfg.Events.RabbitMQURL)
	cfg.Events.Exchange = getenv("EVENTS_EXCHANGE", cfg.Events.Exchange)

	if v := getenv("CORS_ALLOW_ORIGINS", ""); v != "" {
		cfg.CORS.AllowOrigins = splitCSV(v)
	}

	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
}

// composeDSN builds a postgres URL from the discrete DB_* variables. It
// returns "" unless at least a host is given.
func composeDSN(user, pass, host, name string) string {
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     host,
		Path:     "/" + name,
		RawQuery: "sslmode=require",
	}
	if user != "" {
		u.User = url.UserPassword(user, pass)
	}
	return u.String()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN (or DB_HOST) is required"))
	}
	if c.Auth.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}

	for name, d := range map[string]time.Duration{
		"READ_TIMEOUT":     c.Server.ReadTimeout,
		"WRITE_TIMEOUT":    c.Server.WriteTimeout,
		"SHUTDOWN_TIMEOUT": c.Server.ShutdownTimeout,
		"REQUEST_TIMEOUT":  c.Server.RequestTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil {
		return def
	}
	return v
}

func getenvDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(k, ""))
	if err != nil {
		return def
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
