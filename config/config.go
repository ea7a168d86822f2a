// Package config loads runtime settings for the trivia API.
//
// Settings are layered: an optional .env file is loaded into the process
// environment first, then built-in defaults, an optional YAML file and
// environment variables are merged with koanf. Later layers win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type Config struct {
	Server          ServerConfig   `koanf:"server"`
	Database        DatabaseConfig `koanf:"database"`
	Redis           RedisConfig    `koanf:"redis"`
	Logging         LoggingConfig  `koanf:"logging"`
	CategoryBackend string         `koanf:"category_backend"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	GinMode         string        `koanf:"gin_mode"`
	UseHTTPS        bool          `koanf:"use_https"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL              string        `koanf:"url"`
	MaxOpenConns     int           `koanf:"max_open_conns"`
	MaxIdleConns     int           `koanf:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `koanf:"conn_max_idle_time"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
	AutoMigrate      bool          `koanf:"auto_migrate"`
	LogLevel         string        `koanf:"log_level"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			GinMode:         "debug",
			CORSOrigins:     []string{"http://localhost:3000", "https://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:              "host=localhost port=5432 user=trivia-game dbname=trivia-game password=trivia-game sslmode=disable",
			MaxOpenConns:     25,
			MaxIdleConns:     10,
			ConnMaxLifetime:  time.Hour,
			ConnMaxIdleTime:  10 * time.Minute,
			StatementTimeout: 5 * time.Second,
			AutoMigrate:      true,
			LogLevel:         "warn",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		CategoryBackend: BackendPostgres,
	}
}

// envMappings maps the supported environment variables to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"port":                  "server.port",
	"gin_mode":              "server.gin_mode",
	"use_https":             "server.use_https",
	"tls_cert_file":         "server.tls_cert_file",
	"tls_key_file":          "server.tls_key_file",
	"cors_origins":          "server.cors_origins",
	"shutdown_timeout":      "server.shutdown_timeout",
	"database_url":          "database.url",
	"db_max_open_conns":     "database.max_open_conns",
	"db_max_idle_conns":     "database.max_idle_conns",
	"db_conn_max_lifetime":  "database.conn_max_lifetime",
	"db_conn_max_idle_time": "database.conn_max_idle_time",
	"db_statement_timeout":  "database.statement_timeout",
	"db_auto_migrate":       "database.auto_migrate",
	"db_log_level":          "database.log_level",
	"redis_addr":            "redis.addr",
	"redis_password":        "redis.password",
	"redis_db":              "redis.db",
	"log_level":             "logging.level",
	"log_file":              "logging.file",
	"category_backend":      "category_backend",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load reads .env, defaults, an optional config file and the environment, in that order.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCommaList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitCommaList turns a comma separated string (as env vars arrive) into a slice.
func splitCommaList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.Server.GinMode)
	}
	if c.Server.UseHTTPS && (c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "") {
		return fmt.Errorf("USE_HTTPS requires TLS_CERT_FILE and TLS_KEY_FILE")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	switch c.CategoryBackend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown category backend %q (want %q or %q)", c.CategoryBackend, BackendPostgres, BackendRedis)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
