// Package config handles application configuration loading from an
// optional YAML file and environment variables. It provides a centralized
// Config struct used across the application.
package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"sitebuilder/internal/database"
)

// FileEnv names the environment variable holding the config file path.
const FileEnv = "SITEBUILDER_CONFIG"

// Config holds all application configuration values. Environment variables
// win over the config file, which wins over the defaults.
type Config struct {
	// Server settings
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Env  string `yaml:"env"` // "development", "production", "testing"

	// Database. Driver is "postgres" or "sqlite".
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	SQLitePath string `yaml:"sqlite_path"`

	// Valkey (Redis-compatible cache and sessions). An empty host keeps
	// sessions in memory and disables the site cache.
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`

	// S3-compatible media storage. Without an endpoint media is kept in
	// MediaDir.
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3PublicURL string `yaml:"s3_public_url"`
	MediaDir    string `yaml:"media_dir"`

	// FFmpegPath is the binary used to grab video thumbnails.
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// defaults returns the development configuration.
func defaults() *Config {
	return &Config{
		Host:       "0.0.0.0",
		Port:       "8080",
		Env:        "development",
		DBDriver:   "postgres",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "sitebuilder",
		DBPassword: "changeme",
		DBName:     "sitebuilder",
		SQLitePath: "sitebuilder.db",
		ValkeyPort: "6379",
		S3Region:   "us-east-1",
		S3Bucket:   "sitebuilder-media",
		MediaDir:   "media",
		FFmpegPath: "ffmpeg",
	}
}

// bindings pairs each environment variable with the field it overrides.
func (c *Config) bindings() []struct {
	env string
	dst *string
} {
	return []struct {
		env string
		dst *string
	}{
		{"APP_HOST", &c.Host},
		{"APP_PORT", &c.Port},
		{"APP_ENV", &c.Env},
		{"DB_DRIVER", &c.DBDriver},
		{"POSTGRES_HOST", &c.DBHost},
		{"POSTGRES_PORT", &c.DBPort},
		{"POSTGRES_USER", &c.DBUser},
		{"POSTGRES_PASSWORD", &c.DBPassword},
		{"POSTGRES_DB", &c.DBName},
		{"SQLITE_PATH", &c.SQLitePath},
		{"VALKEY_HOST", &c.ValkeyHost},
		{"VALKEY_PORT", &c.ValkeyPort},
		{"VALKEY_PASSWORD", &c.ValkeyPassword},
		{"S3_ENDPOINT", &c.S3Endpoint},
		{"S3_REGION", &c.S3Region},
		{"S3_ACCESS_KEY", &c.S3AccessKey},
		{"S3_SECRET_KEY", &c.S3SecretKey},
		{"S3_BUCKET", &c.S3Bucket},
		{"S3_PUBLIC_URL", &c.S3PublicURL},
		{"MEDIA_DIR", &c.MediaDir},
		{"FFMPEG_PATH", &c.FFmpegPath},
	}
}

// Load reads the file named by SITEBUILDER_CONFIG, if any, then applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	for _, b := range cfg.bindings() {
		*b.dst = envOrDefault(b.env, *b.dst)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations the server cannot start with.
func (c *Config) validate() error {
	dialect, err := c.Dialect()
	if err != nil {
		return err
	}
	if c.Env == "production" && dialect == database.Postgres && c.DBPassword == "changeme" {
		return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}
	if c.S3Endpoint != "" && (c.S3AccessKey == "" || c.S3SecretKey == "" || c.S3Bucket == "") {
		return fmt.Errorf("S3_ENDPOINT requires S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET")
	}
	return nil
}

// readFile overlays the keys present in a YAML file.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Dialect returns the configured database backend.
func (c *Config) Dialect() (database.Dialect, error) {
	return database.ParseDialect(c.DBDriver)
}

// DSN returns the connection string for the configured backend: a
// PostgreSQL URL, or the SQLite file path.
func (c *Config) DSN() string {
	if d, err := c.Dialect(); err == nil && d == database.SQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// ValkeyEnabled reports whether a Valkey server is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether media should go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault treats an empty variable as unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
