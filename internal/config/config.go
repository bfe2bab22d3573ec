// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, OMNIBUS_* and DATABASE_URL)
//  2. Config file (~/.omnibus/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Price log: retention window for historical price rows
//   - Storage: PostgreSQL connection (see storage.go)
//   - Currency: how marker prices are rendered (see omnibus.PriceFormatter)
//   - Logging: level and format
//
// Sensitive data (the database password) is never logged; String() and
// MarshalJSON() mask it. Validation is fail-fast with sentinel errors that
// callers check via errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidRetention indicates the retention window is out of range.
	ErrInvalidRetention = errors.New("invalid retention window")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidCurrency indicates the currency display settings are invalid.
	ErrInvalidCurrency = errors.New("invalid currency settings")
)

const (
	// DefaultRetentionDays is how long price-log rows are kept.
	// Omnibus rules require showing the lowest price of the prior 30 days;
	// one extra day covers the "strictly before today" lookup.
	DefaultRetentionDays = 31

	// MaxRetentionDays bounds the retention window to keep the log table small.
	MaxRetentionDays = 3650
)

// Currency symbol positions accepted in Config.Currency.Position.
const (
	PositionLeft       = "left"
	PositionRight      = "right"
	PositionLeftSpace  = "left_space"
	PositionRightSpace = "right_space"
)

// CurrencyConfig controls how marker prices are formatted for display.
// Mirrors the host shop's price rendering settings.
type CurrencyConfig struct {
	Symbol      string `mapstructure:"symbol" json:"symbol"`
	Position    string `mapstructure:"position" json:"position"`
	ThousandSep string `mapstructure:"thousand_sep" json:"thousand_sep"`
	DecimalSep  string `mapstructure:"decimal_sep" json:"decimal_sep"`
	Decimals    int    `mapstructure:"decimals" json:"decimals"`
}

// Config stores application configuration.
// SECURITY: PostgresPassword is masked in MarshalJSON().
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"` // "debug", "info", "warn", "error"
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Price log retention window in days
	RetentionDays int `mapstructure:"retention_days" json:"retention_days"`

	// Storage configuration (see storage.go for DSN helpers)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Currency display configuration
	Currency CurrencyConfig `mapstructure:"currency" json:"currency"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".omnibus")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL (if set) overrides individual postgres_* settings
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	viper.SetDefault("retention_days", DefaultRetentionDays)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "omnibus")
	viper.SetDefault("postgres_password", "omnibus_dev_password")
	viper.SetDefault("postgres_db_name", "omnibus")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Currency defaults: EUR, symbol before the amount
	viper.SetDefault("currency.symbol", "€")
	viper.SetDefault("currency.position", PositionLeft)
	viper.SetDefault("currency.thousand_sep", ",")
	viper.SetDefault("currency.decimal_sep", ".")
	viper.SetDefault("currency.decimals", 2)
}

// bindEnvVariables binds environment overrides explicitly.
// DATABASE_URL is read directly in parseDatabaseURL, not via viper.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a
	// runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("log_level", "OMNIBUS_LOG_LEVEL")
	mustBind("log_json", "OMNIBUS_LOG_JSON")
	mustBind("retention_days", "OMNIBUS_RETENTION_DAYS")
	mustBind("postgres_host", "OMNIBUS_POSTGRES_HOST")
	mustBind("postgres_port", "OMNIBUS_POSTGRES_PORT")
	mustBind("postgres_user", "OMNIBUS_POSTGRES_USER")
	mustBind("postgres_password", "OMNIBUS_POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "OMNIBUS_POSTGRES_DB_NAME")
	mustBind("postgres_ssl_mode", "OMNIBUS_POSTGRES_SSL_MODE")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid accidental substring matches against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 chars or
// fewer are fully masked; longer ones keep the first and last 2 characters
// for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// SlogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
