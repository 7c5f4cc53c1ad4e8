package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Routes  RoutesConfig  `mapstructure:"routes"`
	Logging LoggingConfig `mapstructure:"logging"`
	API     APIConfig     `mapstructure:"api"`
}

// ServerConfig holds portal server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// BackendConfig points at the Firefly REST API
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds the durable token tier configuration
type StorageConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Type         string        `mapstructure:"type"` // sqlite, postgres
	Path         string        `mapstructure:"path"` // For SQLite
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"` // For PostgreSQL
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	TokenKey     string        `mapstructure:"token_key"`
}

// SessionConfig holds session lifecycle policy
type SessionConfig struct {
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	ExpiryThreshold    time.Duration `mapstructure:"expiry_threshold"`
	GuardRetryAttempts int           `mapstructure:"guard_retry_attempts"`
	GuardRetryDelay    time.Duration `mapstructure:"guard_retry_delay"`
}

// RoutesConfig maps guard verdicts to portal paths
type RoutesConfig struct {
	Login       string `mapstructure:"login"`
	AdminHome   string `mapstructure:"admin_home"`
	TrainerHome string `mapstructure:"trainer_home"`
	MemberHome  string `mapstructure:"member_home"`
	DefaultHome string `mapstructure:"default_home"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// APIConfig holds portal API configuration
type APIConfig struct {
	LoginRateLimit int        `mapstructure:"login_rate_limit"` // attempts per minute per client
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty path or a missing file falls back to defaults and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("FIREFLY")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// defaults always decode
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8780")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout", "15s")

	// Storage defaults
	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "./data/firefly.db")
	v.SetDefault("storage.port", 5432)
	v.SetDefault("storage.sslmode", "disable")
	v.SetDefault("storage.max_open_conns", 1)
	v.SetDefault("storage.max_idle_conns", 1)
	v.SetDefault("storage.max_lifetime", "0s")
	v.SetDefault("storage.token_key", "firefly_token")

	// Session defaults
	v.SetDefault("session.sweep_interval", "60s")
	v.SetDefault("session.expiry_threshold", "5m")
	v.SetDefault("session.guard_retry_attempts", 3)
	v.SetDefault("session.guard_retry_delay", "250ms")

	// Route defaults
	v.SetDefault("routes.login", "/login")
	v.SetDefault("routes.admin_home", "/admin/dashboard")
	v.SetDefault("routes.trainer_home", "/trainer/dashboard")
	v.SetDefault("routes.member_home", "/member/dashboard")
	v.SetDefault("routes.default_home", "/")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "./logs/firefly.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// API defaults
	v.SetDefault("api.login_rate_limit", 10)
	v.SetDefault("api.cors.allowed_origins", []string{"http://localhost:3000"})
}

// overrideWithEnvVars overrides config with specific environment variables
func overrideWithEnvVars(v *viper.Viper) {
	envMappings := map[string]string{
		"BACKEND_URL":  "backend.base_url",
		"DATABASE_URL": "storage.path",
		"DB_TYPE":      "storage.type",
		"DB_HOST":      "storage.host",
		"DB_USER":      "storage.user",
		"DB_PASSWORD":  "storage.password",
		"DB_NAME":      "storage.dbname",
		"LOG_LEVEL":    "logging.level",
		"GIN_MODE":     "server.mode",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Storage.Enabled {
		switch config.Storage.Type {
		case "postgres":
			if config.Storage.Host == "" || config.Storage.User == "" {
				return fmt.Errorf("postgres requires host and user")
			}
		case "sqlite":
			if config.Storage.Path == "" {
				return fmt.Errorf("sqlite requires path")
			}
		default:
			return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
		}
	}

	if config.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}

	if config.Session.ExpiryThreshold < 0 {
		return fmt.Errorf("session expiry threshold must not be negative")
	}

	if config.Session.GuardRetryAttempts < 0 {
		config.Session.GuardRetryAttempts = 0
	}

	if config.Routes.Login == "" {
		config.Routes.Login = "/login"
	}

	return nil
}

// GetDatabaseDSN returns the durable storage connection string
func (c *Config) GetDatabaseDSN() string {
	switch c.Storage.Type {
	case "postgres":
		sslMode := c.Storage.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Storage.Host, c.Storage.Port, c.Storage.User,
			c.Storage.Password, c.Storage.DBName, sslMode)
	case "sqlite":
		return c.Storage.Path
	default:
		return ""
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "debug" || c.Server.Mode == "development"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// SanitizeForLogging returns a copy of the config with sensitive data redacted
func (c *Config) SanitizeForLogging() *Config {
	sanitized := *c

	if sanitized.Storage.Password != "" {
		sanitized.Storage.Password = "[REDACTED]"
	}

	return &sanitized
}
