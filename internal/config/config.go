package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Database drivers understood by CreateRepository.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration options for the tasklist service
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Pagination  PaginationConfig
	Logging     LoggingConfig
	Application ApplicationConfig
	Commands    CommandsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `env:"TASKLIST_HTTP_ADDR"`
	ReadTimeout     time.Duration `env:"TASKLIST_HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"TASKLIST_HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"TASKLIST_HTTP_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `env:"TASKLIST_HTTP_CORS_ORIGINS"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `env:"TASKLIST_DB_DRIVER"`
	Dir            string        `env:"TASKLIST_DB_DIR"`
	Filename       string        `env:"TASKLIST_DB_FILENAME"`
	DSN            string        `env:"TASKLIST_DB_DSN"`
	MaxConns       int           `env:"TASKLIST_DB_MAX_CONNS"`
	QueryTimeout   time.Duration `env:"TASKLIST_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"TASKLIST_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"TASKLIST_DB_DIR_PERMISSIONS"`
	AutoMigrate    bool          `env:"TASKLIST_DB_AUTO_MIGRATE"`
}

// CacheConfig holds Redis cache configuration. An empty URL disables the cache.
type CacheConfig struct {
	RedisURL  string        `env:"TASKLIST_REDIS_URL"`
	TTL       time.Duration `env:"TASKLIST_CACHE_TTL"`
	KeyPrefix string        `env:"TASKLIST_CACHE_PREFIX"`
}

// PaginationConfig holds listing defaults
type PaginationConfig struct {
	DefaultSize int `env:"TASKLIST_PAGE_DEFAULT_SIZE"`
	MaxSize     int `env:"TASKLIST_PAGE_MAX_SIZE"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `env:"TASKLIST_LOG_LEVEL"`
	Format string `env:"TASKLIST_LOG_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"TASKLIST_APP_TIMEOUT"`
	Debug   bool          `env:"TASKLIST_DEBUG"`
}

// CommandsConfig holds command-specific defaults
type CommandsConfig struct {
	OutputDefaultFormat string `env:"TASKLIST_OUTPUT_DEFAULT_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tasklist")

	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tasklist.db",
			MaxConns:       10,
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
			AutoMigrate:    true,
		},
		Cache: CacheConfig{
			TTL:       5 * time.Minute,
			KeyPrefix: "tasklist:",
		},
		Pagination: PaginationConfig{
			DefaultSize: 20,
			MaxSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
		Commands: CommandsConfig{
			OutputDefaultFormat: "table",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// CacheEnabled reports whether a Redis URL is configured.
func (c *Config) CacheEnabled() bool {
	return c.Cache.RedisURL != ""
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored.
func (c *Config) LoadFromEnvironment() error {
	// Server configuration
	if addr := os.Getenv("TASKLIST_HTTP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	c.Server.ReadTimeout = ParseDurationWithFallback(os.Getenv("TASKLIST_HTTP_READ_TIMEOUT"), c.Server.ReadTimeout)
	c.Server.WriteTimeout = ParseDurationWithFallback(os.Getenv("TASKLIST_HTTP_WRITE_TIMEOUT"), c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = ParseDurationWithFallback(os.Getenv("TASKLIST_HTTP_SHUTDOWN_TIMEOUT"), c.Server.ShutdownTimeout)
	if origins := os.Getenv("TASKLIST_HTTP_CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	// Database configuration
	if driver := os.Getenv("TASKLIST_DB_DRIVER"); driver != "" {
		c.Database.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("TASKLIST_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TASKLIST_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("TASKLIST_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	c.Database.MaxConns = ParseIntWithFallback(os.Getenv("TASKLIST_DB_MAX_CONNS"), c.Database.MaxConns)
	c.Database.QueryTimeout = ParseDurationWithFallback(os.Getenv("TASKLIST_DB_QUERY_TIMEOUT"), c.Database.QueryTimeout)
	c.Database.WriteTimeout = ParseDurationWithFallback(os.Getenv("TASKLIST_DB_WRITE_TIMEOUT"), c.Database.WriteTimeout)
	c.Database.DirPermissions = ParseUint32WithFallback(os.Getenv("TASKLIST_DB_DIR_PERMISSIONS"), 8, c.Database.DirPermissions)
	c.Database.AutoMigrate = ParseBoolWithFallback(os.Getenv("TASKLIST_DB_AUTO_MIGRATE"), c.Database.AutoMigrate)

	// Cache configuration
	if url := os.Getenv("TASKLIST_REDIS_URL"); url != "" {
		c.Cache.RedisURL = url
	}
	c.Cache.TTL = ParseDurationWithFallback(os.Getenv("TASKLIST_CACHE_TTL"), c.Cache.TTL)
	if prefix, ok := os.LookupEnv("TASKLIST_CACHE_PREFIX"); ok {
		c.Cache.KeyPrefix = prefix
	}

	// Pagination configuration
	c.Pagination.DefaultSize = ParseIntWithFallback(os.Getenv("TASKLIST_PAGE_DEFAULT_SIZE"), c.Pagination.DefaultSize)
	c.Pagination.MaxSize = ParseIntWithFallback(os.Getenv("TASKLIST_PAGE_MAX_SIZE"), c.Pagination.MaxSize)

	// Logging configuration
	if level := os.Getenv("TASKLIST_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("TASKLIST_LOG_FORMAT"); format != "" {
		c.Logging.Format = strings.ToLower(format)
	}

	// Application configuration
	c.Application.Timeout = ParseDurationWithFallback(os.Getenv("TASKLIST_APP_TIMEOUT"), c.Application.Timeout)
	c.Application.Debug = ParseBoolWithFallback(os.Getenv("TASKLIST_DEBUG"), c.Application.Debug)

	// Commands configuration
	if format := os.Getenv("TASKLIST_OUTPUT_DEFAULT_FORMAT"); format != "" {
		c.Commands.OutputDefaultFormat = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "dsn is required for the postgres driver"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate cache configuration
	if c.Cache.TTL < 0 {
		return &ConfigError{Field: "cache.ttl", Message: "cache ttl cannot be negative"}
	}

	// Validate pagination configuration
	if c.Pagination.DefaultSize < 1 {
		return &ConfigError{Field: "pagination.default_size", Message: "default page size must be at least 1"}
	}
	if c.Pagination.MaxSize < c.Pagination.DefaultSize {
		return &ConfigError{Field: "pagination.max_size", Message: "max page size must not be below the default page size"}
	}

	// Validate logging configuration
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return &ConfigError{Field: "logging.level", Message: "unknown log level " + strconv.Quote(c.Logging.Level)}
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	switch c.Commands.OutputDefaultFormat {
	case "table", "json", "csv":
	default:
		return &ConfigError{Field: "commands.output_default_format", Message: "output format must be table, json or csv"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
