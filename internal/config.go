package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Operator      OperatorConfig      `mapstructure:"operator" validate:"required"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// OperatorConfig guards the sync RPC endpoints. The integration has no user
// accounts; a single static key identifies the operator.
type OperatorConfig struct {
	APIKey string `mapstructure:"api_key" validate:"required,min=16"`
}

type SyncConfig struct {
	Schedule           string        `mapstructure:"schedule"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	AttachmentTimeout  time.Duration `mapstructure:"attachment_timeout"`
	AttachmentMaxBytes int64         `mapstructure:"attachment_max_bytes"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultSyncSchedule       = "*/15 * * * *"
	DefaultFetchTimeout       = 30 * time.Second
	DefaultAttachmentTimeout  = 60 * time.Second
	DefaultAttachmentMaxBytes = 20 << 20
)

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config from environment variables, used for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_SERVER_PORT", 8080),
			BaseURL:           getEnv("HTTP_SERVER_BASE_URL", ""),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DATABASE_SOURCE", ""),
		},
		Operator: OperatorConfig{
			APIKey: getEnv("OPERATOR_API_KEY", ""),
		},
		Sync: SyncConfig{
			Schedule:           getEnv("SYNC_SCHEDULE", DefaultSyncSchedule),
			FetchTimeout:       DefaultFetchTimeout,
			AttachmentTimeout:  DefaultAttachmentTimeout,
			AttachmentMaxBytes: DefaultAttachmentMaxBytes,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ApplyDefaults fills zero-valued sync knobs so callers never branch on zero.
func (c *Config) ApplyDefaults() {
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = DefaultSyncSchedule
	}
	if c.Sync.FetchTimeout <= 0 {
		c.Sync.FetchTimeout = DefaultFetchTimeout
	}
	if c.Sync.AttachmentTimeout <= 0 {
		c.Sync.AttachmentTimeout = DefaultAttachmentTimeout
	}
	if c.Sync.AttachmentMaxBytes <= 0 {
		c.Sync.AttachmentMaxBytes = DefaultAttachmentMaxBytes
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Operator.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("operator config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *OperatorConfig) Validate() error {
	if len(c.APIKey) < 16 {
		return errors.New("operator api key must be at least 16 characters")
	}
	return nil
}
