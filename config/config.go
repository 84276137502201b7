package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yuzutube/gateway/utils"
)

// DefaultInstances is the instance list used when INVIDIOUS_INSTANCES is unset.
// Order is trial priority.
var DefaultInstances = []string{
	"https://invidious.reallyaweso.me",
	"https://iv.melmac.space",
	"https://inv.vern.cc",
	"https://y.com.sb",
	"https://invidious.nikkosphere.com",
	"https://yt.omada.cafe",
}

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Invidious     InvidiousConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int           `validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration
}

// InvidiousConfig holds the upstream instance list and request bounds
type InvidiousConfig struct {
	Instances []string      `validate:"required,min=1,dive,required,http_url"`
	Timeout   time.Duration `validate:"gt=0"`
	// ResolveDeadline caps a whole fallback pass. Zero derives it from
	// Timeout and the instance count; otherwise it must cover one full
	// Timeout per instance.
	ResolveDeadline time.Duration `validate:"gte=0"`
	UserAgent       string
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string `validate:"required"`
	LogFormat      string `validate:"omitempty,oneof=json console text"`
	MetricsEnabled bool
	MetricsPath    string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Invidious: InvidiousConfig{
			Instances:       getEnvAsSlice("INVIDIOUS_INSTANCES", DefaultInstances),
			Timeout:         getEnvAsDuration("INVIDIOUS_TIMEOUT", 5*time.Second),
			ResolveDeadline: getEnvAsDuration("INVIDIOUS_RESOLVE_DEADLINE", 0),
			UserAgent:       getEnv("INVIDIOUS_USER_AGENT", "yuzutube-gateway/1.0"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if len(c.Invidious.Instances) == 0 {
		return fmt.Errorf("at least one invidious instance is required")
	}

	seen := make(map[string]struct{}, len(c.Invidious.Instances))
	for _, instance := range c.Invidious.Instances {
		if _, dup := seen[instance]; dup {
			return fmt.Errorf("duplicate invidious instance: %s", instance)
		}
		seen[instance] = struct{}{}
	}

	if err := utils.ValidateStruct(c); err != nil {
		return err
	}

	if floor := c.Invidious.Timeout * time.Duration(len(c.Invidious.Instances)); c.Invidious.ResolveDeadline != 0 && c.Invidious.ResolveDeadline < floor {
		return fmt.Errorf("resolve deadline %s is shorter than timeout x instances (%s)", c.Invidious.ResolveDeadline, floor)
	}

	if c.Observability.MetricsEnabled && !strings.HasPrefix(c.Observability.MetricsPath, "/") {
		return fmt.Errorf("metrics path must start with /: %q", c.Observability.MetricsPath)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 3000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice splits a comma-separated value, trimming blanks and trailing
// slashes. The default is copied so callers never share its backing array.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
