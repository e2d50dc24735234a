// Package config loads the service configuration: defaults, then an optional
// YAML file named by CONFIG_PATH, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wms-platform/consignment-service/pkg/kafka"
	"github.com/wms-platform/consignment-service/pkg/mongodb"
	"github.com/wms-platform/consignment-service/pkg/tracing"
)

// ServiceName identifies the service in logs, metrics, traces and events
const ServiceName = "consignment-service"

// Config holds application configuration
type Config struct {
	ServerAddr      string          `yaml:"serverAddr"`
	Environment     string          `yaml:"environment"`
	LogLevel        string          `yaml:"logLevel"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	MongoDB         *mongodb.Config `yaml:"mongodb"`
	Kafka           *kafka.Config   `yaml:"kafka"`
	Tracing         *tracing.Config `yaml:"tracing"`
	Auth            AuthConfig      `yaml:"auth"`
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
	Issuer  string `yaml:"issuer"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		ServerAddr:      ":8080",
		Environment:     "development",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		MongoDB:         mongodb.DefaultConfig(),
		Kafka:           kafka.DefaultConfig(),
		Tracing:         tracing.DefaultConfig(ServiceName),
		Auth: AuthConfig{
			Enabled: true,
		},
	}
}

// Load builds the configuration and validates it
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.Tracing.ServiceName = ServiceName
	cfg.Tracing.Environment = cfg.Environment

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.MongoDB.URI = getEnv("MONGODB_URI", c.MongoDB.URI)
	c.MongoDB.Database = getEnv("MONGODB_DATABASE", c.MongoDB.Database)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.Enabled = getBool("KAFKA_ENABLED", c.Kafka.Enabled)

	c.Auth.Enabled = getBool("AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.Secret = getEnv("JWT_SECRET", c.Auth.Secret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)

	c.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.OTLPEndpoint)
	c.Tracing.Enabled = getBool("TRACING_ENABLED", c.Tracing.Enabled)
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.MongoDB == nil || c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		return fmt.Errorf("mongodb uri and database are required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when authentication is enabled")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
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
