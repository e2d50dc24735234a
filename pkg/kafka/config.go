// Package kafka publishes CloudEvents to Kafka with segmentio/kafka-go.
package kafka

import (
	"time"
)

// Config holds producer configuration
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"clientId"`
	BatchSize    int           `yaml:"batchSize"`
	BatchTimeout time.Duration `yaml:"batchTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	RequiredAcks int           `yaml:"requiredAcks"` // 0 none, 1 leader, -1 all replicas
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "consignment-service",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: -1,
	}
}

// Topics used by the consignment service
var Topics = struct {
	ConsignmentEvents string
	BillingEvents     string
}{
	ConsignmentEvents: "wms.consignments.events",
	BillingEvents:     "wms.billing.events",
}
