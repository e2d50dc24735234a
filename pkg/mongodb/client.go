// Package mongodb holds the MongoDB connection, command instrumentation and helpers.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
	"github.com/wms-platform/consignment-service/pkg/resilience"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	MaxPoolSize    uint64        `yaml:"maxPoolSize"`
	MinPoolSize    uint64        `yaml:"minPoolSize"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
	AuthDB   string `yaml:"authDb"`

	ReplicaSet string `yaml:"replicaSet"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "courier",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    5,
	}
}

// Client wraps the driver client, the selected database and an optional breaker
// guarding connectivity checks.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	config   *Config
	breaker  *resilience.CircuitBreaker
}

// Option customises client construction.
type Option func(*options.ClientOptions, *Client)

// WithMonitor installs a driver command monitor.
func WithMonitor(monitor *event.CommandMonitor) Option {
	return func(opts *options.ClientOptions, _ *Client) {
		opts.SetMonitor(monitor)
	}
}

// WithCircuitBreaker routes HealthCheck through cb.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(_ *options.ClientOptions, c *Client) {
		c.breaker = cb
	}
}

// NewClient connects and pings the primary.
func NewClient(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(config.ConnectTimeout).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize)

	if config.Username != "" && config.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username:   config.Username,
			Password:   config.Password,
			AuthSource: config.AuthDB,
		})
	}
	if config.ReplicaSet != "" {
		clientOpts.SetReplicaSet(config.ReplicaSet)
	}

	c := &Client{config: config}
	for _, opt := range opts {
		opt(clientOpts, c)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c.client = client
	c.database = client.Database(config.Database)
	return c, nil
}

// NewProductionClient connects with command instrumentation and a breaker on
// health checks, reporting breaker transitions to m.
func NewProductionClient(ctx context.Context, config *Config, m *metrics.Metrics, logger *logging.Logger) (*Client, error) {
	cbConfig := resilience.DefaultCircuitBreakerConfig("mongodb")
	cbConfig.MaxRequests = 5
	if m != nil {
		cbConfig.OnStateChange = func(name string, _, to gobreaker.State) {
			m.SetCircuitBreakerState(name, resilience.StateValue(to))
			if to == gobreaker.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}
	breaker := resilience.NewCircuitBreaker(cbConfig, logger.Logger)

	return NewClient(ctx, config,
		WithMonitor(NewCommandMonitor(m, logger)),
		WithCircuitBreaker(breaker),
	)
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Client returns the underlying driver client
func (c *Client) Client() *mongo.Client {
	return c.client
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// HealthCheck pings the primary, through the breaker when one is configured.
func (c *Client) HealthCheck(ctx context.Context) error {
	ping := func(ctx context.Context) error {
		return c.client.Ping(ctx, readpref.Primary())
	}
	if c.breaker == nil {
		return ping(ctx)
	}
	return c.breaker.Execute(ctx, ping)
}

// IsUnavailable reports whether err means the server could not be reached,
// as opposed to the server rejecting the operation.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		return false
	}
	var selErr topology.ServerSelectionError
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.As(err, &selErr)
}
