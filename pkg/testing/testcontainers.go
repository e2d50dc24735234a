// Package testing starts throwaway infrastructure for integration tests.
package testing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoImage = "mongo:6"

// CourierMongo is a disposable MongoDB node holding one courier database per test.
type CourierMongo struct {
	container *mongodb.MongoDBContainer
	client    *mongo.Client
}

// StartCourierMongo boots the container and connects a client to it.
func StartCourierMongo(ctx context.Context) (*CourierMongo, error) {
	container, err := mongodb.Run(ctx, mongoImage,
		mongodb.WithUsername("courier"),
		mongodb.WithPassword("courier"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start mongodb container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &CourierMongo{container: container, client: client}, nil
}

// FreshDatabase returns an empty database with a unique name.
func (m *CourierMongo) FreshDatabase() *mongo.Database {
	name := "courier_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	return m.client.Database(name)
}

// Stop disconnects the client and terminates the container.
func (m *CourierMongo) Stop(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongodb client: %w", err)
	}
	return testcontainers.TerminateContainer(m.container, testcontainers.StopContext(ctx))
}
