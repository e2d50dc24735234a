package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/consignment-service/api"
	"github.com/wms-platform/consignment-service/internal/api/handlers"
	"github.com/wms-platform/consignment-service/internal/application"
	"github.com/wms-platform/consignment-service/internal/config"
	eventKafka "github.com/wms-platform/consignment-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/consignment-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/consignment-service/internal/infrastructure/numbering"
	"github.com/wms-platform/consignment-service/pkg/cloudevents"
	"github.com/wms-platform/consignment-service/pkg/contracts/asyncapi"
	"github.com/wms-platform/consignment-service/pkg/kafka"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
	"github.com/wms-platform/consignment-service/pkg/middleware"
	"github.com/wms-platform/consignment-service/pkg/mongodb"
	"github.com/wms-platform/consignment-service/pkg/tracing"
)

const serviceName = config.ServiceName

type mongoClient interface {
	Database() *mongo.Database
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type kafkaProducer interface {
	kafka.EventPublisher
	Close() error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

var loadConfig = config.Load

var newMongoClient = func(ctx context.Context, cfg *mongodb.Config, m *metrics.Metrics, logger *logging.Logger) (mongoClient, error) {
	return mongodb.NewProductionClient(ctx, cfg, m, logger)
}

var newKafkaProducer = func(cfg *kafka.Config) kafkaProducer {
	return kafka.NewProducer(cfg)
}

var newRepositories = func(db *mongo.Database) (application.Repositories, []indexer) {
	consignments := mongoRepo.NewConsignmentRepository(db)
	shipments := mongoRepo.NewShipmentRepository(db)
	invoices := mongoRepo.NewInvoiceRepository(db)

	repos := application.Repositories{
		Consignments: consignments,
		Shipments:    shipments,
		Invoices:     invoices,
		Customers:    mongoRepo.NewCustomerRepository(db),
		Policies:     mongoRepo.NewPricingPolicyRepository(db),
	}
	return repos, []indexer{consignments, shipments, invoices}
}

var newMetrics = metrics.New

var initTracing = tracing.Initialize

var startHTTPServer = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	cfg, err := loadConfig()
	if err != nil {
		logging.New(logging.DefaultConfig(serviceName)).WithError(err).Error("Failed to load configuration")
		return err
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.ParseLevel(cfg.LogLevel)
	logConfig.Environment = cfg.Environment
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting consignment-service API")

	// Initialize OpenTelemetry tracing
	tracerProvider, err := initTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", cfg.Tracing.OTLPEndpoint, "enabled", cfg.Tracing.Enabled)
	}

	m := newMetrics(metrics.DefaultConfig(serviceName))

	// MongoDB with command instrumentation and a breaker on health checks
	client, err := newMongoClient(ctx, cfg.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer client.Close(context.Background())
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)

	repos, indexers := newRepositories(client.Database())
	for _, idx := range indexers {
		if err := idx.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Error("Failed to create indexes")
			return err
		}
	}

	opts := []application.Option{}
	if cfg.Kafka.Enabled {
		producer := newKafkaProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close Kafka producer")
			}
		}()

		validator, err := asyncapi.NewEventValidatorFromBytes(api.AsyncAPI)
		if err != nil {
			logger.WithError(err).Error("Failed to load AsyncAPI contract")
			return err
		}

		publisher := eventKafka.NewEventPublisher(
			kafka.NewCircuitBreakerProducer(producer, m, logger),
			cloudevents.NewEventFactory("/"+serviceName),
			validator,
			kafka.Topics.ConsignmentEvents,
		)
		opts = append(opts, application.WithEventPublisher(publisher))
		logger.Info("Kafka event publishing enabled", "brokers", cfg.Kafka.Brokers, "topic", publisher.GetTopic())
	}

	consignmentService := application.NewConsignmentService(
		repos,
		numbering.NewInvoiceNumberGenerator(),
		m,
		logger,
		opts...,
	)
	consignmentHandler := handlers.NewConsignmentHandler(consignmentService, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(serviceName))

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, client.HealthCheck))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	if !cfg.Auth.Enabled {
		logger.Warn("Authentication disabled, requests act as an anonymous master admin")
	}
	consignmentHandler.RegisterRoutes(router.Group("/api/v1"), &middleware.AuthConfig{
		Enabled: cfg.Auth.Enabled,
		Secret:  []byte(cfg.Auth.Secret),
		Issuer:  cfg.Auth.Issuer,
		Anonymous: middleware.Principal{
			Subject: "anonymous",
			Role:    middleware.RoleMasterAdmin,
		},
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
			serverErr <- err
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	select {
	case <-signalCh:
	case err := <-serverErr:
		return err
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
	return nil
}
