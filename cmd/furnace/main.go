package main

import (
	"context"

	"furnace/internal/bookings/handler"
	"furnace/internal/bookings/repository"
	"furnace/internal/bookings/service"
	"furnace/internal/bookings/validator"
	"furnace/pkg/app"
	"furnace/pkg/config"
	"furnace/pkg/kafka"
	kafka_middleware "furnace/pkg/kafka/middleware"
	"furnace/pkg/metrics"
)

const ServiceName = "furnace"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	metrics.Register()

	cfg.Log.Info("Starting Furnace booking service")
	ctx := context.Background()

	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open booking storage", "backend", cfg.StoreBackend, "error", err)
	}

	publisher := initPublisher(cfg)
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := service.NewBookingService(repo, bookingValidator, publisher, cfg.Log)
	cfg.Log.Info("Booking service initialized", "backend", cfg.StoreBackend)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(bookingService, cfg.StoreBackend, cfg.Log),
		handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log),
		"/health", "/ready", handler.BookingsPath, handler.DayPath,
	)
	serverApp.OnShutdown("event publisher", func(context.Context) error {
		return publisher.Close()
	})
	serverApp.OnShutdown("booking storage", repo.Close)
	serverApp.Run()
}

// initPublisher returns a kafka-backed publisher when brokers are configured
// and a no-op publisher otherwise.
func initPublisher(cfg *config.Config) kafka.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return kafka.NopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaTopic)
	return kafka.NewBookingPublisher(producer, ServiceName)
}
