package main

import (
	"tms/internal/events"
	"tms/pkg/app"
	"tms/pkg/config"
	"tms/pkg/kafka"
	kafka_config "tms/pkg/kafka/config"
	kafka_middleware "tms/pkg/kafka/middleware"
	"tms/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "tms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting TMS service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	storage := initStorage(cfg)
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	publisher, closePublisher := initPublisher(cfg, collector)

	health, handlers := app.NewHandlers(cfg, storage, publisher, collector)
	serverApp := app.NewApplication(cfg, collector)
	serverApp.OnShutdown(closePublisher)
	serverApp.SetApp(health, handlers...)
	serverApp.Run()
}

func initStorage(cfg *config.Config) *app.Storage {
	if !cfg.UsesMongo() {
		cfg.Log.Warn("Using in-memory storage; data is lost on restart")
		return app.NewMemoryStorage()
	}

	cfg.SetMongo()
	cfg.Log.Info("Mongo storage initialized", "database", cfg.MongoDatabaseName)
	return app.NewMongoStorage(cfg)
}

func initPublisher(cfg *config.Config, collector *metrics.Collector) (events.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled; domain events are logged only")
		return events.NewLogPublisher(cfg.Log, collector), func() {}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.KafkaEventsTopic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware(collector))
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
