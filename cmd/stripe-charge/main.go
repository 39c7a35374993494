package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dhoini/stripe-charge/internal/api/rest"
	"github.com/Dhoini/stripe-charge/internal/api/rest/handlers"
	"github.com/Dhoini/stripe-charge/internal/config"
	"github.com/Dhoini/stripe-charge/internal/kafka"
	"github.com/Dhoini/stripe-charge/internal/kafka/producer"
	"github.com/Dhoini/stripe-charge/internal/metrics"
	"github.com/Dhoini/stripe-charge/internal/stripe"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	envFile := flag.String("env", ".env", "path to .env file")
	configFile := flag.String("config", "", "path to config.yaml (default: ./config.yaml if present)")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.LoadConfig(*envFile, *configFile)
	if err != nil {
		logger.New(logger.INFO).Fatal("Failed to load configuration: %v", err)
	}

	// Инициализация логгера
	logLevel, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logLevel = logger.INFO
	}
	log := logger.New(logLevel)
	defer func() { _ = log.Sync() }()

	// Инициализация Prometheus
	promRegistry := metrics.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(promRegistry)
	chargeMetrics := metrics.NewChargeMetrics(promRegistry)

	// Клиент Stripe
	stripeClient, err := stripe.NewClient(cfg.StripeConfig(), log, stripe.WithMetrics(apiMetrics))
	if err != nil {
		log.Fatal("Failed to create Stripe client: %v", err)
	}

	// Инициализация Kafka продюсера
	chargeProducer := producer.NewNopChargeProducer()
	if cfg.KafkaEnabled() {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		kafkaProducer, err := kafka.NewSyncProducer(kafkaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}
		chargeProducer = producer.NewKafkaChargeProducer(kafkaProducer, kafkaConfig.Topic, log)
		log.Infow("Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", kafkaConfig.Topic)
	} else {
		log.Infow("Kafka brokers are not configured, charge events are disabled")
	}
	defer func() {
		if err := chargeProducer.Close(); err != nil {
			log.Errorw("Failed to close Kafka producer", "error", err)
		}
	}()

	// Установка режима Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	chargeHandler := handlers.NewChargeHandler(stripeClient, chargeProducer, chargeMetrics, log)
	router := rest.SetupRouter(log, promRegistry, cfg, chargeHandler)
	server := rest.NewServer(router, cfg, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("Received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			log.Errorw("HTTP server stopped unexpectedly", "error", err)
		}
		return
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server stopped gracefully")
}
