package main

import (
	"os"

	"raidledger/internal/battle/handler"
	"raidledger/internal/battle/repository"
	"raidledger/internal/battle/service"
	"raidledger/internal/battle/validator"
	catalogrepo "raidledger/internal/catalog/repository"
	catalogservice "raidledger/internal/catalog/service"
	"raidledger/internal/events"
	"raidledger/pkg/app"
	"raidledger/pkg/client"
	"raidledger/pkg/config"
	"raidledger/pkg/kafka"
	kafka_config "raidledger/pkg/kafka/config"
	kafkamiddleware "raidledger/pkg/kafka/middleware"
	"raidledger/pkg/sealer"
)

const ServiceName = "raids"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Raids service")

	publisher, closePublisher := initPublisher(cfg)
	defer closePublisher()

	bookingService, settlementService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(
		cfg,
		handler.NewBattleHandler(bookingService, settlementService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) (service.BookingService, service.SettlementService) {
	seal, err := sealer.New(cfg.CorrelationSealKey)
	if err != nil {
		cfg.Log.Fatal("Invalid correlation seal key", "error", err)
	}
	display := client.NewDisplayClient(cfg.DisplayBaseURL, seal, cfg.Log)

	periodRepo := catalogrepo.NewMongoPeriodRepository(cfg)
	bossRepo := catalogrepo.NewMongoBossRepository(cfg)
	healthRepo := catalogrepo.NewMongoHealthRepository(cfg)
	catalog := catalogservice.NewCatalogService(periodRepo, bossRepo, healthRepo, cfg)

	encounterRepo := repository.NewMongoEncounterRepository(cfg)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	recordRepo := repository.NewMongoAttackRecordRepository(cfg)

	bookingValidator := validator.NewBookingValidator(cfg, cfg.Log)

	bookingService := service.NewBookingService(
		bookingRepo,
		encounterRepo,
		recordRepo,
		catalog,
		bookingValidator,
		publisher,
		cfg,
	)
	settlementService := service.NewSettlementService(
		encounterRepo,
		bookingRepo,
		recordRepo,
		catalog,
		display,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Raids services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, settlementService
}

// initPublisher wires the Kafka event publisher when brokers are
// configured, falling back to a no-op so the engine runs without Kafka.
func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, battle events disabled")
		return events.NopPublisher{}, func() {}
	}

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, events.Topic, events.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Kafka event publisher initialized", "topic", events.Topic)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
