package main

import (
	bookingshandler "locomotion/internal/bookings/handler"
	"locomotion/internal/bookings/events"
	bookingsrepo "locomotion/internal/bookings/repository"
	bookingsservice "locomotion/internal/bookings/service"
	bookingsvalidator "locomotion/internal/bookings/validator"
	creatorshandler "locomotion/internal/creators/handler"
	creatorsrepo "locomotion/internal/creators/repository"
	creatorsservice "locomotion/internal/creators/service"
	creatorsvalidator "locomotion/internal/creators/validator"
	identityhandler "locomotion/internal/identity/handler"
	slotshandler "locomotion/internal/slots/handler"
	slotsrepo "locomotion/internal/slots/repository"
	slotsservice "locomotion/internal/slots/service"
	slotsvalidator "locomotion/internal/slots/validator"
	uploadshandler "locomotion/internal/uploads/handler"
	"locomotion/pkg/app"
	"locomotion/pkg/client"
	"locomotion/pkg/config"
	"locomotion/pkg/contracts"
	"locomotion/pkg/kafka"
)

const ServiceName = "marketplace"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Marketplace service")

	handlers := initHandlers(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	jwtSecret := []byte(cfg.JWTSecret)

	creatorRepo := creatorsrepo.NewMongoCreatorRepository(cfg)
	slotRepo := slotsrepo.NewMongoSlotRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewSlotLockRepository(cfg)

	slotService := slotsservice.NewSlotService(
		slotRepo,
		creatorRepo,
		slotsvalidator.NewSlotValidator(cfg.Log),
		cfg,
	)

	creatorService := creatorsservice.NewCreatorService(
		creatorRepo,
		slotService,
		bookingRepo,
		creatorsvalidator.NewCreatorValidator(cfg.Log),
		cfg,
	)

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		slotRepo,
		creatorRepo,
		initPublisher(cfg),
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	storageClient := client.NewHttpClient(cfg.StorageBaseURL)

	cfg.Log.Info("Marketplace services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		creatorshandler.NewCreatorHandler(creatorService, cfg.Log, jwtSecret),
		slotshandler.NewSlotHandler(slotService, cfg.Log, jwtSecret),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log, jwtSecret),
		uploadshandler.NewUploadHandler(storageClient, cfg, cfg.Log),
		identityhandler.NewIdentityHandler(cfg.Log, jwtSecret),
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafka.Load(), cfg.BookingEventTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka booking event publisher initialized", "topic", cfg.BookingEventTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
