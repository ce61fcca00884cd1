package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"towerdeck/internal/config"
	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	"towerdeck/internal/handler"
	"towerdeck/internal/proxy"
	"towerdeck/internal/repository"
	"towerdeck/internal/server"
	"towerdeck/internal/services"
	"towerdeck/internal/stream"
	"towerdeck/pkg/database"
	"towerdeck/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := db.AutoMigrate(&aircraft.Aircraft{}, &event.Event{}); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	if err := database.ApplyRawMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	bus := events.NewRedisBus(redisClient, l)
	defer bus.Close()

	aircraftRepo := repository.NewAircraftRepository(db)
	eventRepo := repository.NewEventRepository(db)

	aircraftService := services.NewAircraftService(db, aircraftRepo, eventRepo, bus, l)
	eventService := services.NewEventService(eventRepo, bus, l)

	gateway := stream.NewGateway(eventRepo, bus, l)
	defer gateway.Stop()

	brainClient := proxy.NewBrainClient(cfg.Brain)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Aircraft: handler.NewAircraftHandler(aircraftService, l),
		Event:    handler.NewEventHandler(eventService, l),
		Health:   handler.NewHealthHandler(db, bus),
		Brain:    handler.NewBrainHandler(brainClient, l),
		Stream:   gateway,
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
