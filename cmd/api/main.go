package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"coleta-seletiva/internal/config"
	"coleta-seletiva/internal/handler"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service"
	"coleta-seletiva/internal/service/events"
	"coleta-seletiva/internal/service/photo"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.Environment, Level: cfg.LogLevel})
	if envErr != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx := context.Background()

	storage, err := config.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer storage.Close()

	cache := storage.Redis
	if cache == nil && cfg.RedisURL != "" {
		if client, err := config.NewRedisClient(ctx, cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, dashboard stats will not be cached")
		} else {
			cache = client
			defer client.Close()
		}
	}

	var photos photo.Storage = photo.NewLocalStorage(cfg.UploadDir)
	if cfg.PhotoStorage == config.PhotoMinIO {
		minioClient, err := config.NewMinIOClient(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MinIO")
		}
		photos = photo.NewMinIOStorage(minioClient, cfg.MinIOBucket)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		conn, ch, err := config.NewRabbitMQChannel(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to RabbitMQ, request events will not be published")
		} else {
			publisher = events.NewAMQPPublisher(conn, ch, cfg.AMQPExchange)
		}
	}
	defer publisher.Close()

	repos := repository.NewRepositories(storage.Backend, repository.Options{
		ChatMaxLength: cfg.ChatMaxLength,
		Locale:        cfg.Locale,
		Seed:          cfg.Seed,
		Now:           time.Now,
	})
	services := service.NewServices(repos, photos, publisher, cache, cfg, log)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    6 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	handler.SetupRoutes(app, handlers, services.Auth)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
