package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"kusina-service/internal/api"
	"kusina-service/internal/auth"
	"kusina-service/internal/config"
	"kusina-service/internal/consumer"
	"kusina-service/internal/notify"
	"kusina-service/internal/repository"
	"kusina-service/internal/service"
	"kusina-service/migrations"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := repository.Connect(ctx, repository.ConnectOptions{
		URI:                    cfg.Mongo.URI,
		MaxPoolSize:            cfg.Mongo.MaxPoolSize,
		ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
		SocketTimeout:          cfg.Mongo.SocketTimeout,
		Retries:                cfg.Mongo.ConnectRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	db := client.Database(cfg.Mongo.Database)

	if err := migrations.EnsureIndexes(ctx, db, 3); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msgf("Redis at %s is not reachable", cfg.Redis.Addr)
	}

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	settingsService := service.NewSettingsService(settingsRepo)
	mailer := notify.NewMailer(cfg.SMTP, settingsService)

	// With Kafka the order service only publishes; the consumer sends mail.
	var (
		notifier    service.Notifier = mailer
		kafkaWriter *kafka.Writer
		kafkaReader *kafka.Reader
		consumers   sync.WaitGroup
	)
	if cfg.Kafka.Enabled() {
		kafkaWriter = config.NewKafkaWriter(cfg.Kafka)
		kafkaReader = config.NewKafkaReader(cfg.Kafka)
		notifier = notify.NewPublisher(kafkaWriter)

		c := consumer.NewConsumer(kafkaReader, mailer)
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			c.Run(ctx)
		}()
		log.Info().Msgf("Publishing order events to %s", cfg.Kafka.Topic)
	}

	userService := service.NewUserService(userRepo, auth.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}
	if cfg.App.SeedMenu {
		if _, err := migrations.SeedMenu(ctx, productRepo, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed menu")
		}
	}

	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, notifier, rdb, cfg.Redis.IdempotencyTTL, service.GCashAccount{
		Number: cfg.GCash.AccountNumber,
		Name:   cfg.GCash.AccountName,
	})
	productService := service.NewProductService(productRepo, rdb, cfg.Redis.MenuCacheTTL)
	customerService := service.NewCustomerService(userRepo, orderRepo)

	e := api.NewServer(api.ServerOptions{
		Name:      cfg.App.Name,
		JWTSecret: cfg.Auth.JWTSecret,
		RateLimit: cfg.RateLimit,
	}, api.Handlers{
		Orders:    api.NewOrderHandler(orderService),
		Products:  api.NewProductHandler(productService),
		Users:     api.NewUserHandler(userService),
		Customers: api.NewCustomerHandler(customerService),
		Settings:  api.NewSettingsHandler(settingsService),
	})
	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		log.Info().Msgf("Listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}
	consumers.Wait()
	if kafkaReader != nil {
		if err := kafkaReader.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka reader")
		}
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka writer")
		}
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis client")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error disconnecting from MongoDB")
	}
}
