package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/callbook-service/internal/api/http"
	"github.com/spec-kit/callbook-service/internal/api/http/handlers"
	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/config"
	"github.com/spec-kit/callbook-service/internal/observability"
	"github.com/spec-kit/callbook-service/internal/persistence"
	"github.com/spec-kit/callbook-service/internal/repository"
	"github.com/spec-kit/callbook-service/internal/service"
	"github.com/spec-kit/callbook-service/internal/telephony"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	callRepo := repository.NewCallRepository(pool)

	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.PhoneNumber == "" {
		logger.Warn("twilio credentials incomplete; call endpoints will fail upstream")
	}

	authService := service.NewAuthService(userRepo, cfg.Auth.BcryptCost)
	contactService := service.NewContactService(contactRepo)
	callService := service.NewCallService(service.CallDependencies{
		CallRepo: callRepo,
		Provider: telephony.NewTwilioClient(cfg.Twilio),
		Logger:   logger,
		Metrics:  metrics,
	})

	sessions := auth.NewAuthenticator(
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		userRepo,
		auth.NewUserCache(redis.Client, cfg.Redis.UserCacheTTL()),
		cfg.Cookie,
		logger,
	)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:              logger,
		Metrics:             metrics,
		Timeout:             cfg.App.RequestTimeout(),
		CookieEncryptionKey: cfg.Cookie.EncryptionKey,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:     handlers.NewAuthHandler(authService, sessions),
		Contacts: handlers.NewContactsHandler(contactService),
		Calls:    handlers.NewCallsHandler(callService),
		Sessions: sessions,
		Metrics:  metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
