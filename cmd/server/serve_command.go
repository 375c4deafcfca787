package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"streamflix-api/internal/api"
	"streamflix-api/internal/config"
	"streamflix-api/internal/database"
	"streamflix-api/internal/services"
	"streamflix-api/pkg/logging"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.InitDatabase(cfg); err != nil {
		return err
	}
	defer database.CloseDatabase()

	db := database.GetDB()
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	mailer := newMailer(cfg)
	resetTokens, limiter, closeLimiter := newTokenStores(cfg)
	defer closeLimiter()

	authCfg := cfg.Auth()
	tokens := services.NewTokenService(authCfg.JWTSecret, time.Duration(authCfg.JWTExpiresHours)*time.Hour)
	invitations := services.NewInvitationService(db, mailer, cfg.Settlement(), cfg.FrontendURL)
	profiles := services.NewProfileService(db)

	handler := &api.Handler{
		Auth:          services.NewAuthService(db, invitations, tokens, resetTokens, limiter, mailer, authCfg),
		Subscriptions: services.NewSubscriptionService(db, invitations, publisher, cfg.Settlement()),
		Invitations:   invitations,
		Profiles:      profiles,
		Catalog:       services.NewCatalogService(db, profiles),
		Watchlist:     services.NewWatchlistService(db, profiles),
		History:       services.NewHistoryService(db, profiles),
		Tokens:        tokens,
		FrontendURL:   cfg.FrontendURL,
	}

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	r := gin.Default()
	api.SetupRoutes(r, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Infof("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to RabbitMQ when configured; events are dropped otherwise
func newPublisher(cfg *config.Config) (services.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		logging.Infof("RABBITMQ_URL not set, domain events are not published")
		return services.NoopPublisher{}, func() {}
	}

	publisher, err := services.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	if err != nil {
		logging.Errorf("Failed to connect to RabbitMQ, domain events are not published: %v", err)
		return services.NoopPublisher{}, func() {}
	}

	logging.Infof("Publishing domain events to exchange %s", cfg.EventsExchange)
	return publisher, publisher.Close
}

func newMailer(cfg *config.Config) services.Mailer {
	if cfg.BrevoAPIKey == "" {
		logging.Warnf("BREVO_API_KEY not set, emails are logged instead of sent")
		return services.LogMailer{}
	}
	return services.NewBrevoService(cfg.BrevoAPIKey, cfg.BrevoFromEmail, cfg.BrevoFromName)
}

// newTokenStores prefers Redis and falls back to the database and process memory
func newTokenStores(cfg *config.Config) (services.ResetTokenStore, services.RateLimiter, func()) {
	if client := database.GetRedis(); client != nil {
		redisService := services.NewRedisService(client)
		return redisService, redisService, func() {}
	}

	limiter := services.NewMemoryRateLimiter()
	return services.NewDBResetTokenStore(database.GetDB()), limiter, limiter.Stop
}
