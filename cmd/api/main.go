package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	userrepo "storefront/internal/repository/user"
	authsvc "storefront/internal/service/auth"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("storefront-api", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("storefront-api", cfg.LogLevel)
	if err := cfg.RequireTokenSecret(); err != nil {
		logger.Fatal().Err(err).Msg("refusing to start without a token secret")
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	hasher, err := authsvc.NewHasher(cfg.PasswordScheme)
	if err != nil {
		logger.Fatal().Err(err).Msg("init password hasher")
	}
	tokens, err := authsvc.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init token manager")
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	authService := authsvc.New(userRepo, hasher, tokens, logger)
	productService := productsvc.New(productRepo)
	orderService := ordersvc.New(productRepo, orderRepo, publisher, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:     authService,
		ProductSvc:  productService,
		OrderSvc:    orderService,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}

// newPublisher connects to RabbitMQ when configured. Orders are still
// accepted without a broker; only the events are lost.
func newPublisher(cfg config.Config, logger zerolog.Logger) events.Publisher {
	if cfg.RabbitURL == "" {
		logger.Info().Msg("RABBIT_URL not set, order events disabled")
		return events.Noop{}
	}
	p, err := events.DialRabbit(cfg.RabbitURL, cfg.OrderEventsExchange, logger)
	if err != nil {
		logger.Error().Err(err).Msg("rabbit unavailable, order events disabled")
		return events.Noop{}
	}
	return p
}
