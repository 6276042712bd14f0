package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkgate/backend/libs/db"
	libredis "parkgate/backend/libs/redis"
	"parkgate/backend/services/parking-service/internal/config"
	httpserver "parkgate/backend/services/parking-service/internal/http"
	"parkgate/backend/services/parking-service/internal/http/handlers"
	"parkgate/backend/services/parking-service/internal/http/middleware"
	redisstore "parkgate/backend/services/parking-service/internal/redis"
	"parkgate/backend/services/parking-service/internal/repository"
	"parkgate/backend/services/parking-service/internal/service"
	"parkgate/backend/services/parking-service/internal/ws"
)

const wsWriteTimeout = 10 * time.Second

// App wires parking-service dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	clock := service.SystemClock()
	hub := ws.NewHub(30*time.Second, logger)

	sessionRepo := repository.NewSessionRepository(sqlDB, logger)
	rateRepo := repository.NewRateRepository(sqlDB, logger)
	paymentRepo := repository.NewPaymentRepository(sqlDB, logger)
	activeStore := redisstore.NewStore(redisClient, cfg.ActiveSessionTTL())

	sessionsService := service.NewSessionsService(sessionRepo, activeStore, hub, clock, logger)
	rateService := service.NewRateService(rateRepo, logger)
	checkoutService := service.NewCheckoutService(sessionsService, rateService, paymentRepo, clock, logger)
	summaryService := service.NewSummaryService(paymentRepo, logger)

	entriesHandler := handlers.NewEntriesHandler(sessionsService, logger)
	exitHandler := handlers.NewExitHandler(checkoutService, logger)
	rateHandler := handlers.NewRateHandler(rateService, logger)
	summaryHandler := handlers.NewSummaryHandler(summaryService, clock, logger)
	wsServer := ws.NewServer(hub, wsWriteTimeout, logger)

	routes := httpserver.Routes{
		OpenEntry:     entriesHandler.HandleOpen,
		ActiveEntries: entriesHandler.HandleActive,
		PreviewExit:   exitHandler.HandlePreview,
		SettleExit:    exitHandler.HandleSettle,
		GetRate:       rateHandler.HandleGet,
		SetRate:       rateHandler.HandleSet,
		DailySummary:  summaryHandler.HandleDaily,
		Updates:       wsServer.HandleWS,
		Health:        handlers.NewHealthHandler(),
	}
	if cfg.Auth.JWTSecret != "" {
		routes.AuthMiddleware = middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	} else {
		logger.Warn("jwt secret not configured, api runs unauthenticated")
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the websocket hub and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
