package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/paywatch/paywatch-backend/internal/config"
	"github.com/paywatch/paywatch-backend/internal/feed"
	"github.com/paywatch/paywatch-backend/internal/handler"
	"github.com/paywatch/paywatch-backend/internal/repository/postgres"
	"github.com/paywatch/paywatch-backend/internal/service"
	"github.com/paywatch/paywatch-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	obligationRepo := postgres.NewObligationRepository(pool)

	// Initialize WebSocket hub for settlement events
	hub := websocket.NewHub()

	// Initialize feed client
	feedClient := feed.NewClient(feed.ClientConfig{
		BaseURL:        cfg.Feed.BaseURL,
		Address:        cfg.Feed.WatchAddress,
		PageSize:       cfg.Feed.PageSize,
		PageDelay:      cfg.Feed.PageDelay,
		RequestTimeout: cfg.Feed.RequestTimeout,
		Logger:         log.Logger,
	})

	// Initialize services
	userService := service.NewUserService(userRepo)
	obligationService := service.NewObligationService(obligationRepo, userRepo)
	obligationService.SetEventPublisher(hub)
	settlementService := service.NewSettlementService(obligationRepo, log.Logger)
	settlementService.SetEventPublisher(hub)

	filter := service.NewTransferFilter(cfg.Feed.WatchAddress, cfg.Feed.TokenSymbol)
	matcher := service.NewMatcher(cfg.Reconcile.MatchTolerance)
	reconcileService := service.NewReconcileService(obligationRepo, settlementService, feedClient, filter, matcher, log.Logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	obligationHandler := handler.NewObligationHandler(obligationService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, userHandler, obligationHandler, wsHandler)

	// Start reconcile worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	worker := service.NewReconcileWorker(reconcileService, log.Logger, service.ReconcileWorkerConfig{
		IdleInterval: cfg.Reconcile.IdleInterval,
	})
	worker.Start(workerCtx)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("address", cfg.Feed.WatchAddress).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	worker.Stop()
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
