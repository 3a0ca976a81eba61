// Package server contains HTTP and WebSocket handlers for the ledger's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	_ "onchat/docs" // swagger docs
	"onchat/internal/bootstrap"
	"onchat/internal/config"
	"onchat/internal/featureflags"
	"onchat/internal/middleware"
	"onchat/internal/models"
	"onchat/internal/notifications"
	"onchat/internal/payout"
	"onchat/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	flags          *featureflags.Manager
	channels       *service.ChannelService
	messages       *service.MessageService
	moderation     *service.ModerationService
	treasury       *service.TreasuryService
	events         *service.EventService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Runtime bootstrap: database, Redis (nil client is fine, the event
	// hub degrades to single-instance local delivery), ledger state, and
	// optional built-in channels.
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		SeedBuiltIns: cfg.SeedBuiltinChannels,
	})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("onchat-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		flags:          featureflags.NewManager(cfg.FeatureFlags),
	}

	// The hub always exists; the notifier inside it is a no-op when Redis
	// is unavailable, so events still reach local WebSocket clients.
	server.notifier = notifications.NewNotifier(redisClient)
	server.hub = notifications.NewHub(server.notifier)

	// The recording transferer writes payout audit rows inside the caller's
	// transaction. Deployments fronting real value swap in their own.
	transferer := payout.NewRecorder()

	server.channels = service.NewChannelService(db, transferer, server.hub)
	server.messages = service.NewMessageService(db, transferer, server.hub)
	server.moderation = service.NewModerationService(db, server.hub)
	server.treasury = service.NewTreasuryService(db, transferer, server.hub)
	server.events = service.NewEventService(db)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and sender address
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version, " + middleware.HeaderAddress + ", " + middleware.HeaderSignature + ", " + middleware.HeaderTimestamp,
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Onchat Ledger Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Protocol-wide reads
	api.Get("/ledger", s.GetLedgerInfo)
	api.Get("/fees/quote", s.QuoteMessageFee)
	api.Get("/payouts", s.GetPayouts)
	api.Get("/events", s.GetEvents)
	api.Get("/flags", s.GetFeatureFlags)

	// Public channel reads.
	// Define specific /:slugHash/:resource routes BEFORE the generic
	// /:slugHash detail route.
	channels := api.Group("/channels")
	channels.Get("/", s.GetLatestChannels)
	channels.Get("/:slugHash/messages/range", s.GetMessagesRange)
	channels.Get("/:slugHash/messages", s.GetLatestMessages)
	channels.Get("/:slugHash/members/:user", s.GetMemberStatus)
	channels.Get("/:slugHash/members", s.GetChannelMembers)
	channels.Get("/:slugHash/moderators/:user", s.GetModeratorStatus)
	channels.Get("/:slugHash/moderators", s.GetChannelModerators)
	channels.Get("/:slugHash/bans/:user", s.GetBanStatus)
	channels.Get("/:slugHash/bans", s.GetBannedUsers)
	channels.Get("/:slugHash", s.GetChannel)

	// Public per-user reads
	users := api.Group("/users")
	users.Get("/:address/channels", s.GetUserChannels)
	users.Get("/:address/balance", s.GetOwnerBalance)

	// Writes require a wallet signature
	signed := api.Group("", middleware.SignatureRequired)

	signedChannels := signed.Group("/channels")
	signedChannels.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "create_channel"), s.CreateChannel)
	signedChannels.Post("/:slugHash/join", s.JoinChannel)
	signedChannels.Post("/:slugHash/leave", s.LeaveChannel)
	signedChannels.Post("/:slugHash/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	signedChannels.Post("/:slugHash/messages/:index/hide", s.HideMessage)
	signedChannels.Post("/:slugHash/messages/:index/unhide", s.UnhideMessage)
	signedChannels.Post("/:slugHash/bans", s.BanUser)
	signedChannels.Delete("/:slugHash/bans/:user", s.UnbanUser)
	signedChannels.Post("/:slugHash/moderators", s.AddModerator)
	signedChannels.Delete("/:slugHash/moderators/:user", s.RemoveModerator)

	claims := signed.Group("/claims")
	claims.Post("/owner", s.ClaimOwnerBalance)
	claims.Post("/treasury", s.ClaimTreasuryBalance)

	admin := signed.Group("/admin")
	admin.Put("/treasury-wallet", s.SetTreasuryWallet)
	admin.Put("/channel-creation-fee", s.SetChannelCreationFee)
	admin.Put("/message-fee-base", s.SetMessageFeeBase)
	admin.Put("/message-fee-per-byte", s.SetMessageFeePerByte)
	admin.Put("/owner", s.TransferAdmin)

	// Live event stream. Reads are public, so no signature gate here.
	ws := api.Group("/ws")
	ws.Get("/events", s.WebSocketEventsHandler())
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The database is required;
// Redis only widens event delivery across instances, so losing it degrades
// rather than fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Onchat",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Onchat Ledger API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber so events published by any
	// instance reach this instance's WebSocket clients.
	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
