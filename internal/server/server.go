// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"threadloom/internal/cache"
	"threadloom/internal/cascade"
	"threadloom/internal/config"
	"threadloom/internal/database"
	"threadloom/internal/middleware"
	"threadloom/internal/refs"
	"threadloom/internal/service"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	users       store.UserStore
	communities store.CommunityStore
	messages    store.MessageStore

	messageService   *service.MessageService
	userService      *service.UserService
	communityService *service.CommunityService
}

// NewServer creates a server instance, establishing its own database and
// Redis connections.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Use this in tests or when a bootstrap layer establishes
// DB/Redis and optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	users := store.NewUserStore(db)
	communities := store.NewCommunityStore(db)
	messages := store.NewMessageStore(db)

	resolver := tree.NewResolver(users, communities, messages)
	maintainer := refs.NewMaintainer(users, communities, messages)
	engine := cascade.NewEngine(messages, resolver, maintainer)

	var revalidator service.Revalidator = service.NoopRevalidator{}
	if redisClient != nil {
		revalidator = cache.PathRevalidator{}
	}

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("threadloom-api"),
		users:            users,
		communities:      communities,
		messages:         messages,
		messageService:   service.NewMessageService(db, messages, users, communities, resolver, engine, revalidator),
		userService:      service.NewUserService(users, messages, resolver, revalidator),
		communityService: service.NewCommunityService(communities, users, resolver, maintainer),
	}
	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Threadloom Metrics Dashboard",
	}))

	// Public browse routes
	publicMessages := api.Group("/messages")
	publicMessages.Get("/", s.GetFeed)
	publicMessages.Get("/:id", s.GetMessageTree)

	publicCommunities := api.Group("/communities")
	publicCommunities.Get("/", s.GetCommunities)
	publicCommunities.Get("/:id/messages", s.GetCommunityMessages)
	publicCommunities.Get("/:id", s.GetCommunity)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// Profile completion stays outside the onboarding gate.
	users := protected.Group("/users")
	users.Put("/me", s.SaveMyProfile)
	users.Get("/me", s.GetMyProfile)
	users.Get("/me/activity", s.GetMyActivity)
	users.Get("/", middleware.OnboardedRequired, s.GetUsers)
	// Specific /:id/:resource routes before the generic /:id route
	users.Get("/:id/messages", s.GetUserMessages)
	users.Get("/:id", s.GetUserProfile)

	// Writes require a completed profile.
	messages := protected.Group("/messages", middleware.OnboardedRequired)
	messages.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_message"), s.CreateMessage)
	messages.Post("/:id/replies", middleware.RateLimit(
		s.redis, 30, time.Minute, "create_reply"), s.CreateReply)
	messages.Delete("/:id", s.DeleteMessage)

	communities := protected.Group("/communities", middleware.OnboardedRequired)
	communities.Post("/", s.CreateCommunity)
	communities.Post("/:id/join", s.JoinCommunity)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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

	// Redis is optional; the API serves without a cache.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// currentUserID returns the authenticated external user id from locals.
func currentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}

// DB exposes the server's database handle for boot-time tasks such as
// seeding.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Shutdown releases the server's database and Redis connections. The HTTP
// app is owned and shut down by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
