// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/config"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager
	services       *service.Services
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
}

// NewServerWithDeps creates a Server from dependencies established by the
// bootstrap layer (or a test). redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires config and database")
	}
	middleware.InitMiddleware(cfg)

	shutdownCtx, shutdownFn := context.WithCancel(context.Background())
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
		notifier:       notifications.NewNotifier(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		shutdownCtx:    shutdownCtx,
		shutdownFn:     shutdownFn,
	}
	server.services = service.New(db, service.Options{
		BcryptCost:        cfg.BcryptCost,
		AdminEmailDomain:  cfg.AdminEmailDomain,
		UsernameCacheSize: cfg.UsernameCacheSize,
		Events:            server.notifier,
		Flags:             server.featureFlags,
	})

	return server, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "agora-api",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(models.ErrorResponse{Error: e.Message})
			}
			return models.RespondWithError(c, models.StatusFor(err), err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	api.Get("/features", middleware.OptionalAuth, s.GetFeatureFlags)

	// Define specific routes BEFORE generic /:id routes
	communities := api.Group("/communities")
	communities.Get("/", middleware.OptionalAuth, s.ListCommunities)
	communities.Get("/search", middleware.OptionalAuth, s.SearchCommunities)
	communities.Get("/user/:userId", middleware.OptionalAuth, s.GetUserCommunities)
	communities.Post("/", middleware.AuthRequired, s.CreateCommunity)
	communities.Post("/:id/join", middleware.AuthRequired, s.JoinCommunity)
	communities.Post("/:id/leave", middleware.AuthRequired, s.LeaveCommunity)
	communities.Get("/:id/member-status", middleware.AuthRequired, s.GetMemberStatus)
	communities.Get("/:id", middleware.OptionalAuth, s.GetCommunity)
	communities.Put("/:id", middleware.AuthRequired, s.UpdateCommunity)
	communities.Delete("/:id", middleware.AuthRequired, s.DeleteCommunity)

	discussions := api.Group("/discussions")
	discussions.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 5, time.Minute, "create_discussion"), s.CreateDiscussion)
	discussions.Get("/trending", middleware.OptionalAuth, s.GetTrendingDiscussions)
	discussions.Get("/search", middleware.OptionalAuth,
		middleware.RateLimit(s.redis, 20, time.Minute, "search"), s.SearchDiscussions)
	discussions.Get("/community/:communityId", middleware.OptionalAuth, s.GetCommunityDiscussions)
	discussions.Get("/user/:userId", middleware.OptionalAuth, s.GetUserDiscussions)
	discussions.Post("/:id/like", middleware.AuthRequired, s.LikeDiscussion)
	discussions.Post("/:id/unlike", middleware.AuthRequired, s.UnlikeDiscussion)
	discussions.Get("/:id/liked", middleware.AuthRequired, s.HasLikedDiscussion)
	discussions.Get("/:id/comments", middleware.OptionalAuth, s.GetComments)
	discussions.Get("/:id", middleware.OptionalAuth, s.GetDiscussion)
	discussions.Put("/:id", middleware.AuthRequired, s.UpdateDiscussion)
	discussions.Delete("/:id", middleware.AuthRequired, s.DeleteDiscussion)

	comments := api.Group("/comments", middleware.AuthRequired)
	comments.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Post("/:id/like", s.LikeComment)
	comments.Post("/:id/unlike", s.UnlikeComment)
	comments.Get("/:id/liked", s.HasLikedComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	goals := api.Group("/goals", middleware.AuthRequired)
	goals.Get("/", s.ListGoals)
	goals.Post("/", s.CreateGoal)
	goals.Get("/:id", s.GetGoal)
	goals.Put("/:id", s.UpdateGoal)
	goals.Delete("/:id", s.DeleteGoal)
	goals.Patch("/:id/progress", middleware.RateLimit(s.redis, 60, time.Minute, "goal_progress"), s.UpdateGoalProgress)

	ws := api.Group("/ws", middleware.WebSocketAuthRequired)
	ws.Get("/discussions/:id", s.DiscussionFeedUpgrade, s.DiscussionFeedHandler())

	admin := api.Group("/admin", middleware.AuthRequired, s.AdminRequired())
	admin.Post("/users", s.AdminCreateUser)
	admin.Delete("/users/:id", s.AdminDeleteUser)
}

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	addr := ":" + s.config.Port
	middleware.Logger.Info("Server starting", slog.String("addr", addr))
	return app.Listen(addr)
}

// Shutdown stops accepting requests, closes open feeds and releases Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("fiber shutdown: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("redis close failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// LivenessCheck reports that the process is up
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis are reachable
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

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "ready"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "not_ready"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// AdminRequired rejects callers without the admin role.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		isAdmin, err := s.services.Users.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return s.respondError(c, err)
		}
		if !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewAccessDeniedError("Admin access required"))
		}
		return c.Next()
	}
}
