// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"basspress/internal/auth"
	"basspress/internal/cache"
	"basspress/internal/config"
	"basspress/internal/database"
	"basspress/internal/featureflags"
	"basspress/internal/middleware"
	"basspress/internal/models"
	"basspress/internal/notifications"
	"basspress/internal/repository"
	"basspress/internal/service"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	commentRepo  repository.CommentRepository

	notifier     *notifications.Notifier
	featureFlags *featureflags.Manager
	issuer       *auth.TokenIssuer

	authService     *service.AuthService
	userService     *service.UserService
	articleService  *service.ArticleService
	categoryService *service.CategoryService
	commentService  *service.CommentService
	adminService    *service.AdminService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	prom := middleware.InitMetrics("basspress-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		articleRepo:    articleRepo,
		categoryRepo:   categoryRepo,
		commentRepo:    commentRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		issuer: auth.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshSecret,
			time.Duration(cfg.JWTExpireHours)*time.Hour),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.authService = service.NewAuthService(userRepo, server.issuer, cfg.BcryptRounds)
	server.userService = service.NewUserService(userRepo)
	server.articleService = service.NewArticleService(articleRepo, categoryRepo, server.notifier, server.featureFlags)
	server.categoryService = service.NewCategoryService(categoryRepo)
	server.commentService = service.NewCommentService(commentRepo, articleRepo, server.notifier, server.featureFlags)
	server.adminService = service.NewAdminService(userRepo, articleRepo, commentRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Basspress Metrics Dashboard",
	}))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/refresh", s.RefreshTokens)
	authGroup.Post("/logout", s.AuthRequired(), s.Logout)
	authGroup.Post("/logout-all", s.AuthRequired(), s.LogoutAll)
	authGroup.Post("/change-password", s.AuthRequired(), s.ChangePassword)
	authGroup.Get("/me", s.AuthRequired(), s.Me)

	// Public article routes
	publicArticles := api.Group("/articles")
	publicArticles.Get("/", s.ListArticles)
	publicArticles.Get("/trending", s.TrendingArticles)
	publicArticles.Get("/recent", s.RecentArticles)
	// Specific /:slug/:resource routes BEFORE generic /:slug route
	publicArticles.Get("/:id/comments", s.GetArticleComments)
	// Optional auth so staff and authors can read their own drafts.
	publicArticles.Get("/:slug", s.OptionalAuth(), s.GetArticle)

	// Public category routes
	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Get("/tree", s.GetCategoryTree)
	categories.Get("/stats", s.GetCategoryStats)
	categories.Get("/:slug", s.GetCategory)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.RoleRequired(models.RoleAdmin), s.ListUsers)
	users.Put("/:id/active", s.RoleRequired(models.RoleModerator), s.SetUserActive)
	users.Get("/:username", s.GetUserProfile)

	// Author article routes
	articles := protected.Group("/articles", s.RoleRequired(models.RoleAuthor))
	articles.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_article"), s.CreateArticle)
	articles.Post("/:id/submit", s.SubmitArticle)
	articles.Post("/:id/publish", s.PublishArticle)
	articles.Post("/:id/archive", s.RoleRequired(models.RoleModerator), s.ArchiveArticle)
	articles.Put("/:id", s.UpdateArticle)
	articles.Delete("/:id", s.DeleteArticle)

	// Reader interactions with articles
	reactions := protected.Group("/articles")
	reactions.Post("/:id/rate", s.RateArticle)
	reactions.Post("/:id/like", s.LikeArticle)
	reactions.Delete("/:id/like", s.UnlikeArticle)
	reactions.Post("/:id/share", s.ShareArticle)

	// Comment routes
	comments := protected.Group("/comments")
	protected.Post("/articles/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
	comments.Post("/:id/like", s.LikeComment)
	comments.Post("/:id/dislike", s.DislikeComment)

	// Moderation routes
	mod := protected.Group("/moderation", s.RoleRequired(models.RoleModerator))
	mod.Get("/queue", s.GetModerationQueue)
	mod.Get("/stats", s.GetModerationStats)
	mod.Post("/comments/:id", s.ModerateComment)

	// Category management: moderators curate, only admins delete.
	modCategories := protected.Group("/categories", s.RoleRequired(models.RoleModerator))
	modCategories.Post("/", s.CreateCategory)
	modCategories.Put("/:id", s.UpdateCategory)

	// Admin routes
	admin := protected.Group("/admin", s.RoleRequired(models.RoleAdmin))
	admin.Get("/stats", s.GetAdminStats)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Put("/users/:id/role", s.SetUserRole)
	admin.Put("/articles/:id/status", s.ForceArticleStatus)
	admin.Post("/comments/bulk", s.BulkModerateComments)
	admin.Delete("/categories/:id", s.DeleteCategory)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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
		// Redis is optional: caching and notifications degrade gracefully.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
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
		AppName: "Basspress API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

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
