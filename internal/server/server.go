// Package server contains the HTTP handlers for the recipe API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "recipehub/docs" // swagger docs
	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/events"
	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/service"
	"recipehub/internal/storage"

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

// Deps are the already-initialized backends the server runs on.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	// Store holds image bytes. A nil Store falls back to process memory.
	Store storage.ObjectStore
	// Publisher receives domain events. A nil Publisher drops them.
	Publisher events.Publisher
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Auth
	publisher      events.Publisher

	userService      *service.UserService
	postService      *service.PostService
	ratingService    *service.RatingService
	followService    *service.FollowService
	feedService      *service.FeedService
	discoveryService *service.DiscoveryService
	commentService   *service.CommentService
	imageService     *service.ImageService
}

// NewServer wires repositories and services over deps.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server requires a database")
	}
	store := deps.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	c := cache.New(deps.Redis)
	userRepo := repository.NewUserRepository(deps.DB, c)
	postRepo := repository.NewPostRepository(deps.DB)
	ratingRepo := repository.NewRatingRepository(deps.DB)
	followRepo := repository.NewFollowRepository(deps.DB)
	commentRepo := repository.NewCommentRepository(deps.DB)
	imageRepo := repository.NewImageRepository(deps.DB)

	auth := middleware.NewAuth(cfg.JWTSecret, 24*time.Hour)
	locks := service.NewKeyedLock()

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics("recipehub-api"),
		auth:           auth,
		publisher:      publisher,
	}
	s.discoveryService = service.NewDiscoveryService(postRepo, ratingRepo, c, cfg.DiscoverCacheTTL())
	s.imageService = service.NewImageService(imageRepo, postRepo, userRepo, store, cfg.ImagePublicBaseURL(), cfg.ImageMaxUploadMB)
	s.userService = service.NewUserService(userRepo, followRepo, s.imageService, auth, s.discoveryService)
	s.postService = service.NewPostService(postRepo, userRepo, s.imageService, publisher, s.discoveryService)
	s.ratingService = service.NewRatingService(ratingRepo, postRepo, locks, publisher, s.discoveryService)
	s.followService = service.NewFollowService(followRepo, userRepo, locks, publisher)
	s.feedService = service.NewFeedService(userRepo, followRepo, postRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)

	return s, nil
}

// App returns the fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Recipe Hub API",
		BodyLimit:    (s.maxUploadMB() + 1) * 1024 * 1024 * 4 / 3,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) maxUploadMB() int {
	if s.config.ImageMaxUploadMB > 0 {
		return s.config.ImageMaxUploadMB
	}
	return service.DefaultImageMaxUploadSizeMB
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
		err = models.NewInternalError(err)
	}
	return models.RespondWithAppError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	if s.config.Env != "test" {
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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	authRequired := s.auth.Required()

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Delete("/me", authRequired, s.DeleteMyAccount)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Post("/:id/follow", authRequired, middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.FollowUser)
	users.Get("/:id/follow", authRequired, s.GetFollowStatus)
	users.Post("/:id/unfollow", authRequired, s.UnfollowUser)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", authRequired, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/ratings", s.GetRatings)
	posts.Put("/:id/ratings", authRequired, middleware.RateLimit(s.redis, 60, time.Minute, "rate"), s.RatePost)
	posts.Delete("/:id/ratings/:kind", authRequired, s.ClearRating)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authRequired, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id/comments/:commentId", authRequired, s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	api.Get("/feed", authRequired, s.GetFeed)
	api.Get("/discover", s.Discover)

	images := api.Group("/images")
	images.Post("/", authRequired, middleware.RateLimit(s.redis, 20, 5*time.Minute, "upload_image"), s.UploadImage)
	images.Get("/:id", s.GetImage)
	images.Delete("/:id", authRequired, s.DeleteImage)
}

// LivenessCheck handles GET /health/live
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database health. Redis is optional and never fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
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

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	if err := app.Listen(":" + s.config.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	s.publisher.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
