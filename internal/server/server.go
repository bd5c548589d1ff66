// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sapp/internal/bootstrap"
	"sapp/internal/config"
	"sapp/internal/middleware"
	"sapp/internal/models"
	"sapp/internal/repository"
	"sapp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
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
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	postService    *service.PostService
	commentService *service.CommentService
	pathService    *service.LearningPathService
	messageService *service.MessageService
}

// NewServer connects to the database and Redis and wires every dependency.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
// redisClient may be nil, in which case rate limiting fails open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}
	middleware.InitMiddleware(cfg)

	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	contentRepo := repository.NewLearningPathContentRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("sapp-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		postService:    service.NewPostService(tx, postRepo, userRepo),
		commentService: service.NewCommentService(tx, commentRepo, postRepo, userRepo),
		pathService:    service.NewLearningPathService(tx, pathRepo, contentRepo, userRepo),
		messageService: service.NewMessageService(tx, messageRepo, userRepo),
	}, nil
}

// NewApp builds the Fiber app with the server's error handler, middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "sapp API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagate request, trace and user ids into the request context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// Structured logging runs after requestid and context middleware
	app.Use(middleware.StructuredLogger())
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
	auth := middleware.AuthRequired(s.userRepo.GetByID)
	writeLimit := s.writeLimiter()

	// Define specific /:id/:resource routes BEFORE generic /:id routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:id/comments/count", s.GetCommentsCount)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", auth, writeLimit("create_post"), s.CreatePost)
	posts.Post("/:id/comments", auth, writeLimit("create_comment"), s.CreateComment)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Delete("/:id/like", auth, s.UnlikePost)
	posts.Delete("/:id", auth, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/:commentId", s.GetComment)
	comments.Put("/:commentId", auth, s.UpdateComment)
	comments.Delete("/:commentId", auth, s.DeleteComment)

	users := api.Group("/users")
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/learning-paths", s.GetUserLearningPaths)

	paths := api.Group("/learning-paths")
	paths.Get("/:id/completion", s.GetLearningPathCompletion)
	paths.Get("/:id", s.GetLearningPath)
	paths.Post("/", auth, writeLimit("create_learning_path"), s.CreateLearningPath)
	paths.Post("/:id/contents", auth, s.AddLearningPathContent)
	paths.Put("/:id", auth, s.UpdateLearningPath)
	paths.Delete("/:id", auth, s.DeleteLearningPath)

	contents := api.Group("/learning-path-contents")
	contents.Patch("/completion", auth, s.BatchUpdateContentCompletion)
	contents.Patch("/:contentId/completion", auth, s.UpdateContentCompletion)
	contents.Delete("/:contentId", auth, s.DeleteLearningPathContent)

	messages := api.Group("/messages", auth)
	messages.Post("/", writeLimit("send_message"), s.SendMessage)
	messages.Get("/:userId", s.GetConversation)
}

// writeLimiter returns a per-route Redis rate limiter factory. A zero limit disables it.
func (s *Server) writeLimiter() func(name string) fiber.Handler {
	return func(name string) fiber.Handler {
		if s.config.RateLimitPerMinute <= 0 {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return middleware.RateLimit(s.redis, s.config.RateLimitPerMinute, time.Minute, name)
	}
}

// LivenessCheck reports that the process is up without touching dependencies.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: a missing
// client is reported but does not make the service unready.
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
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	if err := s.app.Listen(":" + s.config.Port); err != nil {
		return fmt.Errorf("listen on :%s: %w", s.config.Port, err)
	}
	return nil
}

// Shutdown stops the HTTP server and closes the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.InfoContext(ctx, "server shutdown complete")
	return errors.Join(errs...)
}
