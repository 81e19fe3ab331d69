// Package server contains the HTTP and WebSocket handlers of the discussion board API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

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
	userRepo       repository.UserRepository
	boardRepo      repository.BoardRepository
	commentRepo    repository.CommentRepository
	notifier       *notifications.Notifier
	boardHub       *notifications.BoardHub
	userService    *service.UserService
	boardService   *service.BoardService
	commentService *service.CommentService
	authService    *service.AuthService
	featureFlags   *featureflags.Manager
}

// NewServerWithDeps builds a Server on connections opened by the bootstrap package.
// redisClient may be nil: caching, token revocation and the live feed are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server requires a database")
	}

	blacklist := cache.NewTokenBlacklist(redisClient)
	middleware.InitMiddleware(cfg, blacklist)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
		userRepo:       repository.NewUserRepository(db),
		boardRepo:      repository.NewBoardRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	treeTTL := time.Duration(cfg.CommentTreeCacheSeconds) * time.Second
	if !server.featureFlags.Enabled(featureflags.CommentTreeCache, 0) {
		treeTTL = 0
	}
	server.userService = service.NewUserService(server.userRepo)
	server.boardService = service.NewBoardService(server.boardRepo, server.userRepo)
	server.commentService = service.NewCommentService(server.commentRepo, server.boardRepo, server.userRepo, treeTTL)
	server.authService = service.NewAuthService(server.userRepo, blacklist, cfg.JWTSecret,
		time.Duration(cfg.JWTTTLHours)*time.Hour)

	if redisClient != nil {
		server.boardHub = notifications.NewBoardHub()
	}

	return server, nil
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || middleware.RateLimitBypassed()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, 0, middleware.ErrRateLimitExceeded.New())
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Agora Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)
	auth.Get("/me", middleware.AuthRequired, s.Me)

	v1.Get("/feature-flags", middleware.AuthRequired, s.GetFeatureFlags)

	users := v1.Group("/users")
	users.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.CreateUser)
	users.Get("/", middleware.AuthRequired, s.ListUsers)
	users.Get("/:id", middleware.AuthRequired, s.GetUser)
	users.Patch("/:id", middleware.AuthRequired, s.UpdateUser)
	users.Post("/:id/password", middleware.AuthRequired, s.ChangePassword)
	users.Post("/:id/role", middleware.AuthRequired, s.ChangeRole)
	users.Post("/:id/status", middleware.AuthRequired, s.ChangeStatus)
	users.Delete("/:id", middleware.AuthRequired, s.DeleteUser)

	boards := v1.Group("/boards")
	boards.Get("/", s.ListBoards)
	boards.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchBoards)
	boards.Get("/author/:authorId", s.ListBoardsByAuthor)
	boards.Get("/:boardId/comments/count", s.CountComments)
	boards.Get("/:boardId/comments", s.GetCommentTree)
	boards.Post("/:boardId/comments", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	boards.Get("/:id", s.GetBoard)
	boards.Post("/", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, time.Minute, "create_board"), s.CreateBoard)
	boards.Patch("/:id", middleware.AuthRequired, s.UpdateBoard)
	boards.Delete("/:id", middleware.AuthRequired, s.DeleteBoard)
	boards.Post("/:id/view", s.IncreaseViewCount)
	boards.Post("/:id/restore", middleware.AuthRequired, s.RestoreBoard)

	comments := v1.Group("/comments", middleware.AuthRequired)
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
	comments.Post("/:id/like", s.LikeComment)
	comments.Delete("/:id/like", s.UnlikeComment)

	ws := api.Group("/ws", middleware.WebSocketAuthRequired)
	ws.Get("/boards/:id", s.upgradeBoardFeed, s.BoardFeedHandler())
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

// dependency is one thing ReadinessCheck pings. A failing optional dependency only
// degrades the service.
type dependency struct {
	name     string
	optional bool
	ping     func(context.Context) error
}

func (s *Server) dependencies() []dependency {
	deps := []dependency{{name: "database", ping: func(ctx context.Context) error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	redisDep := dependency{name: "redis", optional: true}
	if s.redis != nil {
		redisDep.ping = func(ctx context.Context) error { return s.redis.Ping(ctx).Err() }
	}
	return append(deps, redisDep)
}

// ReadinessCheck answers 503 only when a required dependency is down.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	overall, code := "healthy", fiber.StatusOK
	checks := fiber.Map{}
	for _, dep := range s.dependencies() {
		state := "healthy"
		switch {
		case dep.ping == nil:
			state = "unavailable"
		case dep.ping(ctx) != nil:
			state = "unhealthy"
		}
		checks[dep.name] = state
		if state == "healthy" {
			continue
		}
		if !dep.optional {
			overall, code = "unhealthy", fiber.StatusServiceUnavailable
		} else if overall == "healthy" {
			overall = "degraded"
		}
	}
	return c.Status(code).JSON(fiber.Map{"status": overall, "checks": checks, "time": time.Now()})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Unhandled request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, 0, appErr)
}

// App builds the fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Agora API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// StartWiring subscribes the board hub to comment events. It returns once the Redis
// subscription is confirmed, or immediately when there is no hub.
func (s *Server) StartWiring(ctx context.Context) {
	if s.boardHub == nil {
		return
	}
	if err := s.boardHub.StartWiring(ctx, s.notifier); err != nil {
		middleware.Logger.Error("Live comment feed unavailable", slog.String("error", err.Error()))
	}
}

// Start serves HTTP on the configured port until Shutdown.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	app := s.App()
	s.StartWiring(s.shutdownCtx)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, disconnects feed subscribers and closes the
// connections, in that order. Failures are logged and do not stop later steps.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"http", func() error {
			if s.app == nil {
				return nil
			}
			return s.app.ShutdownWithContext(ctx)
		}},
		{"board feed", func() error {
			if s.boardHub == nil {
				return nil
			}
			return s.boardHub.Shutdown(ctx)
		}},
		{"database", func() error {
			sqlDB, err := s.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}},
		{"redis", func() error {
			if s.redis == nil {
				return nil
			}
			return s.redis.Close()
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			middleware.Logger.Error("Shutdown step failed", slog.String("step", step.name), slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
