package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/codelens/taskhub/internal/auth"
	"github.com/codelens/taskhub/internal/cache"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/http/handlers"
	"github.com/codelens/taskhub/internal/http/middlewares"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/codelens/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	cfg config.Config,
	prom *observability.Prom,
	jwtManager *auth.Manager,
	analyticsCache *cache.AnalyticsCache,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidators(); err != nil {
		log.Error("validator registration failed", "err", err)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	r.Use(otelgin.Middleware("taskhub-api"))

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API documentation
	r.GET("/docs", handlers.DocsUI)
	r.GET("/docs/openapi.yaml", handlers.DocsOpenAPI)

	// wire up repositories and the transactional executor

	runner := db.NewRunner(pool)
	usersRepo := postgres.NewUsersRepo(prom)
	projectsRepo := postgres.NewProjectsRepo(prom)
	tasksRepo := postgres.NewTasksRepo(prom)
	analyticsRepo := postgres.NewAnalyticsRepo(prom)

	// handlers

	authHandler := handlers.NewAuthHandler(usersRepo, runner, pool, jwtManager, cfg)
	projectsHandler := handlers.NewProjectsHandler(projectsRepo, tasksRepo, runner, pool, analyticsCache)
	tasksHandler := handlers.NewTasksHandler(tasksRepo, projectsRepo, runner, pool, analyticsCache)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsRepo, pool, analyticsCache)

	authMw := middlewares.NewAuthMiddleware(jwtManager)
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	apiLimiter := middlewares.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateWindow)

	// public auth routes, rate limited by IP

	authRoutes := r.Group("/auth")
	authRoutes.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// everything below requires a valid bearer token; limiter runs after auth
	// so the key is the user id rather than a shared proxy IP

	protected := r.Group("/")
	protected.Use(authMw.RequireAuth())
	protected.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	protected.POST("/projects", projectsHandler.CreateProject)
	protected.GET("/projects", projectsHandler.ListProjects)
	protected.GET("/projects/analytics", analyticsHandler.GetAnalytics)
	protected.GET("/project/:id", projectsHandler.GetProject)
	protected.PUT("/project/:id", projectsHandler.UpdateProject)
	protected.DELETE("/project/:id", projectsHandler.DeleteProject)

	protected.GET("/tasks/project/filter/:status", tasksHandler.FilterTasksByStatus)
	protected.POST("/tasks/project/:projectId", tasksHandler.CreateTask)
	protected.GET("/tasks/project/:projectId", tasksHandler.ListTasksByProject)
	protected.PUT("/tasks/project/:taskId", tasksHandler.UpdateTask)
	protected.DELETE("/tasks/project/:taskId", tasksHandler.DeleteTask)

	return r
}
