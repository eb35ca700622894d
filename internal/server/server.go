package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/config"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/handler"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/healthcheck"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/metrics"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/middleware"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/ratelimit"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/repository"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/service"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Dependencies are built by main. Redis, Postgres and RequestLogger are
// optional; Sessions is required.
type Dependencies struct {
	Logger        *zap.Logger
	Metrics       *metrics.Collector
	Redis         *storage.RedisClient
	Postgres      *storage.Postgres
	Sessions      repository.SessionStore
	RequestLogger *middleware.RequestLogger
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	deps       Dependencies
	httpServer *http.Server
	health     *healthcheck.Monitor
	startTime  time.Time

	workloadHandler  *handler.WorkloadHandler
	authService      *service.AuthService
	authHandler      *handler.AuthHandler
	analyticsHandler *handler.AnalyticsHandler
}

func New(cfg *config.Config, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	sessionService := service.NewSessionService(deps.Sessions, deps.Metrics, deps.Logger)

	s := &Server{
		router:          router,
		config:          cfg,
		deps:            deps,
		health:          healthcheck.NewMonitor(healthcheck.Config{}, deps.Logger),
		startTime:       time.Now(),
		workloadHandler: handler.NewWorkloadHandler(sessionService),
	}

	if deps.Redis != nil {
		s.health.Add("redis", deps.Redis)
	}
	if deps.Postgres != nil {
		s.health.Add("database", deps.Postgres)
	}

	if deps.Postgres != nil {
		s.authService = service.NewAuthService(repository.NewAdminRepository(deps.Postgres), cfg.Auth.JWTSecret, cfg.Auth.JWTExpiryHours)
		s.authHandler = handler.NewAuthHandler(s.authService)
		s.analyticsHandler = handler.NewAnalyticsHandler(service.NewAnalyticsService(repository.NewRequestLogRepository(deps.Postgres)))
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.deps.Logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.deps.Logger, s.deps.Metrics))
	s.router.Use(middleware.CORS(s.config.Session.Header))
	if s.deps.RequestLogger != nil {
		s.router.Use(s.deps.RequestLogger.Middleware())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	api := s.router.Group("/api/v1")
	if s.config.RateLimit.Enabled {
		limiter := ratelimit.NewLimiter(s.deps.Redis, s.config.RateLimit.Algorithm, s.config.RateLimit.RequestsPerMinute, time.Minute)
		api.Use(middleware.RateLimit(limiter, s.deps.Logger))
	}
	api.Use(middleware.Session(s.config.Session.Header))
	{
		api.GET("/sizes", s.workloadHandler.Sizes)
		api.GET("/workloads", s.workloadHandler.List)
		api.POST("/workloads", s.workloadHandler.Append)
		api.PATCH("/workloads/:index", s.workloadHandler.Update)
		api.PUT("/workloads/:index", s.workloadHandler.Replace)
		api.DELETE("/workloads/:index", s.workloadHandler.Remove)
		api.DELETE("/session", s.workloadHandler.EndSession)
		api.GET("/estimate", s.workloadHandler.Current)
		api.POST("/estimate", s.workloadHandler.Estimate)
	}

	if s.authService == nil {
		s.deps.Logger.Info("database not configured, admin routes disabled")
		return
	}

	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.authHandler.Register)
		auth.POST("/login", s.authHandler.Login)
	}

	admin := s.router.Group("/admin", middleware.RequireAdmin(s.authService))
	{
		admin.GET("/status", s.adminStatus)
		admin.GET("/analytics", s.analyticsHandler.GetSummary)
		admin.GET("/analytics/timeseries", s.analyticsHandler.GetTimeSeries)
		admin.GET("/logs", s.analyticsHandler.GetLogs)
	}
}

// StartHealthChecks pings the configured stores in the background until ctx ends.
func (s *Server) StartHealthChecks(ctx context.Context) {
	s.health.Start(ctx)
}

func (s *Server) healthCheck(c *gin.Context) {
	checks := gin.H{
		"redis":    "disabled",
		"database": "disabled",
	}
	for _, status := range s.health.Statuses() {
		if status.IsHealthy {
			checks[status.Name] = "ok"
		} else {
			checks[status.Name] = "unreachable"
		}
	}

	overall := s.health.OverallHealth()
	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    overall.String(),
		"service":   "credit-calculator",
		"version":   version,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

func (s *Server) adminStatus(c *gin.Context) {
	status := gin.H{
		"calculator":      "running",
		"session_backend": s.sessionBackend(),
		"rate_limit":      s.config.RateLimit,
		"dependencies":    s.health.Statuses(),
		"uptime":          time.Since(s.startTime).Seconds(),
		"timestamp":       time.Now().Unix(),
	}
	if guarded, ok := s.deps.Sessions.(*repository.GuardedSessionStore); ok {
		status["session_breaker"] = guarded.Breaker().Snapshot()
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) sessionBackend() string {
	if s.deps.Redis != nil {
		return "redis"
	}
	return "memory"
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.deps.Logger.Info("starting credit calculator",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
		zap.String("sessions", s.sessionBackend()),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.deps.Logger.Info("shutting down server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
