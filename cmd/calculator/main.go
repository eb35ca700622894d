package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/circuitbreaker"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/config"
	applog "github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/logger"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/metrics"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/middleware"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/repository"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/server"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/service"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

func main() {
	// Load env if it exists
	_ = godotenv.Load()

	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps := server.Dependencies{
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}

	if cfg.Redis.Enabled() {
		redis, err := storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.GetRedisAddr()), zap.Error(err))
		}
		defer redis.Close()

		breaker := circuitbreaker.New(circuitbreaker.Config{
			Name: "session-store",
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})

		deps.Redis = redis
		deps.Sessions = repository.NewGuardedSessionStore(repository.NewRedisSessionRepository(redis, cfg.Session.TTL), breaker)
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
	} else {
		sessions := repository.NewMemorySessionRepository(cfg.Session.TTL)
		go sweepSessions(ctx, sessions, logger)

		deps.Sessions = sessions
		logger.Info("redis not configured, keeping sessions in memory")
	}

	if cfg.Database.Enabled() {
		postgres, err := storage.NewPostgres(cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}

		logRepo := repository.NewRequestLogRepository(postgres)
		requestLogger := middleware.NewRequestLogger(logRepo, cfg.RequestLog.BufferSize, logger)
		requestLogger.Start(ctx)
		defer func() { <-requestLogger.Done() }()

		deleted, err := service.NewAnalyticsService(logRepo).CleanupOldLogs(ctx, cfg.RequestLog.RetentionDays)
		if err != nil {
			logger.Warn("request log cleanup failed", zap.Error(err))
		} else if deleted > 0 {
			logger.Info("removed expired request logs", zap.Int64("deleted", deleted))
		}

		deps.Postgres = postgres
		deps.RequestLogger = requestLogger
		logger.Info("connected to database")
	}

	srv := server.New(cfg, deps)
	srv.StartHealthChecks(ctx)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Stops the sweeper and flushes pending request logs
	stop()

	logger.Info("server exited")
}

func sweepSessions(ctx context.Context, sessions *repository.MemorySessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
