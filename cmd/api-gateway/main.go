package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/studio-pms-api/api/swagger"
	"github.com/noah-isme/studio-pms-api/internal/handler"
	"github.com/noah-isme/studio-pms-api/internal/repository"
	"github.com/noah-isme/studio-pms-api/internal/service"
	"github.com/noah-isme/studio-pms-api/pkg/cache"
	"github.com/noah-isme/studio-pms-api/pkg/config"
	"github.com/noah-isme/studio-pms-api/pkg/database"
	"github.com/noah-isme/studio-pms-api/pkg/logger"
)

// @title Studio PMS API
// @version 1.0.0
// @description Course schedules, enrollments, attendance and roster views for multi-tenant studios
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, view cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, cfg.Cache.Namespace, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			checks["redis"] = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	invalidator := service.NewViewInvalidator(cacheSvc, metrics, logr, service.InvalidationConfig{
		Workers:   cfg.Jobs.InvalidationWorkers,
		QueueSize: cfg.Jobs.QueueSize,
	})
	invalidator.Start(ctx)
	defer invalidator.Stop()

	router := newRouter(cfg, logr, buildDeps(cfg, logr, db, metrics, cacheSvc, invalidator, checks))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
