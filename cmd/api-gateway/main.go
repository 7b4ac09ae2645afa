package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/teebox-golf/teebox-api/api/swagger"
	"github.com/teebox-golf/teebox-api/internal/handler"
	"github.com/teebox-golf/teebox-api/internal/middleware"
	"github.com/teebox-golf/teebox-api/internal/models"
	"github.com/teebox-golf/teebox-api/internal/repository"
	"github.com/teebox-golf/teebox-api/internal/service"
	"github.com/teebox-golf/teebox-api/pkg/cache"
	"github.com/teebox-golf/teebox-api/pkg/config"
	"github.com/teebox-golf/teebox-api/pkg/database"
	"github.com/teebox-golf/teebox-api/pkg/jobs"
	"github.com/teebox-golf/teebox-api/pkg/logger"
	corsmiddleware "github.com/teebox-golf/teebox-api/pkg/middleware/cors"
	reqidmiddleware "github.com/teebox-golf/teebox-api/pkg/middleware/requestid"
	"github.com/teebox-golf/teebox-api/pkg/storage"
)

// @title TeeBox Waitlist API
// @version 1.0.0
// @description Waitlist admission and scoring service for the TeeBox beta
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, queue caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.QueueTTL, logr, true)
		}
	}

	appRepo := repository.NewApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	var configSvc *service.ScoringConfigService
	if cfg.Scoring.URL != "" {
		source := repository.NewScoringConfigSource(cfg.Scoring.URL, cfg.Scoring.FetchTimeout)
		configSvc = service.NewScoringConfigService(source, cfg.Scoring.CacheTTL, logr)
	} else {
		configSvc = service.NewScoringConfigService(nil, cfg.Scoring.CacheTTL, logr)
	}
	scoringSvc := service.NewScoringService(configSvc, logr)
	waitlistSvc := service.NewWaitlistService(
		appRepo, profileRepo, equipmentRepo, referralRepo, auditRepo,
		scoringSvc, configSvc, metricsSvc,
		cfg.Waitlist.BetaCap, cfg.Waitlist.SignalLookupTimeout, cfg.Rescore.BatchSize, logr)
	queueSvc := service.NewQueueService(appRepo, referralRepo, configSvc, cacheSvc, cfg.Waitlist.DailyWaveCapacity, logr)

	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "teebox-api",
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.URLTTL)
		exportSvc = service.NewExportService(appRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.URLTTL,
		}, logr, nil, nil)
	}

	rescoreQueue := jobs.NewQueue(handler.JobTypeRescore, func(ctx context.Context, job jobs.Job) error {
		count, err := waitlistSvc.RescoreAll(ctx)
		if err != nil {
			return err
		}
		logr.Info("rescore complete", zap.Int("rescored", count), zap.String("job_id", job.ID))
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Rescore.Workers,
		MaxRetries: cfg.Rescore.Retries,
		Logger:     logr,
	})
	rescoreQueue.Start(ctx)
	defer rescoreQueue.Stop()

	waitlistHandler := handler.NewWaitlistHandler(waitlistSvc, queueSvc, logr)
	adminHandler := handler.NewAdminHandler(waitlistSvc, configSvc, exportSvc, rescoreQueue, logr)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	waitlist := api.Group("/waitlist")
	{
		waitlist.POST("", waitlistHandler.Submit)
		waitlist.GET("/status", waitlistHandler.Status)
		waitlist.GET("/position", waitlistHandler.Position)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	{
		admin.GET("/scoring/config", adminHandler.ScoringConfig)
		admin.POST("/scoring/config/refresh",
			middleware.Audit(auditRepo, models.AuditActionConfigRefresh, "scoring_config"),
			adminHandler.RefreshScoringConfig)
		admin.GET("/waitlist/distribution", adminHandler.Distribution)
		admin.PATCH("/waitlist/:email/status", adminHandler.UpdateStatus)
		admin.POST("/waitlist/exports", adminHandler.Export)
		admin.GET("/waitlist/exports/:token", adminHandler.Download)
		admin.GET("/metrics/system", metricsHandler.System)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
