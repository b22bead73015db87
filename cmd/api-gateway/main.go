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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-recruit-api/api/swagger"
	"github.com/noah-isme/sma-recruit-api/internal/handler"
	"github.com/noah-isme/sma-recruit-api/internal/middleware"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/repository"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	"github.com/noah-isme/sma-recruit-api/pkg/cache"
	"github.com/noah-isme/sma-recruit-api/pkg/config"
	"github.com/noah-isme/sma-recruit-api/pkg/database"
	"github.com/noah-isme/sma-recruit-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-recruit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-recruit-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-recruit-api/pkg/storage"
)

// @title SMA Recruit API
// @version 1.0.0
// @description Recruitment pipeline and day-close approval backend
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	metaRepo := repository.NewMetaRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	mspRepo := repository.NewMSPCodeRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)
	communicationRepo := repository.NewCommunicationRepository(db)
	benchRepo := repository.NewBenchRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	dayCloseRepo := repository.NewDayCloseRepository(db)
	escalationRepo := repository.NewEscalationRepository(db)
	exportRepo := repository.NewExportRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sma-recruit-api",
	})

	mspSvc := service.NewMSPService(mspRepo, metaRepo, logr)
	candidateSvc := service.NewCandidateService(candidateRepo, mspSvc, validate, logr)
	pipelineSvc := service.NewPipelineService(pipelineRepo, candidateRepo, communicationRepo, validate, logr)
	communicationSvc := service.NewCommunicationService(communicationRepo, validate, logr)
	benchSvc := service.NewBenchService(benchRepo, candidateSvc, metaRepo, validate, logr)
	metaSvc := service.NewMetaService(metaRepo, requirementRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(candidateRepo, pipelineRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	accessSvc := service.NewAccessService(grantRepo, validate, logr)
	dayCloseSvc := service.NewDayCloseService(dayCloseRepo, escalationRepo, validate, logr, cfg.DayClose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc = service.NewExportService(exportRepo, candidateRepo, pipelineSvc, store, signer, cfg.Reports.WorkerConcurrency, cfg.Reports.WorkerRetries, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()

		go sweepExpiredExports(ctx, store, cfg.Reports, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	recruitmentHandler := handler.NewRecruitmentHandler(metaSvc, candidateSvc, pipelineSvc, communicationSvc, benchSvc, mspSvc, dashboardSvc)
	grantHandler := handler.NewGrantHandler(accessSvc)
	dayCloseHandler := handler.NewDayCloseHandler(dayCloseSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	recruitment := r.Group("/recruitment")
	recruitment.Use(middleware.JWT(authSvc))
	{
		grants := recruitment.Group("/grants")
		grants.Use(middleware.RequireRoles(models.RoleAdmin))
		grants.GET("", grantHandler.List)
		grants.POST("", grantHandler.Upsert)
		grants.DELETE("", grantHandler.Revoke)

		sections := recruitment.Group("")
		sections.Use(middleware.SectionAccess(accessSvc))
		sections.Use(middleware.Audit(userRepo, models.AuditActionRecruitmentEdit, "recruitment"))
		sections.GET("", recruitmentHandler.Get)
		sections.POST("", recruitmentHandler.Post)
		sections.PUT("", recruitmentHandler.Put)
		sections.DELETE("", recruitmentHandler.Delete)
	}

	dayClose := r.Group("/dayClose")
	dayClose.Use(middleware.JWT(authSvc))
	{
		dayClose.POST("/dayCloseRequest", middleware.Audit(userRepo, models.AuditActionDayCloseSubmit, "day_close"), dayCloseHandler.Submit)
		dayClose.GET("/dayCloseStatus", dayCloseHandler.Status)

		supervisors := dayClose.Group("")
		supervisors.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeamManager))
		supervisors.GET("/pending", dayCloseHandler.Pending)
		supervisors.POST("/requests/:id/resolve", middleware.Audit(userRepo, models.AuditActionDayCloseResolve, "day_close"), dayCloseHandler.Resolve)
	}

	if exportSvc != nil {
		reportHandler := handler.NewReportHandler(exportSvc)
		reports := r.Group("/reports")
		reports.GET("/download", reportHandler.Download)

		authedReports := reports.Group("")
		authedReports.Use(middleware.JWT(authSvc))
		authedReports.POST("/exports", reportHandler.Create)
		authedReports.GET("/exports/:id", reportHandler.Get)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// sweepExpiredExports periodically removes export files older than the
// retention TTL. Their download tokens expire on the same clock.
func sweepExpiredExports(ctx context.Context, store *storage.LocalStorage, cfg config.ReportsConfig, logr *zap.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(cfg.RetentionTTL)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(deleted))
			}
		}
	}
}
