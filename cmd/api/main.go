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

	_ "github.com/motherland-app/admin-console-api/api/swagger"
	"github.com/motherland-app/admin-console-api/internal/events"
	"github.com/motherland-app/admin-console-api/internal/handler"
	"github.com/motherland-app/admin-console-api/internal/middleware"
	"github.com/motherland-app/admin-console-api/internal/provider"
	"github.com/motherland-app/admin-console-api/internal/repository"
	"github.com/motherland-app/admin-console-api/internal/service"
	"github.com/motherland-app/admin-console-api/pkg/cache"
	"github.com/motherland-app/admin-console-api/pkg/config"
	"github.com/motherland-app/admin-console-api/pkg/database"
	"github.com/motherland-app/admin-console-api/pkg/logger"
	corsmiddleware "github.com/motherland-app/admin-console-api/pkg/middleware/cors"
	reqidmiddleware "github.com/motherland-app/admin-console-api/pkg/middleware/requestid"
	"github.com/motherland-app/admin-console-api/pkg/rtdb"
)

// @title MOTHERLAND Admin Console API
// @version 1.0.0
// @description Moderation backend for instructor class listings
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

	store := rtdb.NewClient(cfg.Realtime, logr)
	listingRepo := repository.NewListingRepository(store)
	userRepo := repository.NewUserRepository(store)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, console cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Warnw("postgres unavailable, audit trail disabled", "error", err)
		db = nil
	}
	auditRepo := repository.NewAuditRepository(db)
	if err := auditRepo.EnsureSchema(ctx); err != nil {
		logr.Sugar().Warnw("audit schema bootstrap failed", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr,
		cfg.Dashboard.CacheEnabled && redisClient != nil)

	profileSvc := service.NewProfileService(userRepo, logr)

	listingSvc := service.NewListingService(service.ListingServiceParams{
		Listings: listingRepo,
		Users:    userRepo,
		Profiles: profileSvc,
		Cache:    cacheSvc,
		Logger:   logr,
	})

	realtimeSvc := service.NewRealtimeService(service.RealtimeServiceParams{
		Watcher:  listingRepo,
		Users:    userRepo,
		Listings: listingSvc,
		Metrics:  metricsSvc,
		Buffer:   cfg.Dashboard.StreamBuffer,
		Logger:   logr,
	})
	if err := realtimeSvc.Start(ctx); err != nil {
		logr.Sugar().Errorw("realtime subscription failed, stream degraded", "error", err)
	}

	publisher, err := events.NewPublisher(cfg.Events, logr)
	if err != nil {
		logr.Sugar().Warnw("event publisher unavailable, decisions will not be published", "error", err)
		publisher = nil
	}

	mailerSvc := service.NewMailerService(cfg.Mailer, logr)
	mailerSvc.Start(ctx)

	moderationSvc := service.NewModerationService(service.ModerationServiceParams{
		Store:     listingRepo,
		Profiles:  profileSvc,
		Audit:     auditRepo,
		Publisher: publisher,
		Notifier:  mailerSvc,
		Realtime:  realtimeSvc,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Logger:    logr,
	})

	authSvc := service.NewAuthService(service.AuthServiceParams{
		Verifier:  provider.NewIdentityClient(cfg.Auth, logr),
		Profiles:  userRepo,
		Audit:     auditRepo,
		Validator: validator.New(),
		Logger:    logr,
		Config: service.AuthConfig{
			TokenSecret: cfg.JWT.Secret,
			TokenExpiry: cfg.JWT.Expiration,
			Issuer:      cfg.JWT.Issuer,
		},
	})

	exportSvc := service.NewExportService(listingSvc, auditRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	moderationHandler := handler.NewModerationHandler(moderationSvc)
	dashboardHandler := handler.NewDashboardHandler(listingSvc, realtimeSvc, cfg.Dashboard.HeartbeatInterval)
	instructorHandler := handler.NewInstructorHandler(listingSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/session", authHandler.Session)
	authed.POST("/auth/logout", authHandler.Logout)

	admin := authed.Group("")
	admin.Use(middleware.AdminOnly())
	admin.GET("/dashboard/queue", dashboardHandler.Queue)
	admin.GET("/dashboard/summary", dashboardHandler.Summary)
	admin.GET("/dashboard/stream", dashboardHandler.Stream)
	admin.GET("/instructors", instructorHandler.List)
	admin.POST("/listings/:id/approve", moderationHandler.Approve)
	admin.POST("/listings/:id/reject", moderationHandler.Reject)
	admin.GET("/audit", auditHandler.List)
	if cfg.Exports.Enabled {
		admin.GET("/exports/review-queue", exportHandler.ReviewQueue)
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
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown", "error", err)
	}

	realtimeSvc.Dispose()
	mailerSvc.Stop()
	publisher.Close()
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck
	}
	if db != nil {
		db.Close() //nolint:errcheck
	}
}
