package main

import (
	"context"
	"errors"
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

	_ "github.com/noah-isme/elan-api/api/swagger"
	"github.com/noah-isme/elan-api/internal/handler"
	"github.com/noah-isme/elan-api/internal/middleware"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/internal/repository"
	"github.com/noah-isme/elan-api/internal/service"
	"github.com/noah-isme/elan-api/pkg/cache"
	"github.com/noah-isme/elan-api/pkg/catalog"
	"github.com/noah-isme/elan-api/pkg/config"
	"github.com/noah-isme/elan-api/pkg/database"
	"github.com/noah-isme/elan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/elan-api/pkg/middleware/cors"
	"github.com/noah-isme/elan-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/elan-api/pkg/middleware/requestid"
)

// @title Elan API
// @version 1.0.0
// @description Moderated classified listings: submission, moderation, browsing and export
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// The listing API keeps serving from PostgreSQL without a cache.
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	cat := catalog.Default()
	metricsSvc := service.NewMetricsService()

	listingRepo := repository.NewListingRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Listings.PublicCacheTTL, logr, redisClient != nil)
	identitySvc := service.NewIdentityService(userRepo, cacheSvc, cfg.Listings.AdminCacheTTL, logr)
	authSvc := service.NewAuthService(userRepo, identitySvc, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	viewCounter := service.NewViewCounter(listingRepo, metricsSvc, logr, service.ViewCounterConfig{
		Workers: cfg.Listings.ViewWorkers,
		Buffer:  cfg.Listings.ViewBuffer,
		Timeout: cfg.Listings.ViewTimeout,
	})
	viewCounter.Start(ctx)

	listingSvc := service.NewListingService(listingRepo, service.NewListingValidator(cat), viewCounter, service.ListingServiceConfig{
		Cache:    cacheSvc,
		CacheTTL: cfg.Listings.PublicCacheTTL,
		Audit:    userRepo,
		Metrics:  metricsSvc,
		Logger:   logr,
	})
	exportSvc := service.NewExportService(listingRepo, cat, service.ExportConfig{Enabled: cfg.Exports.Enabled}, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limit = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	adminHandler := handler.NewAdminHandler(listingSvc, exportSvc)
	catalogHandler := handler.NewCatalogHandler(cat)

	requireAuth := middleware.JWT(authSvc, identitySvc)
	optionalAuth := middleware.OptionalJWT(authSvc, identitySvc)

	api := r.Group(cfg.APIPrefix)
	api.GET("/catalog", catalogHandler.Get)

	auth := api.Group("/auth")
	auth.POST("/register", limit, authHandler.Register)
	auth.POST("/login", limit, authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", requireAuth, authHandler.Logout)
	auth.GET("/me", requireAuth, authHandler.Me)

	listings := api.Group("/listings")
	listings.GET("", optionalAuth, listingHandler.List)
	listings.GET("/:id", limit, optionalAuth, listingHandler.Get)
	listings.POST("", limit, requireAuth, listingHandler.Create)
	listings.PUT("/:id", requireAuth, listingHandler.Update)
	listings.DELETE("/:id", requireAuth, listingHandler.Delete)

	api.GET("/me/listings", requireAuth, listingHandler.Mine)

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.GET("/listings", adminHandler.Queue)
	admin.GET("/listings/export", middleware.Audit(userRepo, logr, models.AuditActionListingExport, "listings"), adminHandler.Export)
	admin.POST("/listings/:id/approve", adminHandler.Approve)
	admin.POST("/listings/:id/reject", adminHandler.Reject)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	viewCounter.Stop()
}
