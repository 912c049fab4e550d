package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vitrine-labs/vitrine-mod-api/api/swagger"
	"github.com/vitrine-labs/vitrine-mod-api/internal/handler"
	"github.com/vitrine-labs/vitrine-mod-api/internal/middleware"
	"github.com/vitrine-labs/vitrine-mod-api/internal/models"
	"github.com/vitrine-labs/vitrine-mod-api/internal/repository"
	"github.com/vitrine-labs/vitrine-mod-api/internal/service"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/cache"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/config"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/database"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/jobs"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/logger"
	corsmiddleware "github.com/vitrine-labs/vitrine-mod-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vitrine-labs/vitrine-mod-api/pkg/middleware/requestid"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/storage"
)

// @title Vitrine Moderation API
// @version 1.0.0
// @description Submission moderation and catalog publication pipeline
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductSubmissionRepository(db)
	testimonialRepo := repository.NewTestimonialSubmissionRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "vitrine-mod-api",
	})
	moderationSvc := service.NewModerationService(productRepo, testimonialRepo, catalogRepo, userRepo, metricsSvc, validate, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, cacheSvc, userRepo, cfg.Catalog.CacheTTL, logr)
	moderationSvc.SetListingInvalidator(catalogSvc)
	diagnosticSvc := service.NewDiagnosticService(schemaRepo, cfg.Diagnostics.GrantRole, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	submissionHandler := handler.NewSubmissionHandler(moderationSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	diagnosticHandler := handler.NewDiagnosticHandler(diagnosticSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	reviewRoles := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleModerator)
	adminRoles := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	submissions := api.Group("/submissions", middleware.JWT(authSvc))
	{
		submissions.POST("/products", submissionHandler.CreateProduct)
		submissions.POST("/testimonials", submissionHandler.CreateTestimonial)
		submissions.GET("/products", reviewRoles, submissionHandler.ListProducts)
		submissions.GET("/testimonials", reviewRoles, submissionHandler.ListTestimonials)
		submissions.GET("/products/unpromoted", reviewRoles, submissionHandler.ListUnpromoted)
		submissions.POST("/products/:id/approve", reviewRoles, submissionHandler.ApproveProduct)
		submissions.POST("/products/:id/reject", reviewRoles, submissionHandler.RejectProduct)
		submissions.POST("/products/:id/promote", reviewRoles, submissionHandler.RetryPromotion)
		submissions.POST("/testimonials/:id/approve", reviewRoles, submissionHandler.ApproveTestimonial)
		submissions.POST("/testimonials/:id/reject", reviewRoles, submissionHandler.RejectTestimonial)
	}

	catalog := api.Group("/catalog")
	{
		catalog.GET("/products", catalogHandler.ListActive)
		catalog.GET("/testimonials", catalogHandler.ListTestimonials)
		catalog.GET("/products/all", middleware.JWT(authSvc), reviewRoles, catalogHandler.ListAll)
		catalog.GET("/products/:id", catalogHandler.Get)
		catalog.PATCH("/products/:id", middleware.JWT(authSvc), adminRoles, catalogHandler.Update)
		catalog.DELETE("/products/:id", middleware.JWT(authSvc), adminRoles, catalogHandler.Delete)
	}

	if cfg.Diagnostics.Enabled {
		diagnostics := api.Group("/diagnostics", middleware.JWT(authSvc), adminRoles)
		{
			diagnostics.GET("/store", diagnosticHandler.Snapshot)
			diagnostics.POST("/store/repair", middleware.Audit(userRepo, models.AuditActionStoreRepair, "store"), diagnosticHandler.Repair)
			diagnostics.GET("/system", func(c *gin.Context) {
				c.JSON(http.StatusOK, metricsSvc.Snapshot())
			})
		}
	}

	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobRepo := repository.NewExportJobRepository(db)
		exportSvc := service.NewExportService(userRepo, productRepo, catalogRepo, exportStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
		worker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobRepo, queue, exportSvc, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(context.Background())
		exportJobSvc.StartCleanup(context.Background())
		exportHandler := handler.NewExportHandler(exportJobSvc)

		exports := api.Group("/exports")
		{
			exports.GET("/download/:token", exportHandler.Download)
			exports.POST("", middleware.JWT(authSvc), reviewRoles, middleware.Audit(userRepo, models.AuditActionDecisionExport, "export"), exportHandler.Generate)
			exports.GET("/:id", middleware.JWT(authSvc), reviewRoles, exportHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
