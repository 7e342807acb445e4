package main

import (
	"github.com/chrisgermon/form-ordering-sub000/internal/handler"
	mid "github.com/chrisgermon/form-ordering-sub000/internal/middleware"
	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/config"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/formcache"
	"github.com/chrisgermon/form-ordering-sub000/pkg/jwtutil"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/pkg/mailer"
	"github.com/chrisgermon/form-ordering-sub000/pkg/pdfgen"
	"github.com/chrisgermon/form-ordering-sub000/pkg/storage"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting printorder-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Form definition cache. Redis is optional: without an address the
	// loader just hits the database every time.
	var cache formcache.Cache = formcache.NopCache{}
	if appConfig.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		cache = formcache.NewRedisCache(redisClient, appConfig.Redis.FormTTL)
		log.Info("Form cache initialized", zap.String("redis_addr", appConfig.Redis.Addr))
	}

	// Blob storage
	blobStore, err := storage.NewDiskStore(appConfig.Storage.RootDir, appConfig.Storage.PublicBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize blob storage", zap.Error(err))
	}
	log.Info("Blob storage initialized", zap.String("root", appConfig.Storage.RootDir))

	// Outbound mail
	var mail mailer.Mailer
	if appConfig.Mail.Enabled && appConfig.Mail.APIKey != "" {
		mail = mailer.NewAPIMailer(&appConfig.Mail, log)
	} else {
		mail = mailer.NewNopMailer(log)
	}

	// Domain services
	db := database.GetDB()
	formService := service.NewFormDefinitionService(db, cache, log)
	submissionService := service.NewSubmissionService(db, formService, pdfgen.NewRenderer(), blobStore, mail, log)
	reorderService := service.NewReorderService(db, log)
	autoAssignService := service.NewAutoAssignService(db, log)
	exportService := service.NewExportService(db)

	handler.Init(appConfig, formService, submissionService, reorderService, autoAssignService, exportService, blobStore)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Public routes, optionally restricted by the IP allow-list
	public := e.Group("", mid.IPFilterMiddleware(appConfig.IPFilter.Enabled))
	public.GET("/api/forms/:slug", handler.GetForm)
	public.POST("/api/submit-order", handler.SubmitOrder)

	// Stored assets
	e.GET("/files/*", handler.ServeFile)

	// Admin login
	e.POST("/api/admin/login", handler.Login)
	e.POST("/api/admin/logout", handler.Logout)

	// Admin API - session token required
	admin := e.Group("/api/admin", mid.AuthMiddleware)

	admin.GET("/brands", handler.ListBrands)
	admin.GET("/brands/:id", handler.GetBrand)
	admin.POST("/brands", handler.CreateBrand)
	admin.PUT("/brands/:id", handler.UpdateBrand)
	admin.DELETE("/brands/:id", handler.DeleteBrand)

	admin.GET("/sections", handler.ListSections)
	admin.POST("/sections", handler.CreateSection)
	admin.PUT("/sections/reorder", handler.ReorderSections)
	admin.PUT("/sections/:id", handler.UpdateSection)
	admin.DELETE("/sections/:id", handler.DeleteSection)

	admin.GET("/items", handler.ListItems)
	admin.POST("/items", handler.CreateItem)
	admin.PUT("/items/reorder", handler.ReorderItems)
	admin.PUT("/items/:id", handler.UpdateItem)
	admin.DELETE("/items/:id", handler.DeleteItem)

	admin.GET("/submissions", handler.ListSubmissions)
	admin.GET("/submissions/export", handler.ExportSubmissions)
	admin.GET("/submissions/:id", handler.GetSubmission)
	admin.POST("/submissions/:id/complete", handler.CompleteSubmission)
	admin.POST("/submissions/:id/retry", handler.RetrySubmission)
	admin.POST("/submissions/bulk-delete", handler.BulkDeleteSubmissions)

	admin.POST("/upload", handler.UploadFile)
	admin.GET("/files", handler.ListFiles)
	admin.DELETE("/files/:id", handler.DeleteFile)
	admin.POST("/files/auto-assign", handler.AutoAssignFiles)

	admin.GET("/allowed-ips", handler.ListAllowedIPs)
	admin.POST("/allowed-ips", handler.CreateAllowedIP)
	admin.DELETE("/allowed-ips/:id", handler.DeleteAllowedIP)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
