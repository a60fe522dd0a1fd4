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

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gst-service/internal/config"
	"gst-service/internal/database"
	"gst-service/internal/events"
	"gst-service/internal/handlers"
	"gst-service/internal/middleware"
	"gst-service/internal/repository"
	"gst-service/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Connected to database")

	// Run automated database migrations (schema + seed data)
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional; without it the repository reads straight from Postgres
	redisClient, err := config.InitRedis(context.Background(), cfg)
	if err != nil {
		log.Printf("WARNING: Redis unavailable: %v (caching disabled)", err)
		redisClient = nil
	} else if redisClient != nil {
		log.Println("✓ Connected to Redis")
	}

	// Initialize NATS events publisher (non-blocking)
	go func() {
		if err := events.InitPublisher(cfg.NATSURL, logger); err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		} else if cfg.NATSURL != "" {
			log.Println("✓ NATS events publisher initialized")
		}
	}()

	// Initialize repository
	taxRepo := repository.NewTaxRepository(db, redisClient)

	// Provision tax profiles for newly onboarded tenants
	var subscriber *events.Subscriber
	if cfg.NATSURL != "" {
		subscriber, err = events.NewSubscriber(cfg.NATSURL, taxRepo, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events subscriber: %v", err)
		} else if err := subscriber.Start(); err != nil {
			log.Printf("WARNING: Failed to start events subscriber: %v", err)
		} else {
			log.Println("✓ NATS events subscriber started")
		}
	}

	// Initialize services
	publisher := events.Deferred{}
	taxCalculator := services.NewTaxCalculator(taxRepo, publisher, logger)
	profileService := services.NewProfileService(taxRepo, publisher, logger)
	invoiceService := services.NewInvoiceService(taxRepo, taxCalculator, logger)
	reportService := services.NewReportService(taxRepo, logger)

	// Initialize handlers
	taxHandler := handlers.NewTaxHandler(taxCalculator, profileService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Initialize RBAC middleware
	rbacMiddleware := rbac.NewMiddlewareWithURL(cfg.StaffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	router := setupRouter(cfg, logger, db, redisClient, rbacMiddleware, taxHandler, invoiceHandler, reportHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("GST Service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if subscriber != nil {
		subscriber.Close()
	}
	events.GetPublisher().Close()
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Server shutdown complete")
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	rbacMiddleware *rbac.Middleware,
	taxHandler *handlers.TaxHandler,
	invoiceHandler *handlers.InvoiceHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gosharedmw.SecurityHeaders())
	if redisClient != nil {
		router.Use(gosharedmw.RedisRateLimitMiddlewareWithProfile(redisClient, "standard"))
	} else {
		router.Use(gosharedmw.RateLimit())
	}
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health checks
	router.GET("/health", handlers.HealthCheck)
	router.GET("/livez", handlers.LivenessCheck)
	router.GET("/readyz", handlers.ReadinessCheck(db, func() bool {
		return events.GetPublisher().IsConnected()
	}))

	// API routes with RBAC
	v1 := router.Group("/api/v1")
	v1.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true, // X-* headers during migration
		SkipPaths:          []string{"/health", "/livez", "/readyz"},
	}))
	v1.Use(middleware.TenantMiddleware())
	{
		tax := v1.Group("/tax")
		{
			tax.POST("/calculate-line", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), taxHandler.CalculateLine)
			tax.POST("/calculate", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), taxHandler.CalculateTax)
		}

		v1.POST("/gstin/validate", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), taxHandler.ValidateGSTIN)

		profile := v1.Group("/profile")
		{
			profile.GET("", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), taxHandler.GetProfile)
			profile.PUT("", rbacMiddleware.RequirePermission(rbac.PermissionTaxManage), taxHandler.UpdateProfile)
		}

		// HSN/SAC categories with RBAC
		categories := v1.Group("/categories")
		{
			categories.GET("", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), taxHandler.ListProductCategories)
			categories.POST("", rbacMiddleware.RequirePermission(rbac.PermissionTaxCreate), taxHandler.CreateProductCategory)
			categories.PUT("/:id", rbacMiddleware.RequirePermission(rbac.PermissionTaxUpdate), taxHandler.UpdateProductCategory)
			categories.DELETE("/:id", rbacMiddleware.RequirePermission(rbac.PermissionTaxManage), taxHandler.DeleteProductCategory)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("", rbacMiddleware.RequirePermission(rbac.PermissionTaxCreate), invoiceHandler.CreateInvoice)
			invoices.GET("", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), invoiceHandler.ListInvoices)
			invoices.GET("/:id", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), invoiceHandler.GetInvoice)
			invoices.POST("/:id/cancel", rbacMiddleware.RequirePermission(rbac.PermissionTaxUpdate), invoiceHandler.CancelInvoice)
		}

		gstr1 := v1.Group("/reports/gstr1")
		{
			gstr1.GET("", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), reportHandler.GetGSTR1)
			gstr1.GET("/export", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), reportHandler.ExportGSTR1)
			gstr1.POST("", rbacMiddleware.RequirePermission(rbac.PermissionTaxCreate), reportHandler.SaveGSTR1)
			gstr1.GET("/filings", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), reportHandler.ListFilings)
			gstr1.GET("/filings/:id", rbacMiddleware.RequirePermission(rbac.PermissionTaxRead), reportHandler.GetFiling)
			gstr1.POST("/:id/file", rbacMiddleware.RequirePermission(rbac.PermissionTaxManage), reportHandler.FileGSTR1)
		}
	}

	return router
}
