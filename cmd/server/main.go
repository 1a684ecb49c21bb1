package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sonar-vaibhav/dpu-procurement/internal/config"
	"github.com/sonar-vaibhav/dpu-procurement/internal/middleware"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/handler"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/memstore"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/pipeline"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/repository"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/sse"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting dpu-procurement service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// Store bundle: postgres when configured, in-memory otherwise.
	var stores service.Stores
	if cfg.Database.Host != "" {
		db, err := initDatabase(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(
			&entity.Indent{},
			&entity.IndentItem{},
			&entity.Vendor{},
			&entity.Sourcing{},
			&entity.Enquiry{},
			&entity.Quotation{},
			&entity.QuotationItem{},
			&entity.PurchaseOrder{},
			&entity.POItem{},
			&entity.DeliveryRecord{},
			&entity.DeliveryLog{},
			&entity.ActivityLog{},
		); err != nil {
			zapLogger.Fatal("Failed to migrate tables", zap.Error(err))
		}
		stores = repository.NewStores(db)
	} else {
		zapLogger.Warn("No database configured, using in-memory store with seed data")
		mem := memstore.New()
		if err := memstore.Seed(mem); err != nil {
			zapLogger.Fatal("Failed to seed in-memory store", zap.Error(err))
		}
		stores = mem.Stores()
	}

	pipelines, err := pipeline.NewSet(cfg.Pipeline.Default, cfg.Pipeline.Departments)
	if err != nil {
		zapLogger.Fatal("Invalid approval pipeline config", zap.Error(err))
	}

	hub := sse.NewHub(zapLogger)
	services := service.NewServices(stores, pipelines, hub, zapLogger)

	if cfg.Redis.Host != "" {
		rdb := initRedis(cfg.Redis)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unreachable, dashboard counters fall back to SQL", zap.Error(err))
		} else {
			services.Dashboard.SetRedis(rdb)
		}
	}

	handlers := handler.NewHandlers(services, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")

	authorized := v1.Group("/procurement")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authorized.GET("/events", h.Events.Stream)

		// Everything that moves sourcing forward belongs to the CPD officer.
		officerOnly := middleware.RequireRole("officer")

		indents := authorized.Group("/indents")
		{
			indents.POST("", h.Indent.CreateIndent)
			indents.GET("", h.Indent.ListIndents)
			indents.GET("/:id", h.Indent.GetIndent)
			indents.POST("/:id/submit", h.Indent.SubmitIndent)
			indents.GET("/:id/activity", h.Indent.GetIndentActivity)

			indents.POST("/:id/approve", h.Approval.Approve)
			indents.POST("/:id/reject", h.Approval.Reject)
			indents.POST("/:id/items/quantity", h.Approval.EditItemQuantity)

			indents.GET("/:id/sourcing", h.Sourcing.GetSourcing)
			indents.POST("/:id/enquiry", officerOnly, h.Sourcing.SendEnquiry)
			indents.POST("/:id/finalize-vendor", officerOnly, h.Sourcing.FinalizeVendor)
			indents.POST("/:id/purchase-order", officerOnly, h.Sourcing.IssuePurchaseOrder)
			indents.GET("/:id/purchase-order", h.Sourcing.GetPurchaseOrder)
		}

		enquiries := authorized.Group("/enquiries")
		{
			enquiries.POST("/:id/quotations", officerOnly, h.Sourcing.RecordQuotation)
			enquiries.GET("/:id/comparison", h.Sourcing.CompareQuotations)
			enquiries.GET("/:id/comparison/export", h.Sourcing.ExportComparison)
		}

		vendors := authorized.Group("/vendors")
		{
			vendors.POST("", officerOnly, h.Vendor.RegisterVendor)
			vendors.GET("", h.Vendor.ListVendors)
			vendors.GET("/:id", h.Vendor.GetVendor)
			vendors.PUT("/:id", officerOnly, h.Vendor.UpdateVendor)
			vendors.POST("/:id/deactivate", officerOnly, h.Vendor.DeactivateVendor)
		}

		pos := authorized.Group("/purchase-orders")
		{
			pos.POST("/:id/deliveries", h.Delivery.LogDelivery)
			pos.GET("/:id/deliveries", h.Delivery.GetDelivery)
		}

		dashboard := authorized.Group("/dashboard")
		{
			dashboard.GET("/stats", h.Dashboard.GetStats)
		}
	}
}
