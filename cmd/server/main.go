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
	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/config"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/handler"
	"github.com/hardhat/sitebase/internal/middleware"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/service"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting sitebase service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	if err := seedAdmin(db); err != nil {
		zapLogger.Warn("Seed admin user warning", zap.Error(err))
	}

	// 初始化Redis（看板缓存，连不上只降级不阻断启动）
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, dashboard cache disabled", zap.Error(err))
		rdb = nil
	}

	// 组装各层
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Material{},
		&entity.StockRecord{},
		&entity.StockMovement{},
		&entity.MaterialRequisition{},
		&entity.ProcurementOrder{},
		&entity.MaterialRequirement{},
		&entity.Supplier{},
		&entity.SupplierContact{},
		&entity.Project{},
		&entity.ProjectPhase{},
		&entity.Task{},
		&entity.SafetyIncident{},
		&entity.SafetyInspection{},
		&entity.TrainingRecord{},
		&entity.ActivityLog{},
	)
}

// seedAdmin 首次启动创建默认管理员，密码从ADMIN_PASSWORD读取
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).Where("role = ?", entity.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := config.GetEnvOrDefault("ADMIN_PASSWORD", "changeme123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&entity.User{
		ID:           uuid.New().String()[:32],
		Username:     "admin",
		Name:         "系统管理员",
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
	}).Error
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")

	// 公开接口
	v1.POST("/auth/login", h.Auth.Login)

	// 认证接口
	auth := v1.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		auth.GET("/auth/me", h.Auth.Me)
		auth.POST("/users", middleware.RequireRole(entity.RoleAdmin), h.Auth.CreateUser)

		// 物料主数据
		auth.GET("/materials", h.Material.List)
		auth.GET("/materials/:id", h.Material.Get)
		auth.POST("/materials", middleware.RequireRole(entity.RoleWarehouse, entity.RoleProcurement), h.Material.Create)
		auth.PUT("/materials/:id", middleware.RequireRole(entity.RoleWarehouse, entity.RoleProcurement), h.Material.Update)
		auth.DELETE("/materials/:id", middleware.RequireRole(entity.RoleWarehouse), h.Material.Delete)
		auth.POST("/materials/:id/deactivate", middleware.RequireRole(entity.RoleWarehouse), h.Material.Deactivate)
		auth.POST("/materials/:id/activate", middleware.RequireRole(entity.RoleWarehouse), h.Material.Activate)

		// 库存（只读）
		auth.GET("/stock", h.Stock.List)
		auth.GET("/stock/alerts", h.Stock.Alerts)
		auth.GET("/stock/:materialId/available", h.Stock.Available)
		auth.GET("/stock/:materialId/movements", h.Stock.Movements)

		// 领料单
		auth.GET("/requisitions", h.Requisition.List)
		auth.GET("/requisitions/:id", h.Requisition.Get)
		auth.GET("/requisitions/:id/activity", h.Requisition.Activity)
		auth.POST("/requisitions", h.Requisition.Create)
		auth.POST("/requisitions/:id/approve", middleware.RequireRole(entity.RoleManager), h.Requisition.Approve)
		auth.POST("/requisitions/:id/reject", middleware.RequireRole(entity.RoleManager), h.Requisition.Reject)
		auth.POST("/requisitions/:id/cancel", h.Requisition.Cancel)
		auth.POST("/requisitions/:id/deliver", middleware.RequireRole(entity.RoleWarehouse), h.Requisition.Deliver)

		// 需求计划
		auth.GET("/requirements", h.Procurement.ListRequirements)
		auth.GET("/requirements/:id", h.Procurement.GetRequirement)
		auth.POST("/requirements", middleware.RequireRole(entity.RoleManager, entity.RoleProcurement), h.Procurement.CreateRequirement)
		auth.PUT("/requirements/:id", middleware.RequireRole(entity.RoleManager, entity.RoleProcurement), h.Procurement.UpdateRequirement)

		// 采购订单
		auth.GET("/orders", h.Procurement.ListOrders)
		auth.GET("/orders/:id", h.Procurement.GetOrder)
		auth.GET("/orders/:id/activity", h.Procurement.OrderActivity)
		auth.POST("/orders", middleware.RequireRole(entity.RoleProcurement), h.Procurement.CreateOrder)
		auth.PUT("/orders/:id", middleware.RequireRole(entity.RoleProcurement), h.Procurement.UpdateOrder)
		auth.POST("/orders/:id/approve", middleware.RequireRole(entity.RoleManager), h.Procurement.ApproveOrder)
		auth.POST("/orders/:id/reject", middleware.RequireRole(entity.RoleManager), h.Procurement.RejectOrder)
		auth.POST("/orders/:id/receive", middleware.RequireRole(entity.RoleWarehouse), h.Procurement.ReceiveOrder)

		// 供应商
		auth.GET("/suppliers", h.Supplier.List)
		auth.GET("/suppliers/:id", h.Supplier.Get)
		auth.POST("/suppliers", middleware.RequireRole(entity.RoleProcurement), h.Supplier.Create)
		auth.PUT("/suppliers/:id", middleware.RequireRole(entity.RoleProcurement), h.Supplier.Update)
		auth.POST("/suppliers/:id/rate", middleware.RequireRole(entity.RoleProcurement), h.Supplier.Rate)
		auth.POST("/suppliers/:id/active", middleware.RequireRole(entity.RoleProcurement), h.Supplier.SetActive)

		// 项目与进度
		auth.GET("/projects", h.Project.List)
		auth.GET("/projects/:id", h.Project.Get)
		auth.POST("/projects", middleware.RequireRole(entity.RoleManager), h.Project.Create)
		auth.PUT("/projects/:id", middleware.RequireRole(entity.RoleManager), h.Project.Update)
		auth.POST("/projects/:id/phases", middleware.RequireRole(entity.RoleManager), h.Project.CreatePhase)
		auth.POST("/phases/:id/tasks", middleware.RequireRole(entity.RoleManager), h.Project.CreateTask)
		auth.PUT("/tasks/:id/progress", h.Project.UpdateTaskProgress)

		// 安全管理
		auth.GET("/safety/incidents", h.Safety.ListIncidents)
		auth.GET("/safety/incidents/:id", h.Safety.GetIncident)
		auth.POST("/safety/incidents", h.Safety.ReportIncident)
		auth.PUT("/safety/incidents/:id/status", middleware.RequireRole(entity.RoleSafety), h.Safety.UpdateIncidentStatus)
		auth.GET("/safety/inspections", h.Safety.ListInspections)
		auth.POST("/safety/inspections", middleware.RequireRole(entity.RoleSafety), h.Safety.CreateInspection)
		auth.GET("/safety/trainings", h.Safety.ListTrainings)
		auth.POST("/safety/trainings", middleware.RequireRole(entity.RoleSafety), h.Safety.CreateTraining)

		// 看板
		auth.GET("/dashboard", h.Dashboard.Overview)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})
}
