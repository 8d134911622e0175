package app

import (
	"context"
	"errors"
	"fmt"

	"modpanel_backend/database"
	"modpanel_backend/internal/auth"
	"modpanel_backend/internal/config"
	"modpanel_backend/internal/handlers"
	"modpanel_backend/internal/logger"
	"modpanel_backend/internal/middleware"
	"modpanel_backend/internal/models"
	"modpanel_backend/internal/repositories"
	"modpanel_backend/internal/routes"
	"modpanel_backend/internal/services"
	"modpanel_backend/internal/validator"
	"modpanel_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(gormDB)

	// Фоновый воркер: истечение ключей + чистка журнала сбросов
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := workers.NewKeyExpiryWorker(gormDB, repositories.NewKeyRepository(), repositories.NewDeviceRepository())
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(gormDB *gorm.DB) *gin.Engine {
	serviceContainer := services.NewServiceContainer()
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeHandlers(sc *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, sc.Auth),
		UserHandler:     handlers.NewUserHandler(baseHandler, sc.User, sc.Device),
		ModHandler:      handlers.NewModHandler(baseHandler, sc.Mod),
		KeyHandler:      handlers.NewKeyHandler(baseHandler, sc.Key),
		PurchaseHandler: handlers.NewPurchaseHandler(baseHandler, sc.Purchase),
		ReferralHandler: handlers.NewReferralHandler(baseHandler, sc.Referral),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin создает первого администратора из конфигурации,
// если пользователя с таким именем еще нет.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminUsername := cfg.FirstAdminUsername
	adminPassword := cfg.FirstAdminPassword

	if adminUsername == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_USERNAME or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var existing models.User
	result := db.Where("username = ?", adminUsername).First(&existing)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "username", adminUsername)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "username", adminUsername)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Username:     adminUsername,
		PasswordHash: hashedPassword,
		IsAdmin:      true,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "username", adminUsername)
	return nil
}
