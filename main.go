package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/glimmerline/jewelry-api/config"
	ordercontroller "github.com/glimmerline/jewelry-api/controllers/order"
	"github.com/glimmerline/jewelry-api/middleware"
	"github.com/glimmerline/jewelry-api/models"
	"github.com/glimmerline/jewelry-api/routes"
	"github.com/glimmerline/jewelry-api/services/checkoutlock"
	"github.com/glimmerline/jewelry-api/services/telegram"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log.Level)
	defer logger.Sync()

	db := initDatabase(cfg, logger)

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	// Checkout serialization: redis lock across instances when configured,
	// in-process locks otherwise.
	var locker checkoutlock.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = checkoutlock.NewRedisLocker(rdb, 30*time.Second)
		logger.Info("using redis checkout lock", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = checkoutlock.NewLocalLocker()
		logger.Info("using in-process checkout lock")
	}

	// Notification pipeline: formatting + delivery behind a background
	// dispatcher so checkout never waits on Telegram.
	telegramService := telegram.NewService(cfg.Telegram, logger)
	dispatcher := telegram.NewDispatcher(telegramService, cfg.Telegram.QueueSize, cfg.Telegram.SendTimeout, logger)
	defer dispatcher.Close()

	checkout := ordercontroller.NewCheckout(db, locker, dispatcher, logger)

	// Gin setup
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics())
	r.Use(middleware.Session())

	routes.SetupRoutes(r, db, checkout)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// initLogger builds the process logger at the configured level.
func initLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// initDatabase sets up the GORM DB connection.
func initDatabase(cfg *config.Config, logger *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	return db
}
