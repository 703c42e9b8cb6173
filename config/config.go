package config

import (
	"os"

	"order-tracking-api/models"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret = []byte(GetEnv("JWT_SECRET", "order_tracking_super_secret_2024"))

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the sqlite database and migrates all models
func InitDB() {
	OpenDB(GetEnv("DB_PATH", "order_tracking.db"))
}

// OpenDB opens (or creates) the database at the given path and assigns the
// package-level handle. Split out from InitDB so tests can point it at a
// throwaway file.
func OpenDB(path string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.History{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	log.Info("✅ Database connected and migrated successfully")
}
