package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/augustos0204/room-stream-api/internal/config"
	"github.com/augustos0204/room-stream-api/internal/models"
)

// Connect opens the application-credential database. DB_NAME left empty
// disables the store entirely; application-key auth is then unavailable.
func Connect(cfg *config.Config) *gorm.DB {
	if cfg.DBName == "" {
		log.Println("database: DB_NAME not configured, application store disabled")
		return nil
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("database: failed to connect: %v", err)
	}

	log.Println("database: connected")
	return db
}

func AutoMigrate(db *gorm.DB) {
	if db == nil {
		return
	}
	if err := db.AutoMigrate(&models.Application{}); err != nil {
		log.Fatalf("database: failed to auto-migrate: %v", err)
	}
	log.Println("database: migrated")
}
