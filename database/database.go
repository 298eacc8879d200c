package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photosync/models"
)

// InitGormDB initializes and returns a GORM database instance
func InitGormDB(dataSourceName string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	// single writer; WAL keeps the occasional concurrent reader happy
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("GORM Database initialized successfully at", dataSourceName)
	return db, nil
}

// AutoMigrateModels can be called after InitGormDB to migrate schemas
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Album{},
		&models.MediaItem{},
		&models.AlbumFile{},
		&models.SyncRun{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	return nil
}
