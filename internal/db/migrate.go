package db

import (
	"fmt"

	"github.com/davrell/switchboard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model backing a record store.
func AllModels() []interface{} {
	return []interface{}{
		&models.Message{},
		&models.Subscription{},
		&models.Workflow{},
		&models.BackgroundTask{},
		&models.SessionLabels{},
	}
}

// AutoMigrate creates or updates all record store tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
