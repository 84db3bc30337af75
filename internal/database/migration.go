package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Artist{},
		&models.Song{},
		&models.LikeRecord{},
		&models.PlayRecord{},
		&models.ProcessedWebhookEvent{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
	}

	return nil
}
