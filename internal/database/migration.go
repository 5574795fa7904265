package database

import (
	"fmt"

	"prison-records/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates the prisoners table. The sqlite file is scratch space
// for one process lifetime, so there is no versioned migration history.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Prisoner{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
