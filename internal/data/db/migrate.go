package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.BatchRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
