package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/data/repos"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

type Repos struct {
	Batch repos.BatchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Batch: repos.NewBatchRepo(db, log),
	}
}
