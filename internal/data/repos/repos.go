package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/data/repos/batches"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

type BatchRepo = batches.BatchRepo

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return batches.NewBatchRepo(db, baseLog)
}
