package services

import (
	"context"
	"time"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

type FolderImportResult struct {
	Batches  []*catalog.Batch `json:"batches"`
	Failures []FileFailure    `json:"failures"`
}

type ImportService interface {
	// ImportFolder groups the files by their Batch/Subject/Section path,
	// builds one batch per top-level folder and stores them all. Files that
	// fail to parse are reported and left out.
	ImportFolder(ctx context.Context, files []folder.File) (*FolderImportResult, error)
	// PreviewFolder is ImportFolder without storing anything.
	PreviewFolder(ctx context.Context, files []folder.File) *FolderImportResult
}

type importService struct {
	log        *logger.Logger
	batches    BatchService
	aggregator *folder.Aggregator
	newID      func() string
	now        func() time.Time
}

func NewImportService(baseLog *logger.Logger, batches BatchService, aggregator *folder.Aggregator) ImportService {
	return &importService{
		log:        baseLog.With("service", "ImportService"),
		batches:    batches,
		aggregator: aggregator,
		newID:      catalog.NewID,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *importService) PreviewFolder(ctx context.Context, files []folder.File) *FolderImportResult {
	cat := s.aggregator.Catalog(ctx, files)
	return &FolderImportResult{
		Batches:  cat.Build(s.newID, s.now()),
		Failures: fileFailures(cat.Failures),
	}
}

func (s *importService) ImportFolder(ctx context.Context, files []folder.File) (*FolderImportResult, error) {
	res := s.PreviewFolder(ctx, files)
	if len(res.Batches) == 0 {
		s.log.Info("folder import produced no batches", "files", len(files), "failed", len(res.Failures))
		return res, nil
	}

	stored, err := s.batches.CreateMany(ctx, res.Batches)
	if err != nil {
		return nil, err
	}
	res.Batches = stored
	s.log.Info("folder imported", "files", len(files), "batches", len(stored), "failed", len(res.Failures))
	return res, nil
}
