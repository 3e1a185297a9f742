package batches

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

type BatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*catalog.BatchRecord) ([]*catalog.BatchRecord, error)
	ListNewestFirst(ctx context.Context, tx *gorm.DB) ([]*catalog.BatchRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*catalog.BatchRecord, error)
	Update(ctx context.Context, tx *gorm.DB, id string, patch catalog.BatchPatch) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	repoLog := baseLog.With("repo", "BatchRepo")
	return &batchRepo{db: db, log: repoLog, now: func() time.Time { return time.Now().UTC() }}
}

func (r *batchRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *batchRepo) Create(ctx context.Context, tx *gorm.DB, records []*catalog.BatchRecord) ([]*catalog.BatchRecord, error) {
	transaction := r.conn(tx)
	if len(records) == 0 {
		return []*catalog.BatchRecord{}, nil
	}

	now := r.now()
	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
	}
	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *batchRepo) ListNewestFirst(ctx context.Context, tx *gorm.DB) ([]*catalog.BatchRecord, error) {
	transaction := r.conn(tx)

	results := []*catalog.BatchRecord{}
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *batchRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*catalog.BatchRecord, error) {
	transaction := r.conn(tx)

	var rec catalog.BatchRecord
	err := transaction.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update writes the non-nil fields of patch. A missing id is ErrNotFound.
func (r *batchRepo) Update(ctx context.Context, tx *gorm.DB, id string, patch catalog.BatchPatch) error {
	transaction := r.conn(tx)

	cols, err := patch.Columns()
	if err != nil {
		return err
	}
	cols["updated_at"] = r.now()

	res := transaction.WithContext(ctx).
		Model(&catalog.BatchRecord{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *batchRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	transaction := r.conn(tx)

	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&catalog.BatchRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("delete of missing batch", "batch_id", id)
		return catalog.ErrNotFound
	}
	return nil
}
