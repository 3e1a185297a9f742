package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// SampleBatch builds a batch with one subject, one section and one content.
func SampleBatch(id string, createdAt time.Time) *catalog.Batch {
	b := catalog.NewBatch(id, createdAt)
	b.Name = "Batch " + id
	sub := catalog.NewSubject(id + "-sub")
	sub.Name = "Physics"
	sub.Thumbnail = "https://img.example/physics.png"
	sec := catalog.NewSection(id + "-sec")
	sec.Name = "Kinematics Video"
	c := catalog.NewContent(id+"-c", sub, sec)
	c.Title = "Lecture 1"
	c.URL = "#"
	sec.Contents = append(sec.Contents, c)
	sub.Sections = append(sub.Sections, sec)
	b.Subjects = append(b.Subjects, sub)
	return b
}

func SeedBatch(tb testing.TB, ctx context.Context, tx *gorm.DB, b *catalog.Batch) *catalog.BatchRecord {
	tb.Helper()
	rec, err := catalog.RecordFromBatch(b)
	if err != nil {
		tb.Fatalf("seed batch: %v", err)
	}
	rec.UpdatedAt = rec.CreatedAt
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed batch: %v", err)
	}
	return rec
}
