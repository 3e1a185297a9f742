package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// BatchRecord is the stored form of a Batch. The subject tree is embedded
// inline as a JSON document.
type BatchRecord struct {
	ID               string         `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	Description      string         `gorm:"column:description;type:text" json:"description"`
	Thumbnail        string         `gorm:"column:thumbnail" json:"thumbnail"`
	Layout           string         `gorm:"column:layout;not null" json:"layout"`
	Subjects         datatypes.JSON `gorm:"column:subjects" json:"subjects"`
	IsActive         bool           `gorm:"column:is_active;not null" json:"isActive"`
	EnrolledStudents int            `gorm:"column:enrolled_students;not null" json:"enrolledStudents"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null;index" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (BatchRecord) TableName() string { return "batch" }

func RecordFromBatch(b *Batch) (*BatchRecord, error) {
	if b == nil {
		return nil, fmt.Errorf("nil batch")
	}
	subjects := b.Subjects
	if subjects == nil {
		subjects = []*Subject{}
	}
	raw, err := json.Marshal(subjects)
	if err != nil {
		return nil, fmt.Errorf("encode subjects: %w", err)
	}
	return &BatchRecord{
		ID:               b.ID,
		Name:             b.Name,
		Description:      b.Description,
		Thumbnail:        b.Thumbnail,
		Layout:           string(b.Layout),
		Subjects:         datatypes.JSON(raw),
		IsActive:         b.IsActive,
		EnrolledStudents: b.EnrolledStudents,
		CreatedAt:        b.CreatedAt,
	}, nil
}

func (r *BatchRecord) ToBatch() (*Batch, error) {
	b := &Batch{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Thumbnail:        r.Thumbnail,
		Layout:           Layout(r.Layout),
		Subjects:         []*Subject{},
		CreatedAt:        r.CreatedAt,
		IsActive:         r.IsActive,
		EnrolledStudents: r.EnrolledStudents,
	}
	if len(r.Subjects) > 0 {
		if err := json.Unmarshal(r.Subjects, &b.Subjects); err != nil {
			return nil, fmt.Errorf("decode subjects of batch %s: %w", r.ID, err)
		}
	}
	return b, nil
}

// BatchPatch is a partial update; nil fields are left as they are.
type BatchPatch struct {
	Name             *string     `json:"name,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Thumbnail        *string     `json:"thumbnail,omitempty"`
	Layout           *Layout     `json:"layout,omitempty"`
	Subjects         *[]*Subject `json:"subjects,omitempty"`
	IsActive         *bool       `json:"isActive,omitempty"`
	EnrolledStudents *int        `json:"enrolledStudents,omitempty"`
}

func (p BatchPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Thumbnail == nil && p.Layout == nil &&
		p.Subjects == nil && p.IsActive == nil && p.EnrolledStudents == nil
}

// Apply returns a copy of b with the patch applied. b is not modified.
func (p BatchPatch) Apply(b *Batch) *Batch {
	out := *b
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Thumbnail != nil {
		out.Thumbnail = *p.Thumbnail
	}
	if p.Layout != nil {
		out.Layout = *p.Layout
	}
	if p.Subjects != nil {
		out.Subjects = *p.Subjects
	}
	if p.IsActive != nil {
		out.IsActive = *p.IsActive
	}
	if p.EnrolledStudents != nil {
		out.EnrolledStudents = *p.EnrolledStudents
	}
	return &out
}

// Columns maps the patch onto BatchRecord columns.
func (p BatchPatch) Columns() (map[string]any, error) {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Thumbnail != nil {
		cols["thumbnail"] = *p.Thumbnail
	}
	if p.Layout != nil {
		cols["layout"] = string(*p.Layout)
	}
	if p.Subjects != nil {
		subjects := *p.Subjects
		if subjects == nil {
			subjects = []*Subject{}
		}
		raw, err := json.Marshal(subjects)
		if err != nil {
			return nil, fmt.Errorf("encode subjects: %w", err)
		}
		cols["subjects"] = datatypes.JSON(raw)
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.EnrolledStudents != nil {
		cols["enrolled_students"] = *p.EnrolledStudents
	}
	return cols, nil
}

// PatchFromBatch builds a patch that overwrites every mutable field.
func PatchFromBatch(b *Batch) BatchPatch {
	subjects := b.Subjects
	layout := b.Layout
	return BatchPatch{
		Name:             &b.Name,
		Description:      &b.Description,
		Thumbnail:        &b.Thumbnail,
		Layout:           &layout,
		Subjects:         &subjects,
		IsActive:         &b.IsActive,
		EnrolledStudents: &b.EnrolledStudents,
	}
}
