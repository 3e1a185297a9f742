package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Layout string

const (
	LayoutGrid     Layout = "grid"
	LayoutList     Layout = "list"
	LayoutCarousel Layout = "carousel"
)

func ParseLayout(raw string) (Layout, bool) {
	switch l := Layout(raw); l {
	case LayoutGrid, LayoutList, LayoutCarousel:
		return l, true
	default:
		return "", false
	}
}

const (
	DefaultBatchName   = "Untitled Batch"
	DefaultSubjectName = "New Subject"
	DefaultSectionName = "New Section"
	DefaultContentName = "New Content"
)

// Batch is the root of the catalog tree. Children are held by pointer so that
// edits can share untouched subtrees between snapshots; a snapshot is never
// mutated once published.
type Batch struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Thumbnail        string     `json:"thumbnail"`
	Layout           Layout     `json:"layout"`
	Subjects         []*Subject `json:"subjects"`
	CreatedAt        time.Time  `json:"createdAt"`
	IsActive         bool       `json:"isActive"`
	EnrolledStudents int        `json:"enrolledStudents"`
}

type Subject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Thumbnail string     `json:"thumbnail"`
	Sections  []*Section `json:"sections"`
}

type Section struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     SectionType `json:"type"`
	Contents []*Content  `json:"contents"`
}

// Content.Type is copied from the owning Section when the Content is created
// and is not kept in sync afterwards.
type Content struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	URL       string      `json:"url"`
	Type      SectionType `json:"type"`
	Thumbnail string      `json:"thumbnail,omitempty"`
}

// NewID is the default id source for every node.
func NewID() string { return uuid.NewString() }

func NewBatch(id string, now time.Time) *Batch {
	return &Batch{
		ID:        id,
		Name:      DefaultBatchName,
		Layout:    LayoutGrid,
		Subjects:  []*Subject{},
		CreatedAt: now.UTC(),
		IsActive:  true,
	}
}

func NewSubject(id string) *Subject {
	return &Subject{ID: id, Name: DefaultSubjectName, Sections: []*Section{}}
}

func NewSection(id string) *Section {
	return &Section{ID: id, Name: DefaultSectionName, Type: SectionVideo, Contents: []*Content{}}
}

// NewContent seeds type and thumbnail from the enclosing section and subject.
func NewContent(id string, subject *Subject, section *Section) *Content {
	c := &Content{ID: id, Title: DefaultContentName, Type: SectionVideo}
	if section != nil {
		c.Type = section.Type
	}
	if subject != nil {
		c.Thumbnail = subject.Thumbnail
	}
	return c
}
