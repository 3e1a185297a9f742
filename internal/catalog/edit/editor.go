package edit

import (
	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// Editor is one editing session over a batch. Each operation computes a new
// snapshot and swaps it in only on success, so a failed operation leaves the
// session unchanged. An Editor has a single writer and is not safe for
// concurrent use.
type Editor struct {
	current   *catalog.Batch
	committed *catalog.Batch
	selection *Selection
	newID     func() string
}

func NewEditor(b *catalog.Batch, newID func() string) *Editor {
	if newID == nil {
		newID = catalog.NewID
	}
	return &Editor{current: b, committed: b, selection: NewSelection(), newID: newID}
}

func (e *Editor) Batch() *catalog.Batch { return e.current }

func (e *Editor) NewID() string { return e.newID() }

func (e *Editor) Dirty() bool { return e.current != e.committed }

func (e *Editor) Selection() []string { return e.selection.IDs() }

// Set applies a single path update. The result must still satisfy the
// batch invariants, which matters when whole nodes are replaced.
func (e *Editor) Set(path Path, value any) (*catalog.Batch, error) {
	next, err := Set(e.current, path, value)
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

func (e *Editor) AddSubject() (*catalog.Batch, *catalog.Subject, error) {
	next, s, err := AddSubject(e.current, e.newID)
	if err != nil {
		return nil, nil, err
	}
	return e.swap(next), s, nil
}

func (e *Editor) AddSection(subject int) (*catalog.Batch, *catalog.Section, error) {
	next, sec, err := AddSection(e.current, subject, e.newID)
	if err != nil {
		return nil, nil, err
	}
	return e.swap(next), sec, nil
}

func (e *Editor) AddContent(subject, section int) (*catalog.Batch, *catalog.Content, error) {
	next, c, err := AddContent(e.current, subject, section, e.newID)
	if err != nil {
		return nil, nil, err
	}
	return e.swap(next), c, nil
}

func (e *Editor) AppendSections(subject int, sections []*catalog.Section) (*catalog.Batch, error) {
	next, err := AppendSections(e.current, subject, sections)
	if err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

func (e *Editor) DeleteSubject(subject int, confirm Confirmation) (*catalog.Batch, error) {
	next, err := DeleteSubject(e.current, subject, confirm)
	if err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

func (e *Editor) DeleteSection(subject, section int, confirm Confirmation) (*catalog.Batch, error) {
	next, err := DeleteSection(e.current, subject, section, confirm)
	if err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

func (e *Editor) DeleteContent(subject, section, content int) (*catalog.Batch, error) {
	next, err := DeleteContent(e.current, subject, section, content)
	if err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

func (e *Editor) ToggleSelection(contentID string) bool {
	return e.selection.Toggle(contentID)
}

func (e *Editor) BulkApplyThumbnail(value string) (*catalog.Batch, error) {
	next, err := BulkApplyThumbnail(e.current, e.selection, value)
	if err != nil {
		return nil, err
	}
	return e.swap(next), nil
}

// Commit marks the current snapshot as the one Discard returns to.
func (e *Editor) Commit() { e.committed = e.current }

// Discard drops every change since the last Commit.
func (e *Editor) Discard() *catalog.Batch {
	e.current = e.committed
	e.selection.Clear()
	return e.current
}

func (e *Editor) swap(next *catalog.Batch) *catalog.Batch {
	e.current = next
	return next
}
