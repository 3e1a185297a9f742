package edit

import (
	"fmt"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// Confirmation must be Confirmed for a container deletion to proceed.
type Confirmation bool

const (
	Confirmed   Confirmation = true
	Unconfirmed Confirmation = false
)

func AddSubject(b *catalog.Batch, newID func() string) (*catalog.Batch, *catalog.Subject, error) {
	if b == nil {
		return nil, nil, structural(Path{F("subjects")}, "nil batch")
	}
	s := catalog.NewSubject(newID())
	out := *b
	out.Subjects = appendCopy(b.Subjects, s)
	return &out, s, nil
}

func AddSection(b *catalog.Batch, subject int, newID func() string) (*catalog.Batch, *catalog.Section, error) {
	s, err := subjectAt(b, subject)
	if err != nil {
		return nil, nil, err
	}
	sec := catalog.NewSection(newID())
	ns := *s
	ns.Sections = appendCopy(s.Sections, sec)
	return replaceSubject(b, subject, &ns), sec, nil
}

// AddContent appends a content that inherits the section type and the
// subject thumbnail.
func AddContent(b *catalog.Batch, subject, section int, newID func() string) (*catalog.Batch, *catalog.Content, error) {
	s, err := subjectAt(b, subject)
	if err != nil {
		return nil, nil, err
	}
	sec, err := sectionAt(s, subject, section)
	if err != nil {
		return nil, nil, err
	}
	c := catalog.NewContent(newID(), s, sec)
	nsec := *sec
	nsec.Contents = appendCopy(sec.Contents, c)
	return replaceSection(b, subject, section, &nsec), c, nil
}

// AppendSections adds already-built sections to the end of a subject.
func AppendSections(b *catalog.Batch, subject int, sections []*catalog.Section) (*catalog.Batch, error) {
	s, err := subjectAt(b, subject)
	if err != nil {
		return nil, err
	}
	ns := *s
	ns.Sections = appendCopy(s.Sections, sections...)
	return replaceSubject(b, subject, &ns), nil
}

// DeleteSubject removes the subject with all of its sections and contents.
func DeleteSubject(b *catalog.Batch, subject int, confirm Confirmation) (*catalog.Batch, error) {
	if _, err := subjectAt(b, subject); err != nil {
		return nil, err
	}
	if confirm != Confirmed {
		return nil, catalog.ErrNotConfirmed
	}
	out := *b
	out.Subjects = removeAt(b.Subjects, subject)
	return &out, nil
}

func DeleteSection(b *catalog.Batch, subject, section int, confirm Confirmation) (*catalog.Batch, error) {
	s, err := subjectAt(b, subject)
	if err != nil {
		return nil, err
	}
	if _, err := sectionAt(s, subject, section); err != nil {
		return nil, err
	}
	if confirm != Confirmed {
		return nil, catalog.ErrNotConfirmed
	}
	ns := *s
	ns.Sections = removeAt(s.Sections, section)
	return replaceSubject(b, subject, &ns), nil
}

// DeleteContent needs no confirmation.
func DeleteContent(b *catalog.Batch, subject, section, content int) (*catalog.Batch, error) {
	s, err := subjectAt(b, subject)
	if err != nil {
		return nil, err
	}
	sec, err := sectionAt(s, subject, section)
	if err != nil {
		return nil, err
	}
	if content < 0 || content >= len(sec.Contents) {
		return nil, structural(Path{F("subjects"), I(subject), F("sections"), I(section), F("contents"), I(content)},
			fmt.Sprintf("index %d out of range (len %d)", content, len(sec.Contents)))
	}
	nsec := *sec
	nsec.Contents = removeAt(sec.Contents, content)
	return replaceSection(b, subject, section, &nsec), nil
}

func subjectAt(b *catalog.Batch, i int) (*catalog.Subject, error) {
	p := Path{F("subjects"), I(i)}
	if b == nil {
		return nil, structural(p, "nil batch")
	}
	if i < 0 || i >= len(b.Subjects) || b.Subjects[i] == nil {
		return nil, structural(p, fmt.Sprintf("index %d out of range (len %d)", i, len(b.Subjects)))
	}
	return b.Subjects[i], nil
}

func sectionAt(s *catalog.Subject, subject, i int) (*catalog.Section, error) {
	if i < 0 || i >= len(s.Sections) || s.Sections[i] == nil {
		return nil, structural(Path{F("subjects"), I(subject), F("sections"), I(i)},
			fmt.Sprintf("index %d out of range (len %d)", i, len(s.Sections)))
	}
	return s.Sections[i], nil
}

func replaceSubject(b *catalog.Batch, i int, s *catalog.Subject) *catalog.Batch {
	out := *b
	out.Subjects = make([]*catalog.Subject, len(b.Subjects))
	copy(out.Subjects, b.Subjects)
	out.Subjects[i] = s
	return &out
}

func replaceSection(b *catalog.Batch, subject, i int, sec *catalog.Section) *catalog.Batch {
	s := *b.Subjects[subject]
	s.Sections = make([]*catalog.Section, len(b.Subjects[subject].Sections))
	copy(s.Sections, b.Subjects[subject].Sections)
	s.Sections[i] = sec
	return replaceSubject(b, subject, &s)
}

// appendCopy never appends into the backing array of items, which may be
// shared with an older snapshot.
func appendCopy[T any](items []*T, add ...*T) []*T {
	out := make([]*T, 0, len(items)+len(add))
	out = append(out, items...)
	return append(out, add...)
}

func removeAt[T any](items []*T, i int) []*T {
	out := make([]*T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
