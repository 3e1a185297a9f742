package edit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// Set returns a copy of b with the node at path replaced by value. Every
// ancestor on the path is copied and every other subtree is shared with b;
// b itself is never modified.
//
// When path is subjects.<i>.thumbnail the new value is also written to the
// thumbnail of every content under that subject, in the same update. This
// fires on every such call, not only on a final commit.
//
// A path that does not resolve yields a *catalog.StructuralError, a value of
// the wrong shape a *catalog.ValidationError.
func Set(b *catalog.Batch, path Path, value any) (*catalog.Batch, error) {
	if b == nil {
		return nil, structural(path, "nil batch")
	}
	if len(path) == 0 {
		return nil, structural(path, "empty path")
	}
	out, err := setBatch(b, path, path, value)
	if err != nil {
		return nil, err
	}
	if isSubjectThumbnail(path) {
		i := path[1].index
		out.Subjects[i] = cascadeThumbnail(out.Subjects[i])
	}
	return out, nil
}

func isSubjectThumbnail(p Path) bool {
	return len(p) == 3 &&
		!p[0].isIndex && p[0].field == "subjects" &&
		p[1].isIndex &&
		!p[2].isIndex && p[2].field == "thumbnail"
}

// cascadeThumbnail expects s to be a fresh copy owned by the caller.
func cascadeThumbnail(s *catalog.Subject) *catalog.Subject {
	sections := make([]*catalog.Section, len(s.Sections))
	for i, sec := range s.Sections {
		if sec == nil {
			continue
		}
		next := *sec
		next.Contents = make([]*catalog.Content, len(sec.Contents))
		for j, c := range sec.Contents {
			if c == nil {
				continue
			}
			cc := *c
			cc.Thumbnail = s.Thumbnail
			next.Contents[j] = &cc
		}
		sections[i] = &next
	}
	s.Sections = sections
	return s
}

func setBatch(b *catalog.Batch, rest, full Path, value any) (*catalog.Batch, error) {
	head := rest[0]
	if head.isIndex {
		return nil, structural(full, "expected a batch field, got an index")
	}
	out := *b
	if head.field == "subjects" {
		subjects, err := setList(b.Subjects, rest[1:], full, value, setSubject)
		if err != nil {
			return nil, err
		}
		out.Subjects = subjects
		return &out, nil
	}
	if len(rest) > 1 {
		return nil, structural(full, fmt.Sprintf("field %q has no children", head.field))
	}
	var err error
	switch head.field {
	case "name":
		out.Name, err = decode[string](full, value)
	case "description":
		out.Description, err = decode[string](full, value)
	case "thumbnail":
		out.Thumbnail, err = decode[string](full, value)
	case "layout":
		out.Layout, err = decodeLayout(full, value)
	case "isActive":
		out.IsActive, err = decode[bool](full, value)
	case "enrolledStudents":
		out.EnrolledStudents, err = decode[int](full, value)
		if err == nil && out.EnrolledStudents < 0 {
			err = &catalog.ValidationError{Field: full.String(), Reason: "must not be negative"}
		}
	case "id", "createdAt":
		return nil, structural(full, "field is read-only")
	default:
		return nil, structural(full, fmt.Sprintf("batch has no field %q", head.field))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func setSubject(s *catalog.Subject, rest, full Path, value any) (*catalog.Subject, error) {
	head := rest[0]
	if head.isIndex {
		return nil, structural(full, "expected a subject field, got an index")
	}
	out := *s
	if head.field == "sections" {
		sections, err := setList(s.Sections, rest[1:], full, value, setSection)
		if err != nil {
			return nil, err
		}
		out.Sections = sections
		return &out, nil
	}
	if len(rest) > 1 {
		return nil, structural(full, fmt.Sprintf("field %q has no children", head.field))
	}
	var err error
	switch head.field {
	case "name":
		out.Name, err = decode[string](full, value)
	case "thumbnail":
		out.Thumbnail, err = decode[string](full, value)
	case "id":
		return nil, structural(full, "field is read-only")
	default:
		return nil, structural(full, fmt.Sprintf("subject has no field %q", head.field))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func setSection(s *catalog.Section, rest, full Path, value any) (*catalog.Section, error) {
	head := rest[0]
	if head.isIndex {
		return nil, structural(full, "expected a section field, got an index")
	}
	out := *s
	if head.field == "contents" {
		contents, err := setList(s.Contents, rest[1:], full, value, setContent)
		if err != nil {
			return nil, err
		}
		out.Contents = contents
		return &out, nil
	}
	if len(rest) > 1 {
		return nil, structural(full, fmt.Sprintf("field %q has no children", head.field))
	}
	var err error
	switch head.field {
	case "name":
		out.Name, err = decode[string](full, value)
	case "type":
		// Existing contents keep their own type.
		out.Type, err = decodeSectionType(full, value)
	case "id":
		return nil, structural(full, "field is read-only")
	default:
		return nil, structural(full, fmt.Sprintf("section has no field %q", head.field))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func setContent(c *catalog.Content, rest, full Path, value any) (*catalog.Content, error) {
	head := rest[0]
	if head.isIndex {
		return nil, structural(full, "expected a content field, got an index")
	}
	if len(rest) > 1 {
		return nil, structural(full, fmt.Sprintf("field %q has no children", head.field))
	}
	out := *c
	var err error
	switch head.field {
	case "title":
		out.Title, err = decode[string](full, value)
	case "url":
		out.URL, err = decode[string](full, value)
	case "thumbnail":
		out.Thumbnail, err = decode[string](full, value)
	case "type":
		out.Type, err = decodeSectionType(full, value)
	case "id":
		return nil, structural(full, "field is read-only")
	default:
		return nil, structural(full, fmt.Sprintf("content has no field %q", head.field))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// setList copies the slice and replaces a single element. An empty rest
// replaces the whole collection; a lone index replaces the whole element.
func setList[T any](
	items []*T,
	rest, full Path,
	value any,
	child func(*T, Path, Path, any) (*T, error),
) ([]*T, error) {
	if len(rest) == 0 {
		list, err := decode[[]*T](full, value)
		if err != nil {
			return nil, err
		}
		for i, item := range list {
			if item == nil {
				return nil, &catalog.ValidationError{Field: fmt.Sprintf("%s.%d", full, i), Reason: "null element"}
			}
		}
		return list, nil
	}
	seg := rest[0]
	if !seg.isIndex {
		return nil, structural(full, fmt.Sprintf("expected an index, got field %q", seg.field))
	}
	if seg.index < 0 || seg.index >= len(items) || items[seg.index] == nil {
		return nil, structural(full, fmt.Sprintf("index %d out of range (len %d)", seg.index, len(items)))
	}

	var updated *T
	if len(rest) == 1 {
		node, err := decode[T](full, value)
		if err != nil {
			return nil, err
		}
		updated = &node
	} else {
		var err error
		updated, err = child(items[seg.index], rest[1:], full, value)
		if err != nil {
			return nil, err
		}
	}
	out := make([]*T, len(items))
	copy(out, items)
	out[seg.index] = updated
	return out, nil
}

// decode accepts a value of the target type directly, or anything that
// round-trips through JSON into it (decoded request bodies, RawMessage).
func decode[T any](full Path, value any) (T, error) {
	var out T
	switch v := value.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, &catalog.ValidationError{Field: full.String(), Reason: "null value"}
	case nil:
		return out, &catalog.ValidationError{Field: full.String(), Reason: "null value"}
	}
	var raw []byte
	switch v := value.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return out, &catalog.ValidationError{Field: full.String(), Reason: err.Error()}
		}
		raw = b
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return out, &catalog.ValidationError{Field: full.String(), Reason: "null value"}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &catalog.ValidationError{Field: full.String(), Reason: fmt.Sprintf("want %T: %v", out, err)}
	}
	return out, nil
}

func decodeLayout(full Path, value any) (catalog.Layout, error) {
	raw, err := decode[string](full, value)
	if err != nil {
		return "", err
	}
	l, ok := catalog.ParseLayout(raw)
	if !ok {
		return "", &catalog.ValidationError{Field: full.String(), Reason: fmt.Sprintf("unknown layout %q", raw)}
	}
	return l, nil
}

func decodeSectionType(full Path, value any) (catalog.SectionType, error) {
	raw, err := decode[string](full, value)
	if err != nil {
		return "", err
	}
	t, ok := catalog.ParseSectionType(raw)
	if !ok {
		return "", &catalog.ValidationError{Field: full.String(), Reason: fmt.Sprintf("unknown type %q", raw)}
	}
	return t, nil
}

func structural(p Path, reason string) error {
	return &catalog.StructuralError{Path: p.String(), Reason: reason}
}
