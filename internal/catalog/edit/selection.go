package edit

import (
	"strings"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// Selection is a set of content ids, independent of where the contents sit
// in the tree. IDs enumerates in selection order.
type Selection struct {
	order []string
	ids   map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: map[string]struct{}{}}
}

// Toggle adds id if absent and removes it otherwise. It reports whether id is
// selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Selection) Clear() {
	s.order = nil
	s.ids = map[string]struct{}{}
}

// BulkApplyThumbnail sets the thumbnail of every selected content to value
// in a single pass and clears the selection. An empty selection or a blank
// value is a *catalog.ValidationError and leaves both b and sel untouched.
func BulkApplyThumbnail(b *catalog.Batch, sel *Selection, value string) (*catalog.Batch, error) {
	if sel == nil || sel.Len() == 0 {
		return nil, &catalog.ValidationError{Field: "selection", Reason: "no content selected"}
	}
	if strings.TrimSpace(value) == "" {
		return nil, &catalog.ValidationError{Field: "thumbnail", Reason: "value is blank"}
	}
	if b == nil {
		return nil, structural(nil, "nil batch")
	}

	out := *b
	out.Subjects = make([]*catalog.Subject, len(b.Subjects))
	for si, s := range b.Subjects {
		out.Subjects[si] = s
		if s == nil {
			continue
		}
		var sections []*catalog.Section
		for ti, sec := range s.Sections {
			if sec == nil {
				continue
			}
			var contents []*catalog.Content
			for ci, c := range sec.Contents {
				if c == nil || !sel.Has(c.ID) {
					continue
				}
				if contents == nil {
					contents = make([]*catalog.Content, len(sec.Contents))
					copy(contents, sec.Contents)
				}
				cc := *c
				cc.Thumbnail = value
				contents[ci] = &cc
			}
			if contents == nil {
				continue
			}
			if sections == nil {
				sections = make([]*catalog.Section, len(s.Sections))
				copy(sections, s.Sections)
			}
			nsec := *sec
			nsec.Contents = contents
			sections[ti] = &nsec
		}
		if sections != nil {
			ns := *s
			ns.Sections = sections
			out.Subjects[si] = &ns
		}
	}
	sel.Clear()
	return &out, nil
}
