package catalog

import (
	"fmt"
	"strings"
)

// Validate checks the invariants a stored or imported batch must satisfy:
// every node has an id, ids are unique across the tree and all enums hold
// known values.
func (b *Batch) Validate() error {
	if b == nil {
		return &ValidationError{Reason: "batch is nil"}
	}
	if _, ok := ParseLayout(string(b.Layout)); !ok {
		return &ValidationError{Field: "layout", Reason: fmt.Sprintf("unknown layout %q", b.Layout)}
	}
	if b.EnrolledStudents < 0 {
		return &ValidationError{Field: "enrolledStudents", Reason: "must not be negative"}
	}
	seen := map[string]string{}
	claim := func(id, where string) error {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Field: where + ".id", Reason: "missing id"}
		}
		if prev, dup := seen[id]; dup {
			return &ValidationError{Field: where + ".id", Reason: fmt.Sprintf("duplicate id %q (also at %s)", id, prev)}
		}
		seen[id] = where
		return nil
	}
	if err := claim(b.ID, "batch"); err != nil {
		return err
	}
	for si, s := range b.Subjects {
		where := fmt.Sprintf("subjects.%d", si)
		if s == nil {
			return &ValidationError{Field: where, Reason: "nil subject"}
		}
		if err := claim(s.ID, where); err != nil {
			return err
		}
		for ti, sec := range s.Sections {
			where := fmt.Sprintf("subjects.%d.sections.%d", si, ti)
			if sec == nil {
				return &ValidationError{Field: where, Reason: "nil section"}
			}
			if err := claim(sec.ID, where); err != nil {
				return err
			}
			if _, ok := ParseSectionType(string(sec.Type)); !ok {
				return &ValidationError{Field: where + ".type", Reason: fmt.Sprintf("unknown type %q", sec.Type)}
			}
			for ci, c := range sec.Contents {
				where := fmt.Sprintf("subjects.%d.sections.%d.contents.%d", si, ti, ci)
				if c == nil {
					return &ValidationError{Field: where, Reason: "nil content"}
				}
				if err := claim(c.ID, where); err != nil {
					return err
				}
				if _, ok := ParseSectionType(string(c.Type)); !ok {
					return &ValidationError{Field: where + ".type", Reason: fmt.Sprintf("unknown type %q", c.Type)}
				}
			}
		}
	}
	return nil
}
