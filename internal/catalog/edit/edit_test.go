package edit

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// fixture: two subjects, each with two sections of two contents.
func fixture() *catalog.Batch {
	b := &catalog.Batch{ID: "b", Name: "Batch", Layout: catalog.LayoutGrid}
	for s := 0; s < 2; s++ {
		subj := &catalog.Subject{ID: fmt.Sprintf("s%d", s), Name: fmt.Sprintf("Subject %d", s), Thumbnail: "orig"}
		for t := 0; t < 2; t++ {
			sec := &catalog.Section{ID: fmt.Sprintf("s%d-t%d", s, t), Name: "Sec", Type: catalog.SectionVideo}
			for c := 0; c < 2; c++ {
				sec.Contents = append(sec.Contents, &catalog.Content{
					ID:        fmt.Sprintf("s%d-t%d-c%d", s, t, c),
					Title:     "Item",
					URL:       "u",
					Type:      catalog.SectionVideo,
					Thumbnail: "orig",
				})
			}
			subj.Sections = append(subj.Sections, sec)
		}
		b.Subjects = append(b.Subjects, subj)
	}
	return b
}

func seq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

// walk visits every non-nil content in tree order.
func walk(b *catalog.Batch, fn func(subject, section, content int, c *catalog.Content)) {
	for si, sub := range b.Subjects {
		if sub == nil {
			continue
		}
		for ti, sec := range sub.Sections {
			if sec == nil {
				continue
			}
			for ci, c := range sec.Contents {
				if c != nil {
					fn(si, ti, ci, c)
				}
			}
		}
	}
}

func mustPath(t *testing.T, raw string) Path {
	t.Helper()
	p, err := ParsePath(raw)
	if err != nil {
		t.Fatalf("ParsePath(%q): %v", raw, err)
	}
	return p
}

func TestParsePathAndJSON(t *testing.T) {
	p := mustPath(t, "subjects.1.sections.0.name")
	want := Path{F("subjects"), I(1), F("sections"), I(0), F("name")}
	if !p.Equal(want) {
		t.Fatalf("ParsePath: want=%v got=%v", want, p)
	}
	if p.String() != "subjects.1.sections.0.name" {
		t.Fatalf("String: got=%s", p.String())
	}

	var fromArray, fromString Path
	if err := json.Unmarshal([]byte(`["subjects", 1, "sections", 0, "name"]`), &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if err := json.Unmarshal([]byte(`"subjects.1.sections.0.name"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !fromArray.Equal(want) || !fromString.Equal(want) {
		t.Fatalf("json forms: array=%v string=%v", fromArray, fromString)
	}
	if _, err := PathFromJSON([]any{"subjects", 1.5}); err == nil {
		t.Fatalf("fractional index should fail")
	}
	if _, err := ParsePath("subjects..name"); err == nil {
		t.Fatalf("empty segment should fail")
	}
	raw, _ := json.Marshal(want)
	if string(raw) != `["subjects",1,"sections",0,"name"]` {
		t.Fatalf("marshal: got=%s", raw)
	}
}

func TestSetLeafSharesUntouchedSubtrees(t *testing.T) {
	b := fixture()
	out, err := Set(b, mustPath(t, "subjects.1.sections.0.contents.1.title"), "Renamed")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out == b {
		t.Fatalf("root must be copied")
	}
	if got := out.Subjects[1].Sections[0].Contents[1].Title; got != "Renamed" {
		t.Fatalf("title: want=Renamed got=%s", got)
	}
	if b.Subjects[1].Sections[0].Contents[1].Title != "Item" {
		t.Fatalf("original tree was mutated")
	}
	// off-path subtrees are the same pointers
	if out.Subjects[0] != b.Subjects[0] {
		t.Fatalf("subject 0 should be shared")
	}
	if out.Subjects[1].Sections[1] != b.Subjects[1].Sections[1] {
		t.Fatalf("section 1 of subject 1 should be shared")
	}
	if out.Subjects[1].Sections[0].Contents[0] != b.Subjects[1].Sections[0].Contents[0] {
		t.Fatalf("sibling content should be shared")
	}
	// on-path nodes are fresh copies
	if out.Subjects[1] == b.Subjects[1] || out.Subjects[1].Sections[0] == b.Subjects[1].Sections[0] {
		t.Fatalf("ancestors on the path must be copied")
	}
}

func TestSetBatchFields(t *testing.T) {
	b := fixture()
	cases := []struct {
		path  string
		value any
		check func(*catalog.Batch) bool
	}{
		{"name", "Renamed", func(o *catalog.Batch) bool { return o.Name == "Renamed" }},
		{"description", "desc", func(o *catalog.Batch) bool { return o.Description == "desc" }},
		{"layout", "carousel", func(o *catalog.Batch) bool { return o.Layout == catalog.LayoutCarousel }},
		{"isActive", false, func(o *catalog.Batch) bool { return !o.IsActive }},
		{"enrolledStudents", float64(42), func(o *catalog.Batch) bool { return o.EnrolledStudents == 42 }},
		{"thumbnail", json.RawMessage(`"batch.png"`), func(o *catalog.Batch) bool { return o.Thumbnail == "batch.png" }},
		{"subjects.0.sections.1.type", "quiz", func(o *catalog.Batch) bool { return o.Subjects[0].Sections[1].Type == catalog.SectionQuiz }},
	}
	for _, tc := range cases {
		out, err := Set(b, mustPath(t, tc.path), tc.value)
		if err != nil {
			t.Fatalf("Set(%s): %v", tc.path, err)
		}
		if !tc.check(out) {
			t.Fatalf("Set(%s): value not applied", tc.path)
		}
	}
}

func TestSectionTypeChangeDoesNotTouchContents(t *testing.T) {
	b := fixture()
	out, err := Set(b, mustPath(t, "subjects.0.sections.0.type"), "notes")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := out.Subjects[0].Sections[0].Contents[0].Type; got != catalog.SectionVideo {
		t.Fatalf("content type should stay video, got=%s", got)
	}
}

func TestSetWholeNode(t *testing.T) {
	b := fixture()
	out, err := Set(b, mustPath(t, "subjects.0.sections.1.contents.0"), map[string]any{
		"id": "replacement", "title": "T", "url": "x", "type": "notes",
	})
	if err != nil {
		t.Fatalf("Set node: %v", err)
	}
	got := out.Subjects[0].Sections[1].Contents[0]
	if got.ID != "replacement" || got.Type != catalog.SectionNotes || got.Title != "T" {
		t.Fatalf("node: %+v", got)
	}

	list := []*catalog.Content{{ID: "only", Title: "x", Type: catalog.SectionVideo}}
	out, err = Set(b, mustPath(t, "subjects.1.sections.1.contents"), list)
	if err != nil {
		t.Fatalf("Set collection: %v", err)
	}
	if len(out.Subjects[1].Sections[1].Contents) != 1 {
		t.Fatalf("collection not replaced")
	}
}

func TestSetStructuralErrors(t *testing.T) {
	b := fixture()
	paths := []string{
		"subjects.5.name",
		"subjects.-1.name",
		"subjects.0.sections.9.contents.0.title",
		"subjects.0.colour",
		"subjects.name",
		"0",
		"name.first",
		"id",
		"subjects.0.sections.0.contents.0.id",
		"createdAt",
	}
	for _, raw := range paths {
		_, err := Set(b, mustPath(t, raw), "x")
		var se *catalog.StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("Set(%s): want StructuralError, got %v", raw, err)
		}
	}
	if _, err := Set(b, nil, "x"); !catalog.IsStructural(err) {
		t.Fatalf("empty path: want StructuralError, got %v", err)
	}
}

func TestSetValidationErrors(t *testing.T) {
	b := fixture()
	cases := []struct {
		path  string
		value any
	}{
		{"layout", "zigzag"},
		{"subjects.0.sections.0.type", "podcast"},
		{"enrolledStudents", -3},
		{"enrolledStudents", "many"},
		{"isActive", "yes"},
		{"name", nil},
	}
	for _, tc := range cases {
		if _, err := Set(b, mustPath(t, tc.path), tc.value); !catalog.IsValidation(err) {
			t.Fatalf("Set(%s, %v): want ValidationError, got %v", tc.path, tc.value, err)
		}
	}
}

func TestSubjectThumbnailCascades(t *testing.T) {
	b := fixture()
	out, err := Set(b, Path{F("subjects"), I(0), F("thumbnail")}, "V")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out.Subjects[0].Thumbnail != "V" {
		t.Fatalf("subject thumbnail not set")
	}
	walk(out, func(s, _, _ int, c *catalog.Content) {
		want := "orig"
		if s == 0 {
			want = "V"
		}
		if c.Thumbnail != want {
			t.Fatalf("content %s: want=%s got=%s", c.ID, want, c.Thumbnail)
		}
	})
	if out.Subjects[1] != b.Subjects[1] {
		t.Fatalf("other subject must be untouched")
	}
	walk(b, func(_, _, _ int, c *catalog.Content) {
		if c.Thumbnail != "orig" {
			t.Fatalf("original tree mutated at %s", c.ID)
		}
	})
}

func TestCascadeFiresOnEveryPartialEdit(t *testing.T) {
	b := fixture()
	cur := b
	for _, partial := range []string{"h", "ht", "htt"} {
		var err error
		cur, err = Set(cur, mustPath(t, "subjects.1.thumbnail"), partial)
		if err != nil {
			t.Fatalf("Set: %v", err)
		}
		if got := cur.Subjects[1].Sections[1].Contents[1].Thumbnail; got != partial {
			t.Fatalf("after %q: content thumbnail=%q", partial, got)
		}
	}
}

func TestNonSubjectThumbnailDoesNotCascade(t *testing.T) {
	b := fixture()
	out, err := Set(b, mustPath(t, "thumbnail"), "batch.png")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out.Subjects[0] != b.Subjects[0] {
		t.Fatalf("batch thumbnail must not touch subjects")
	}
	out, err = Set(b, mustPath(t, "subjects.0.sections.0.contents.0.thumbnail"), "one.png")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if out.Subjects[0].Sections[0].Contents[1].Thumbnail != "orig" {
		t.Fatalf("content thumbnail must not cascade to siblings")
	}
}

func TestGet(t *testing.T) {
	b := fixture()
	v, err := Get(b, mustPath(t, "subjects.1.sections.0.contents.1.id"))
	if err != nil || v != "s1-t0-c1" {
		t.Fatalf("Get id: v=%v err=%v", v, err)
	}
	node, err := Get(b, mustPath(t, "subjects.0"))
	if err != nil || node != b.Subjects[0] {
		t.Fatalf("Get node: %v %v", node, err)
	}
	if _, err := Get(b, mustPath(t, "subjects.3")); !catalog.IsStructural(err) {
		t.Fatalf("Get out of range: want StructuralError got %v", err)
	}
	if _, err := Get(b, mustPath(t, "name.x")); !catalog.IsStructural(err) {
		t.Fatalf("Get into leaf: want StructuralError got %v", err)
	}
}

func TestAddNodes(t *testing.T) {
	b := fixture()
	b.Subjects[1].Thumbnail = "subject1.png"
	b.Subjects[1].Sections[1].Type = catalog.SectionAssignment
	ids := seq()

	out, s, err := AddSubject(b, ids)
	if err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	if len(out.Subjects) != 3 || out.Subjects[2] != s || s.ID != "new-1" || s.Name != catalog.DefaultSubjectName {
		t.Fatalf("AddSubject: %+v", s)
	}
	if len(b.Subjects) != 2 {
		t.Fatalf("original mutated")
	}

	out, sec, err := AddSection(out, 0, ids)
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	if len(out.Subjects[0].Sections) != 3 || sec.Type != catalog.SectionVideo || sec.ID != "new-2" {
		t.Fatalf("AddSection: %+v", sec)
	}

	out, c, err := AddContent(out, 1, 1, ids)
	if err != nil {
		t.Fatalf("AddContent: %v", err)
	}
	if c.Type != catalog.SectionAssignment || c.Thumbnail != "subject1.png" {
		t.Fatalf("AddContent should inherit context: %+v", c)
	}
	contents := out.Subjects[1].Sections[1].Contents
	if contents[len(contents)-1] != c {
		t.Fatalf("content must be appended at the end")
	}
	if _, _, err := AddContent(out, 9, 0, ids); !catalog.IsStructural(err) {
		t.Fatalf("AddContent bad subject: %v", err)
	}
}

func TestAppendDoesNotAliasOlderSnapshot(t *testing.T) {
	b := fixture()
	b.Subjects = append(make([]*catalog.Subject, 0, 8), b.Subjects...)
	ids := seq()
	first, _, _ := AddSubject(b, ids)
	second, _, _ := AddSubject(b, ids)
	if first.Subjects[2] == second.Subjects[2] {
		t.Fatalf("two snapshots derived from the same parent share an appended slot")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	b := fixture()
	if _, err := DeleteSubject(b, 0, Unconfirmed); !errors.Is(err, catalog.ErrNotConfirmed) {
		t.Fatalf("DeleteSubject unconfirmed: %v", err)
	}
	if _, err := DeleteSection(b, 0, 0, Unconfirmed); !errors.Is(err, catalog.ErrNotConfirmed) {
		t.Fatalf("DeleteSection unconfirmed: %v", err)
	}
	out, err := DeleteSubject(b, 0, Confirmed)
	if err != nil {
		t.Fatalf("DeleteSubject: %v", err)
	}
	if len(out.Subjects) != 1 || out.Subjects[0] != b.Subjects[1] {
		t.Fatalf("DeleteSubject: remaining=%v", out.Subjects)
	}
	remaining := 0
	walk(out, func(_, _, _ int, _ *catalog.Content) { remaining++ })
	if remaining != 4 {
		t.Fatalf("descendants of the removed subject must be gone")
	}
	out, err = DeleteSection(b, 1, 0, Confirmed)
	if err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if len(out.Subjects[1].Sections) != 1 || out.Subjects[1].Sections[0].ID != "s1-t1" {
		t.Fatalf("DeleteSection: %+v", out.Subjects[1].Sections)
	}
	if _, err := DeleteSubject(b, 7, Confirmed); !catalog.IsStructural(err) {
		t.Fatalf("DeleteSubject out of range: %v", err)
	}
}

func TestDeleteContent(t *testing.T) {
	b := fixture()
	out, err := DeleteContent(b, 0, 1, 0)
	if err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	contents := out.Subjects[0].Sections[1].Contents
	if len(contents) != 1 || contents[0].ID != "s0-t1-c1" {
		t.Fatalf("DeleteContent: %+v", contents)
	}
	if len(b.Subjects[0].Sections[1].Contents) != 2 {
		t.Fatalf("original mutated")
	}
	if _, err := DeleteContent(b, 0, 1, 2); !catalog.IsStructural(err) {
		t.Fatalf("DeleteContent out of range: %v", err)
	}
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelection()
	if !s.Toggle("a") || !s.Toggle("b") || !s.Toggle("c") {
		t.Fatalf("first toggles should select")
	}
	if s.Toggle("b") {
		t.Fatalf("second toggle should deselect")
	}
	ids := s.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" || s.Has("b") {
		t.Fatalf("ids: %v", ids)
	}
}

func TestBulkApplyThumbnail(t *testing.T) {
	b := fixture()
	sel := NewSelection()
	sel.Toggle("s0-t0-c0")
	sel.Toggle("s1-t1-c1")
	out, err := BulkApplyThumbnail(b, sel, "T")
	if err != nil {
		t.Fatalf("BulkApplyThumbnail: %v", err)
	}
	changed := 0
	walk(out, func(_, _, _ int, c *catalog.Content) {
		switch c.ID {
		case "s0-t0-c0", "s1-t1-c1":
			if c.Thumbnail != "T" {
				t.Fatalf("%s: want=T got=%s", c.ID, c.Thumbnail)
			}
			changed++
		default:
			if c.Thumbnail != "orig" {
				t.Fatalf("%s should be untouched, got=%s", c.ID, c.Thumbnail)
			}
		}
	})
	if changed != 2 {
		t.Fatalf("changed: want=2 got=%d", changed)
	}
	if sel.Len() != 0 {
		t.Fatalf("selection should be cleared")
	}
	if out.Subjects[0].Sections[1] != b.Subjects[0].Sections[1] || out.Subjects[1].Sections[0] != b.Subjects[1].Sections[0] {
		t.Fatalf("sections without selected content should be shared")
	}
	if out.Subjects[0].Sections[0].Contents[1] != b.Subjects[0].Sections[0].Contents[1] {
		t.Fatalf("unselected sibling content should be shared")
	}
}

func TestBulkApplyValidation(t *testing.T) {
	b := fixture()
	sel := NewSelection()
	if _, err := BulkApplyThumbnail(b, sel, "T"); !catalog.IsValidation(err) {
		t.Fatalf("empty selection: %v", err)
	}
	sel.Toggle("s0-t0-c0")
	if _, err := BulkApplyThumbnail(b, sel, "   "); !catalog.IsValidation(err) {
		t.Fatalf("blank value: %v", err)
	}
	if sel.Len() != 1 {
		t.Fatalf("failed bulk apply must keep the selection")
	}
}

func TestEditorDiscardAndAtomicity(t *testing.T) {
	b := fixture()
	e := NewEditor(b, seq())
	if _, err := e.Set(mustPath(t, "name"), "Draft"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	before := e.Batch()
	if _, err := e.Set(mustPath(t, "subjects.9.name"), "x"); err == nil {
		t.Fatalf("bad path should fail")
	}
	if e.Batch() != before {
		t.Fatalf("failed edit must not change the snapshot")
	}
	if !e.Dirty() {
		t.Fatalf("editor should be dirty")
	}
	e.ToggleSelection("s0-t0-c0")
	if got := e.Discard(); got != b || len(e.Selection()) != 0 {
		t.Fatalf("Discard should restore the committed snapshot and clear selection")
	}
}

func TestEditorRejectsDuplicateIDs(t *testing.T) {
	e := NewEditor(fixture(), seq())
	_, err := e.Set(mustPath(t, "subjects.0.sections.0.contents.0"), map[string]any{
		"id": "s1-t1-c1", "title": "dup", "type": "video",
	})
	if !catalog.IsValidation(err) {
		t.Fatalf("want ValidationError for duplicate id, got %v", err)
	}
}

func TestEditorCommit(t *testing.T) {
	e := NewEditor(fixture(), seq())
	if _, _, err := e.AddSubject(); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	e.Commit()
	committed := e.Batch()
	if _, err := e.DeleteSubject(2, Confirmed); err != nil {
		t.Fatalf("DeleteSubject: %v", err)
	}
	if e.Discard() != committed {
		t.Fatalf("Discard should return to the committed snapshot")
	}
}

func TestSetRejectsJSONNull(t *testing.T) {
	null := json.RawMessage("null")
	for _, path := range []string{"name", "isActive", "subjects.0.thumbnail", "subjects", "subjects.0.sections"} {
		b := fixture()
		e := NewEditor(b, seq())
		if _, err := e.Set(mustPath(t, path), null); !catalog.IsValidation(err) {
			t.Fatalf("Set(%s, null): want=ValidationError got=%v", path, err)
		}
		if e.Batch() != b {
			t.Fatalf("Set(%s, null): tree replaced", path)
		}
		if len(b.Subjects) != 2 || len(b.Subjects[0].Sections) != 2 {
			t.Fatalf("Set(%s, null): subjects=%d", path, len(b.Subjects))
		}
	}
	// Padded null is still null.
	if _, err := Set(fixture(), mustPath(t, "subjects"), json.RawMessage(" null\n")); !catalog.IsValidation(err) {
		t.Fatalf("Set(subjects, padded null): want=ValidationError got=%v", err)
	}
}
