package edit

import (
	"fmt"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

// Get resolves path against b and returns the addressed node or field value.
// An empty path returns b.
func Get(b *catalog.Batch, path Path) (any, error) {
	if b == nil {
		return nil, structural(path, "nil batch")
	}
	var cur any = b
	for i, seg := range path {
		next, err := step(cur, seg)
		if err != nil {
			return nil, structural(path[:i+1], err.Error())
		}
		cur = next
	}
	return cur, nil
}

func step(node any, seg Segment) (any, error) {
	if seg.isIndex {
		switch list := node.(type) {
		case []*catalog.Subject:
			return index(list, seg.index)
		case []*catalog.Section:
			return index(list, seg.index)
		case []*catalog.Content:
			return index(list, seg.index)
		default:
			return nil, fmt.Errorf("cannot index into %T", node)
		}
	}
	switch n := node.(type) {
	case *catalog.Batch:
		switch seg.field {
		case "id":
			return n.ID, nil
		case "name":
			return n.Name, nil
		case "description":
			return n.Description, nil
		case "thumbnail":
			return n.Thumbnail, nil
		case "layout":
			return n.Layout, nil
		case "subjects":
			return n.Subjects, nil
		case "createdAt":
			return n.CreatedAt, nil
		case "isActive":
			return n.IsActive, nil
		case "enrolledStudents":
			return n.EnrolledStudents, nil
		}
	case *catalog.Subject:
		switch seg.field {
		case "id":
			return n.ID, nil
		case "name":
			return n.Name, nil
		case "thumbnail":
			return n.Thumbnail, nil
		case "sections":
			return n.Sections, nil
		}
	case *catalog.Section:
		switch seg.field {
		case "id":
			return n.ID, nil
		case "name":
			return n.Name, nil
		case "type":
			return n.Type, nil
		case "contents":
			return n.Contents, nil
		}
	case *catalog.Content:
		switch seg.field {
		case "id":
			return n.ID, nil
		case "title":
			return n.Title, nil
		case "url":
			return n.URL, nil
		case "type":
			return n.Type, nil
		case "thumbnail":
			return n.Thumbnail, nil
		}
	default:
		return nil, fmt.Errorf("%T has no fields", node)
	}
	return nil, fmt.Errorf("%T has no field %q", node, seg.field)
}

func index[T any](list []*T, i int) (any, error) {
	if i < 0 || i >= len(list) || list[i] == nil {
		return nil, fmt.Errorf("index %d out of range (len %d)", i, len(list))
	}
	return list[i], nil
}
