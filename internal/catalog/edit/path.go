package edit

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a named field or a list index.
type Segment struct {
	field   string
	index   int
	isIndex bool
}

func F(name string) Segment { return Segment{field: name} }

func I(i int) Segment { return Segment{index: i, isIndex: true} }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.field
}

func (s Segment) MarshalJSON() ([]byte, error) {
	if s.isIndex {
		return json.Marshal(s.index)
	}
	return json.Marshal(s.field)
}

// Path addresses one node of a batch tree from the root, e.g.
// subjects.0.sections.2.name.
type Path []Segment

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ParsePath reads the dotted form. Purely numeric segments are indexes.
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(raw, ".")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty segment in path %q", raw)
		}
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, I(n))
			continue
		}
		out = append(out, F(part))
	}
	return out, nil
}

// PathFromJSON reads the array form used by the API, e.g.
// ["subjects", 0, "thumbnail"].
func PathFromJSON(items []any) (Path, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	out := make(Path, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("segment %d: empty field name", i)
			}
			out = append(out, F(v))
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("segment %d: index %v is not an integer", i, v)
			}
			out = append(out, I(int(v)))
		case int:
			out = append(out, I(v))
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			out = append(out, I(int(n)))
		default:
			return nil, fmt.Errorf("segment %d: unsupported segment type %T", i, item)
		}
	}
	return out, nil
}

func (p *Path) UnmarshalJSON(raw []byte) error {
	var dotted string
	if err := json.Unmarshal(raw, &dotted); err == nil {
		parsed, err := ParsePath(dotted)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("path must be a string or an array: %w", err)
	}
	parsed, err := PathFromJSON(items)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
