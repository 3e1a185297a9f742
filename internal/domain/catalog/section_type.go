package catalog

import "strings"

type SectionType string

const (
	SectionVideo      SectionType = "video"
	SectionNotes      SectionType = "notes"
	SectionAssignment SectionType = "assignment"
	SectionQuiz       SectionType = "quiz"
)

func ParseSectionType(raw string) (SectionType, bool) {
	switch t := SectionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case SectionVideo, SectionNotes, SectionAssignment, SectionQuiz:
		return t, true
	default:
		return "", false
	}
}

// Keyword order matters: the first keyword found in the name decides.
var sectionKeywords = []struct {
	keyword string
	kind    SectionType
}{
	{"video", SectionVideo},
	{"notes", SectionNotes},
	{"quiz", SectionQuiz},
	{"dpp", SectionAssignment},
	{"acp", SectionAssignment},
	{"wpp", SectionAssignment},
	{"otp", SectionAssignment},
	{"assignment", SectionAssignment},
}

// ClassifySection infers a section type from a file or section name. Names
// without a known keyword are treated as video.
func ClassifySection(name string) SectionType {
	lower := strings.ToLower(name)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.kind
		}
	}
	return SectionVideo
}
