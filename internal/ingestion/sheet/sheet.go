package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/platform/playback"
)

// Extension is the only tabular format accepted for ingestion.
const Extension = ".xlsx"

// Row is one (url, title) pair read from a sheet.
type Row struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ParseRows converts raw sheet rows. Row 0 is the header. Rows lacking a
// non-empty url or title are dropped without error, and embedded player links
// are replaced by the media url they carry.
func ParseRows(rows [][]string) []Row {
	out := make([]Row, 0, len(rows))
	for i, cells := range rows {
		if i == 0 || len(cells) < 2 {
			continue
		}
		rawURL := strings.TrimSpace(cells[0])
		title := strings.TrimSpace(cells[1])
		if rawURL == "" || title == "" {
			continue
		}
		out = append(out, Row{URL: playback.Unwrap(rawURL), Title: title})
	}
	return out
}

// ParseWorkbook reads the first sheet of an xlsx workbook. Read failures come
// back as *catalog.IOError, undecodable content as *catalog.ParseError.
func ParseWorkbook(name string, r io.Reader) ([]Row, error) {
	if r == nil {
		return nil, &catalog.IOError{File: name, Err: errors.New("nil reader")}
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &catalog.IOError{File: name, Err: err}
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &catalog.ParseError{File: name, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &catalog.ParseError{File: name, Err: errors.New("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &catalog.ParseError{File: name, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	return ParseRows(rows), nil
}

// IsTabular reports whether a file name is an ingestible workbook. Office
// lock files ("~$name.xlsx") are excluded.
func IsTabular(name string) bool {
	if strings.HasPrefix(name, "~") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), Extension)
}

// SectionName strips the workbook extension from a file name.
func SectionName(fileName string) string {
	if strings.HasSuffix(strings.ToLower(fileName), Extension) {
		return fileName[:len(fileName)-len(Extension)]
	}
	return fileName
}
