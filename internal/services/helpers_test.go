package services

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/batchcatalog-backend/internal/catalog/edit"
	"github.com/yungbote/batchcatalog-backend/internal/data/repos"
	"github.com/yungbote/batchcatalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/sheet"
)

// lineParser treats every "url|title" line as a row; "!bad" fails parsing.
func lineParser(name string, r io.Reader) ([]sheet.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "!bad" {
		return nil, &catalog.ParseError{File: name, Err: errors.New("corrupt")}
	}
	var rows []sheet.Row
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) == 2 {
			rows = append(rows, sheet.Row{URL: parts[0], Title: parts[1]})
		}
	}
	return rows, nil
}

func memFile(path, body string) folder.File {
	return folder.File{Path: path, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}}
}

type fixture struct {
	batches BatchService
	editor  EditorService
	imports ImportService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)
	batches := NewBatchService(db, log, repos.NewBatchRepo(db, log), nil)
	if err := batches.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	agg := folder.NewAggregator(log, folder.WithParser(lineParser), folder.WithConcurrency(2))
	return fixture{
		batches: batches,
		editor:  NewEditorService(log, batches, agg),
		imports: NewImportService(log, batches, agg),
	}
}

func mustPath(t *testing.T, raw string) edit.Path {
	t.Helper()
	p, err := edit.ParsePath(raw)
	if err != nil {
		t.Fatalf("ParsePath(%q): %v", raw, err)
	}
	return p
}
