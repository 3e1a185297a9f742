package folder

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/sheet"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

// File is one candidate input. Path is the bare file name in flat-list mode
// and the folder-relative path ("Batch/Subject/Section.xlsx") in hierarchy
// mode.
type File struct {
	Path string
	Open func() (io.ReadCloser, error)
}

// FileError records a file that was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// ParsedSection is the section built from one workbook.
type ParsedSection struct {
	Name   string
	Type   catalog.SectionType
	Rows   []sheet.Row
	Source string
}

// Build materializes the section with fresh ids. Contents take the section
// type and the subject's thumbnail.
func (p *ParsedSection) Build(newID func() string, subject *catalog.Subject) *catalog.Section {
	sec := &catalog.Section{ID: newID(), Name: p.Name, Type: p.Type, Contents: make([]*catalog.Content, 0, len(p.Rows))}
	for _, row := range p.Rows {
		c := catalog.NewContent(newID(), subject, sec)
		c.Title = row.Title
		c.URL = row.URL
		sec.Contents = append(sec.Contents, c)
	}
	return sec
}

type SectionsResult struct {
	Sections []*ParsedSection
	Failures []FileError
}

type Parser func(name string, r io.Reader) ([]sheet.Row, error)

type Aggregator struct {
	log         *logger.Logger
	parse       Parser
	concurrency int
}

type Option func(*Aggregator)

func WithParser(p Parser) Option {
	return func(a *Aggregator) {
		if p != nil {
			a.parse = p
		}
	}
}

func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func NewAggregator(baseLog *logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		log:         baseLog.With("component", "FolderAggregator"),
		parse:       sheet.ParseWorkbook,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sections runs flat-list mode: every workbook becomes one section named
// after the file. Workbooks are parsed concurrently; a failing file is
// recorded and skipped, and the successful subset is always returned in
// input order.
func (a *Aggregator) Sections(ctx context.Context, files []File) SectionsResult {
	ctx, span := otel.Tracer("ingestion/folder").Start(ctx, "folder.Sections")
	defer span.End()

	candidates := make([]File, 0, len(files))
	for _, f := range files {
		if sheet.IsTabular(path.Base(slashPath(f.Path))) {
			candidates = append(candidates, f)
		}
	}
	span.SetAttributes(attribute.Int("files.total", len(files)), attribute.Int("files.tabular", len(candidates)))

	parsed := make([]*ParsedSection, len(candidates))
	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, f := range candidates {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			name := path.Base(slashPath(f.Path))
			rows, err := a.read(f, name)
			if err != nil {
				errs[i] = err
				return nil
			}
			sectionName := sheet.SectionName(name)
			parsed[i] = &ParsedSection{
				Name:   sectionName,
				Type:   catalog.ClassifySection(sectionName),
				Rows:   rows,
				Source: f.Path,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := SectionsResult{Sections: []*ParsedSection{}}
	for i := range candidates {
		if errs[i] != nil {
			a.log.Warn("skipping workbook", "file", candidates[i].Path, "error", errs[i])
			out.Failures = append(out.Failures, FileError{Path: candidates[i].Path, Err: errs[i]})
			continue
		}
		out.Sections = append(out.Sections, parsed[i])
	}
	span.SetAttributes(attribute.Int("sections", len(out.Sections)), attribute.Int("failures", len(out.Failures)))
	return out
}

// Catalog runs hierarchy mode over folder-relative paths. Files are read
// one at a time in input order. Only paths of at least three segments ending
// in a workbook are used: segment 0 names the batch, segment 1 the subject
// and the file name the section. A later file deriving the same section name
// within a subject replaces the earlier one.
func (a *Aggregator) Catalog(ctx context.Context, files []File) *Catalog {
	ctx, span := otel.Tracer("ingestion/folder").Start(ctx, "folder.Catalog")
	defer span.End()

	cat := &Catalog{}
	for _, f := range files {
		segments := splitPath(f.Path)
		if len(segments) < 3 {
			continue
		}
		fileName := segments[len(segments)-1]
		if !sheet.IsTabular(fileName) {
			continue
		}
		if err := ctx.Err(); err != nil {
			cat.Failures = append(cat.Failures, FileError{Path: f.Path, Err: err})
			continue
		}
		rows, err := a.read(f, fileName)
		if err != nil {
			a.log.Warn("skipping workbook", "file", f.Path, "error", err)
			cat.Failures = append(cat.Failures, FileError{Path: f.Path, Err: err})
			continue
		}
		sectionName := sheet.SectionName(fileName)
		cat.put(segments[0], segments[1], &ParsedSection{
			Name:   sectionName,
			Type:   catalog.ClassifySection(sectionName),
			Rows:   rows,
			Source: f.Path,
		})
	}
	span.SetAttributes(attribute.Int("batches", cat.batches.len()), attribute.Int("failures", len(cat.Failures)))
	return cat
}

func (a *Aggregator) read(f File, name string) ([]sheet.Row, error) {
	if f.Open == nil {
		return nil, &catalog.IOError{File: f.Path, Err: fmt.Errorf("no content")}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &catalog.IOError{File: f.Path, Err: err}
	}
	defer rc.Close()
	return a.parse(name, rc)
}

func slashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func splitPath(p string) []string {
	parts := strings.Split(slashPath(p), "/")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Catalog is the Batch -> Subject -> Section grouping built in hierarchy
// mode. Every level enumerates in first-encounter order.
type Catalog struct {
	batches  ordered[*BatchGroup]
	Failures []FileError
}

type BatchGroup struct {
	Name     string
	subjects ordered[*SubjectGroup]
}

type SubjectGroup struct {
	Name     string
	sections ordered[*ParsedSection]
}

func (c *Catalog) put(batchName, subjectName string, sec *ParsedSection) {
	bg, ok := c.batches.get(batchName)
	if !ok {
		bg = &BatchGroup{Name: batchName}
		c.batches.set(batchName, bg)
	}
	sg, ok := bg.subjects.get(subjectName)
	if !ok {
		sg = &SubjectGroup{Name: subjectName}
		bg.subjects.set(subjectName, sg)
	}
	sg.sections.set(sec.Name, sec)
}

func (c *Catalog) Batches() []*BatchGroup { return c.batches.values() }

func (b *BatchGroup) Subjects() []*SubjectGroup { return b.subjects.values() }

func (s *SubjectGroup) Sections() []*ParsedSection { return s.sections.values() }

// Build turns the grouping into batch trees with fresh ids.
func (c *Catalog) Build(newID func() string, now time.Time) []*catalog.Batch {
	out := make([]*catalog.Batch, 0, c.batches.len())
	for _, bg := range c.Batches() {
		b := catalog.NewBatch(newID(), now)
		b.Name = bg.Name
		for _, sg := range bg.Subjects() {
			subject := catalog.NewSubject(newID())
			subject.Name = sg.Name
			for _, ps := range sg.Sections() {
				subject.Sections = append(subject.Sections, ps.Build(newID, subject))
			}
			b.Subjects = append(b.Subjects, subject)
		}
		out = append(out, b)
	}
	return out
}
