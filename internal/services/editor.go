package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/batchcatalog-backend/internal/catalog/edit"
	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

// SessionView is what callers see of an editing session.
type SessionView struct {
	ID        string         `json:"id"`
	Batch     *catalog.Batch `json:"batch"`
	Selected  []string       `json:"selected"`
	Dirty     bool           `json:"dirty"`
	Persisted bool           `json:"persisted"`
}

// ImportReport is the outcome of a flat-list import into one subject.
type ImportReport struct {
	Session  *SessionView  `json:"session"`
	Added    int           `json:"added"`
	Failures []FileFailure `json:"failures"`
}

type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type EditorService interface {
	// Open starts a session on a stored batch, or on a fresh template batch
	// when batchID is empty.
	Open(ctx context.Context, batchID string) (*SessionView, error)
	Snapshot(sessionID string) (*SessionView, error)
	SetField(sessionID string, path edit.Path, value any) (*SessionView, error)
	AddSubject(sessionID string) (*SessionView, error)
	AddSection(sessionID string, subject int) (*SessionView, error)
	AddContent(sessionID string, subject, section int) (*SessionView, error)
	DeleteSubject(sessionID string, subject int, confirm edit.Confirmation) (*SessionView, error)
	DeleteSection(sessionID string, subject, section int, confirm edit.Confirmation) (*SessionView, error)
	DeleteContent(sessionID string, subject, section, content int) (*SessionView, error)
	ToggleSelection(sessionID, contentID string) (*SessionView, error)
	BulkApplyThumbnail(sessionID, value string) (*SessionView, error)
	ImportSections(ctx context.Context, sessionID string, subject int, files []folder.File) (*ImportReport, error)
	Save(ctx context.Context, sessionID string) (*SessionView, error)
	Discard(sessionID string) (*SessionView, error)
	Close(sessionID string) error
	// Start closes sessions left idle longer than the configured TTL until
	// ctx ends. It does nothing when the TTL is zero.
	Start(ctx context.Context)
}

// DefaultSessionIdleTTL bounds how long an untouched session stays in memory.
const DefaultSessionIdleTTL = 2 * time.Hour

type EditorOption func(*editorService)

// WithSessionIdleTTL overrides DefaultSessionIdleTTL. Zero keeps sessions
// until they are closed.
func WithSessionIdleTTL(d time.Duration) EditorOption {
	return func(s *editorService) {
		if d >= 0 {
			s.idleTTL = d
		}
	}
}

type editSession struct {
	mu        sync.Mutex
	id        string
	editor    *edit.Editor
	persisted bool
	lastUsed  atomic.Int64
}

func (s *editSession) view() *SessionView {
	return &SessionView{
		ID:        s.id,
		Batch:     s.editor.Batch(),
		Selected:  s.editor.Selection(),
		Dirty:     s.editor.Dirty(),
		Persisted: s.persisted,
	}
}

type editorService struct {
	log        *logger.Logger
	batches    BatchService
	aggregator *folder.Aggregator
	newID      func() string
	now        func() time.Time
	idleTTL    time.Duration

	mu       sync.RWMutex
	sessions map[string]*editSession
}

func NewEditorService(baseLog *logger.Logger, batches BatchService, aggregator *folder.Aggregator, opts ...EditorOption) EditorService {
	s := &editorService{
		log:        baseLog.With("service", "EditorService"),
		batches:    batches,
		aggregator: aggregator,
		newID:      catalog.NewID,
		now:        func() time.Time { return time.Now().UTC() },
		idleTTL:    DefaultSessionIdleTTL,
		sessions:   map[string]*editSession{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *editorService) Open(ctx context.Context, batchID string) (*SessionView, error) {
	var (
		b         *catalog.Batch
		persisted bool
	)
	if batchID == "" {
		b = catalog.NewBatch(s.newID(), s.now())
	} else {
		stored, err := s.batches.Get(ctx, batchID)
		if err != nil {
			return nil, err
		}
		b, persisted = stored, true
	}

	sess := &editSession{
		id:        uuid.NewString(),
		editor:    edit.NewEditor(b, s.newID),
		persisted: persisted,
	}
	sess.lastUsed.Store(s.now().UnixNano())
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.Debug("editing session opened", "session_id", sess.id, "batch_id", b.ID, "persisted", persisted)
	return sess.view(), nil
}

func (s *editorService) session(id string) (*editSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, catalog.ErrSessionNotFound
	}
	sess.lastUsed.Store(s.now().UnixNano())
	return sess, nil
}

// with runs fn under the session lock and returns the resulting view.
func (s *editorService) with(id string, fn func(e *edit.Editor) error) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess.editor); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *editorService) Snapshot(sessionID string) (*SessionView, error) {
	return s.with(sessionID, func(*edit.Editor) error { return nil })
}

func (s *editorService) SetField(sessionID string, path edit.Path, value any) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, err := e.Set(path, value)
		return err
	})
}

func (s *editorService) AddSubject(sessionID string) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, _, err := e.AddSubject()
		return err
	})
}

func (s *editorService) AddSection(sessionID string, subject int) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, _, err := e.AddSection(subject)
		return err
	})
}

func (s *editorService) AddContent(sessionID string, subject, section int) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, _, err := e.AddContent(subject, section)
		return err
	})
}

func (s *editorService) DeleteSubject(sessionID string, subject int, confirm edit.Confirmation) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, err := e.DeleteSubject(subject, confirm)
		return err
	})
}

func (s *editorService) DeleteSection(sessionID string, subject, section int, confirm edit.Confirmation) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, err := e.DeleteSection(subject, section, confirm)
		return err
	})
}

func (s *editorService) DeleteContent(sessionID string, subject, section, content int) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, err := e.DeleteContent(subject, section, content)
		return err
	})
}

func (s *editorService) ToggleSelection(sessionID, contentID string) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		if contentID == "" {
			return &catalog.ValidationError{Field: "content_id", Reason: "must not be empty"}
		}
		e.ToggleSelection(contentID)
		return nil
	})
}

func (s *editorService) BulkApplyThumbnail(sessionID, value string) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		_, err := e.BulkApplyThumbnail(value)
		return err
	})
}

// ImportSections parses the workbooks outside the session lock, then appends
// the successful sections to the chosen subject in input order.
func (s *editorService) ImportSections(ctx context.Context, sessionID string, subject int, files []folder.File) (*ImportReport, error) {
	subjectPath := edit.Path{edit.F("subjects"), edit.I(subject)}
	if _, err := s.with(sessionID, func(e *edit.Editor) error {
		_, err := edit.Get(e.Batch(), subjectPath)
		return err
	}); err != nil {
		return nil, err
	}

	res := s.aggregator.Sections(ctx, files)
	report := &ImportReport{Failures: fileFailures(res.Failures)}

	view, err := s.with(sessionID, func(e *edit.Editor) error {
		node, err := edit.Get(e.Batch(), subjectPath)
		if err != nil {
			return err
		}
		owner := node.(*catalog.Subject)
		built := make([]*catalog.Section, 0, len(res.Sections))
		for _, ps := range res.Sections {
			built = append(built, ps.Build(e.NewID, owner))
		}
		if _, err := e.AppendSections(subject, built); err != nil {
			return err
		}
		report.Added = len(built)
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Session = view
	s.log.Info("sections imported", "session_id", sessionID, "added", report.Added, "failed", len(report.Failures))
	return report, nil
}

// Save writes the session's batch to the store, creating it on first save.
// The saved snapshot becomes the one Discard returns to.
func (s *editorService) Save(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	b := sess.editor.Batch()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if sess.persisted {
		_, err = s.batches.Update(ctx, b.ID, catalog.PatchFromBatch(b))
		if errors.Is(err, catalog.ErrNotFound) {
			s.log.Warn("stored batch vanished; recreating", "session_id", sessionID, "batch_id", b.ID)
			_, err = s.batches.Create(ctx, b)
		}
	} else {
		_, err = s.batches.Create(ctx, b)
	}
	if err != nil {
		return nil, err
	}
	sess.persisted = true
	sess.editor.Commit()
	return sess.view(), nil
}

func (s *editorService) Discard(sessionID string) (*SessionView, error) {
	return s.with(sessionID, func(e *edit.Editor) error {
		e.Discard()
		return nil
	})
}

func (s *editorService) Close(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return catalog.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.log.Debug("editing session closed", "session_id", sessionID)
	return nil
}

func (s *editorService) Start(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.idleTTL / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweepIdle(s.now()); n > 0 {
					s.log.Info("idle editing sessions closed", "count", n, "remaining", s.count())
				}
			}
		}
	}()
}

// sweepIdle drops every session not touched within idleTTL of now. Unsaved
// edits in a dropped session are lost.
func (s *editorService) sweepIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Load() < cutoff {
			delete(s.sessions, id)
			s.log.Debug("editing session expired", "session_id", id)
			n++
		}
	}
	return n
}

func (s *editorService) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func fileFailures(in []folder.FileError) []FileFailure {
	out := make([]FileFailure, 0, len(in))
	for _, f := range in {
		out = append(out, FileFailure{File: f.Path, Error: f.Err.Error()})
	}
	return out
}
