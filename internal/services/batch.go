package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/batchcatalog-backend/internal/data/repos"
	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/realtime"
	"github.com/yungbote/batchcatalog-backend/internal/realtime/bus"
)

// BatchService is the document store for batches. Every successful write
// publishes a change notice; subscribers then receive the full collection.
type BatchService interface {
	Create(ctx context.Context, b *catalog.Batch) (*catalog.Batch, error)
	CreateMany(ctx context.Context, batches []*catalog.Batch) ([]*catalog.Batch, error)
	List(ctx context.Context) ([]*catalog.Batch, error)
	Get(ctx context.Context, id string) (*catalog.Batch, error)
	Update(ctx context.Context, id string, patch catalog.BatchPatch) (*catalog.Batch, error)
	Delete(ctx context.Context, id string) error

	// Subscribe delivers the current collection immediately and again after
	// every change until ctx ends or the returned func is called. Callbacks
	// run serially and must not write through this service.
	Subscribe(ctx context.Context, onChange func([]*catalog.Batch), onError func(error)) func()

	// Start attaches the service to its change bus.
	Start(ctx context.Context) error
}

type batchListener struct {
	onChange func([]*catalog.Batch)
	onError  func(error)
}

type batchService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.BatchRepo
	bus  bus.Bus
	now  func() time.Time

	listenersMu sync.Mutex
	listeners   map[int]batchListener
	nextID      int

	dispatchMu sync.Mutex
}

func NewBatchService(db *gorm.DB, baseLog *logger.Logger, repo repos.BatchRepo, changeBus bus.Bus) BatchService {
	if changeBus == nil {
		changeBus = bus.NewLocalBus()
	}
	return &batchService{
		db:        db,
		log:       baseLog.With("service", "BatchService"),
		repo:      repo,
		bus:       changeBus,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: map[int]batchListener{},
	}
}

func (s *batchService) Start(ctx context.Context) error {
	return s.bus.StartForwarder(ctx, func(m realtime.SSEMessage) {
		if m.Channel != realtime.ChannelBatches || m.Event != realtime.SSEEventBatchesChanged {
			return
		}
		s.refresh(ctx)
	})
}

func (s *batchService) Create(ctx context.Context, b *catalog.Batch) (*catalog.Batch, error) {
	out, err := s.CreateMany(ctx, []*catalog.Batch{b})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateMany stores every batch in one transaction; ids and creation times
// are filled in where missing.
func (s *batchService) CreateMany(ctx context.Context, batches []*catalog.Batch) ([]*catalog.Batch, error) {
	if len(batches) == 0 {
		return []*catalog.Batch{}, nil
	}

	records := make([]*catalog.BatchRecord, 0, len(batches))
	out := make([]*catalog.Batch, 0, len(batches))
	for _, b := range batches {
		if b == nil {
			return nil, &catalog.ValidationError{Field: "batch", Reason: "missing"}
		}
		nb := *b
		if nb.ID == "" {
			nb.ID = catalog.NewID()
		}
		if nb.CreatedAt.IsZero() {
			nb.CreatedAt = s.now()
		}
		if nb.Subjects == nil {
			nb.Subjects = []*catalog.Subject{}
		}
		if err := nb.Validate(); err != nil {
			return nil, err
		}
		rec, err := catalog.RecordFromBatch(&nb)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		out = append(out, &nb)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.repo.Create(ctx, tx, records)
		return err
	})
	if err != nil {
		s.log.Error("create batches failed", "count", len(records), "error", err)
		return nil, fmt.Errorf("create batches: %w", err)
	}

	for _, b := range out {
		s.log.Info("batch created", "batch_id", b.ID)
	}
	s.publish(ctx, "create", "")
	return out, nil
}

func (s *batchService) List(ctx context.Context) ([]*catalog.Batch, error) {
	records, err := s.repo.ListNewestFirst(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	out := make([]*catalog.Batch, 0, len(records))
	for _, rec := range records {
		b, err := rec.ToBatch()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *batchService) Get(ctx context.Context, id string) (*catalog.Batch, error) {
	rec, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return rec.ToBatch()
}

// Update applies patch to the stored batch. The patched document must still
// validate; otherwise nothing is written.
func (s *batchService) Update(ctx context.Context, id string, patch catalog.BatchPatch) (*catalog.Batch, error) {
	var updated *catalog.Batch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		current, err := rec.ToBatch()
		if err != nil {
			return err
		}
		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		if patch.Empty() {
			updated = next
			return nil
		}
		if err := s.repo.Update(ctx, tx, id, patch); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !patch.Empty() {
		s.log.Info("batch updated", "batch_id", id)
		s.publish(ctx, "update", id)
	}
	return updated, nil
}

func (s *batchService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.log.Info("batch deleted", "batch_id", id)
	s.publish(ctx, "delete", id)
	return nil
}

func (s *batchService) Subscribe(ctx context.Context, onChange func([]*catalog.Batch), onError func(error)) func() {
	if onChange == nil {
		onChange = func([]*catalog.Batch) {}
	}
	if onError == nil {
		onError = func(error) {}
	}

	s.dispatchMu.Lock()
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = batchListener{onChange: onChange, onError: onError}
	s.listenersMu.Unlock()

	if list, err := s.List(ctx); err != nil {
		onError(err)
	} else {
		onChange(list)
	}
	s.dispatchMu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
			close(stop)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stop:
		}
	}()
	return unsubscribe
}

func (s *batchService) publish(ctx context.Context, op, batchID string) {
	msg := realtime.SSEMessage{
		Channel: realtime.ChannelBatches,
		Event:   realtime.SSEEventBatchesChanged,
		Data:    realtime.ChangeNotice{Op: op, BatchID: batchID},
	}
	if err := s.bus.Publish(ctx, msg); err != nil {
		s.log.Warn("publish batch change failed", "op", op, "batch_id", batchID, "error", err)
	}
}

// refresh reloads the collection once and hands it to every listener.
func (s *batchService) refresh(ctx context.Context) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.listenersMu.Lock()
	targets := make([]batchListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		targets = append(targets, l)
	}
	s.listenersMu.Unlock()
	if len(targets) == 0 {
		return
	}

	list, err := s.List(ctx)
	for _, l := range targets {
		if err != nil {
			l.onError(err)
			continue
		}
		l.onChange(list)
	}
}
