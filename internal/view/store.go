package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"photoapi/internal/service"
)

const loadTimeout = 30 * time.Second

// Store keeps the open views.
type Store struct {
	mu     sync.Mutex
	views  map[string]*View
	loader Loader
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewStore returns a Store whose views expire after ttl without activity.
// A ttl of zero keeps views until they are closed.
func NewStore(loader Loader, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		views:  make(map[string]*View),
		loader: loader,
		ttl:    ttl,
		logger: logger.With("component", "view"),
		now:    time.Now,
	}
}

// Open creates a view on collectionID and starts loading it in the background.
func (s *Store) Open(collectionID string) *View {
	v := newView(uuid.New().String(), collectionID, s.now)

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	go s.load(v)
	return v
}

func (s *Store) load(v *View) {
	ctx, cancel := context.WithTimeout(v.ctx, loadTimeout)
	defer cancel()

	c, err := s.loader(ctx, v.collectionID)
	if err != nil {
		msg := "failed to load collection"
		if errors.Is(err, service.ErrNotFound) {
			msg = service.ErrNotFound.Error()
		}
		s.logger.Warn("collection load failed",
			"event", "view_load",
			"status", "error",
			"view_id", v.id,
			"collection_id", v.collectionID,
			"error", err,
		)
		v.finishLoad(nil, msg)
		return
	}
	v.finishLoad(c, "")
	s.logger.Debug("collection loaded",
		"event", "view_load",
		"status", "success",
		"view_id", v.id,
		"collection_id", v.collectionID,
		"photo_count", len(c.Photos),
	)
}

// Get returns an open view.
func (s *Store) Get(id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Close tears a view down and cancels anything it still runs.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	v.close()
	return nil
}

// CloseAll tears down every view.
func (s *Store) CloseAll() {
	s.mu.Lock()
	views := s.views
	s.views = make(map[string]*View)
	s.mu.Unlock()
	for _, v := range views {
		v.close()
	}
}

// Len returns the number of open views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Sweep closes views idle for longer than the TTL. Views with a bulk
// operation in flight are kept. It returns the number of views closed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	var expired []*View
	s.mu.Lock()
	for id, v := range s.views {
		if !v.idleSince().Before(cutoff) {
			continue
		}
		if !v.opMu.TryLock() {
			continue
		}
		v.opMu.Unlock()
		delete(s.views, id)
		expired = append(expired, v)
	}
	s.mu.Unlock()

	for _, v := range expired {
		v.close()
	}
	if len(expired) > 0 {
		s.logger.Info("idle views closed", "event", "view_sweep", "status", "success", "removed", len(expired))
	}
	return len(expired)
}

// RunJanitor sweeps idle views every interval until ctx is cancelled.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}
