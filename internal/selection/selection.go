// Package selection tracks which photos of a collection view are selected.
package selection

import (
	"sync"

	"photoapi/internal/model"
)

// Selection is an ordered set of photos, unique by ID. Order is toggle order,
// so bulk operations over Current() run deterministically.
// It is safe for concurrent use.
type Selection struct {
	mu     sync.Mutex
	photos []model.Photo
}

// New returns an empty selection.
func New() *Selection {
	return &Selection{}
}

// Toggle adds the photo if absent and removes it if present.
// It reports whether the photo is selected afterwards.
func (s *Selection) Toggle(p model.Photo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.photos {
		if cur.ID == p.ID {
			s.photos = append(s.photos[:i:i], s.photos[i+1:]...)
			return false
		}
	}
	s.photos = append(s.photos, p)
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.photos = nil
	s.mu.Unlock()
}

// Remove drops the given IDs if selected.
func (s *Selection) Remove(ids ...string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]model.Photo, 0, len(s.photos))
	for _, p := range s.photos {
		if _, ok := drop[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	s.photos = kept
}

// Current returns a copy of the selected photos in toggle order.
func (s *Selection) Current() []model.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Photo(nil), s.photos...)
}

// Contains reports whether the photo ID is selected.
func (s *Selection) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.photos {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected photos.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}
