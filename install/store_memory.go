package install

import (
	"context"
	"strings"
	"sync"
)

// MemoryMarkerStore keeps markers in process memory.
type MemoryMarkerStore struct {
	mu    sync.RWMutex
	items map[string]Marker
}

// NewMemoryMarkerStore creates a store seeded with the given markers.
func NewMemoryMarkerStore(seed ...Marker) *MemoryMarkerStore {
	s := &MemoryMarkerStore{items: make(map[string]Marker, len(seed))}
	for _, marker := range seed {
		s.items[strings.TrimSpace(marker.Tool)] = marker
	}
	return s
}

// Get returns the marker for tool.
func (s *MemoryMarkerStore) Get(ctx context.Context, tool string) (Marker, bool, error) {
	if err := ctx.Err(); err != nil {
		return Marker{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	marker, ok := s.items[strings.TrimSpace(tool)]
	return marker, ok, nil
}

// Put stores marker under marker.Tool.
func (s *MemoryMarkerStore) Put(ctx context.Context, marker Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := strings.TrimSpace(marker.Tool)
	if clean == "" {
		return errEmptyTool
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[clean] = marker
	return nil
}

var _ MarkerStore = (*MemoryMarkerStore)(nil)
