package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps entries in-memory for tests and one-shot runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Get(_ context.Context, documentID string) (*Entry, error) {
	trimmed := strings.TrimSpace(documentID)
	if trimmed == "" {
		return nil, ErrDocumentIDRequired
	}

	r.mu.RLock()
	entry, ok := r.entries[trimmed]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &entry, nil
}

func (r *MemoryRepository) List(context.Context) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DocumentID < out[j].DocumentID
	})
	return out, nil
}

func (r *MemoryRepository) Record(_ context.Context, entry Entry) (*Entry, error) {
	entry.DocumentID = strings.TrimSpace(entry.DocumentID)
	if entry.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}
	if entry.PublishedAt.IsZero() {
		entry.PublishedAt = r.now().UTC()
	}

	r.mu.Lock()
	r.entries[entry.DocumentID] = entry
	r.mu.Unlock()

	return &entry, nil
}
