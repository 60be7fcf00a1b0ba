package storage

import (
	"context"
	"fmt"
	"sync"

	catalogapp "github.com/orders/backend/internal/application/catalog"
)

// MemoryFeedArchive keeps archived documents in process memory.
// Used when no bucket is configured and in tests.
type MemoryFeedArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

var _ catalogapp.FeedArchive = (*MemoryFeedArchive)(nil)

// NewMemoryFeedArchive creates an empty in-memory archive
func NewMemoryFeedArchive() *MemoryFeedArchive {
	return &MemoryFeedArchive{objects: make(map[string][]byte)}
}

// Archive stores a copy of body
func (m *MemoryFeedArchive) Archive(_ context.Context, ownerID uint64, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	key := fmt.Sprintf("memory/%d/%d.yaml", ownerID, m.seq)
	m.objects[key] = append([]byte(nil), body...)
	return key, nil
}

// Get returns an archived document
func (m *MemoryFeedArchive) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len returns the number of archived documents
func (m *MemoryFeedArchive) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
