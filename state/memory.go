package state

import (
	"context"
	"sync"
)

// MemoryStorage keeps records in process memory. Suitable for tests and for
// running the harness without any storage configuration.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]Item)}
}

func (m *MemoryStorage) Read(ctx context.Context, keys []string) (map[string]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Item, len(keys))
	for _, key := range keys {
		item, ok := m.items[key]
		if !ok {
			continue
		}
		value := make([]byte, len(item.Value))
		copy(value, item.Value)
		out[key] = Item{Value: value, ETag: item.ETag}
	}
	return out, nil
}

func (m *MemoryStorage) Write(ctx context.Context, changes map[string]Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, change := range changes {
		existing, found := m.items[key]
		if err := checkWrite(existing, found, change); err != nil {
			return err
		}
		etag, err := computeETag(change.Value)
		if err != nil {
			return err
		}
		value := make([]byte, len(change.Value))
		copy(value, change.Value)
		m.items[key] = Item{Value: value, ETag: etag}
	}
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}
