package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
)

// Memory is an in-process Store. inspect materializes into it to size views without
// writing them anywhere.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		objects: map[string][]byte{},
	}
}

func (m *Memory) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = append([]byte(nil), body...)

	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	body, exists := m.objects[key]
	if !exists {
		return nil, fmt.Errorf("object %s: %w", key, fs.ErrNotExist)
	}

	return append([]byte(nil), body...), nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}

	return filterPrefix(keys, prefix), nil
}

func (m *Memory) Location(key string) string {
	return fmt.Sprintf("memory://%s", key)
}
