package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryMedium keeps entries in a map. It has the same quota semantics as
// SQLiteMedium and backs tests and the degraded in-memory mode.
type MemoryMedium struct {
	mu      sync.Mutex
	entries map[string][]byte
	quota   int64
}

func NewMemoryMedium(quotaBytes int64) *MemoryMedium {
	if quotaBytes < 0 {
		quotaBytes = 0
	}
	return &MemoryMedium{entries: make(map[string][]byte), quota: quotaBytes}
}

func (m *MemoryMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryMedium) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		var used int64
		for k, v := range m.entries {
			if k != key {
				used += entrySize(k, v)
			}
		}
		if used+entrySize(key, value) > m.quota {
			return fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, m.quota)
		}
	}
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *MemoryMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
