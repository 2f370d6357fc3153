// Package keyvalue provides the in-memory key-value store used by backtests
// and tests in place of the durable state store.
package keyvalue

import (
	"context"
	"fmt"
	"sync"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Memory implements signal.KeyValueRepository over a map. Safe for
// concurrent use, though the per-ticker single-writer discipline still
// applies to the values themselves.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory builds a store preloaded with the given entries.
func NewMemory(seed map[string]string) *Memory {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &Memory{data: data}
}

// Get returns the stored value for key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("key %s: %w", key, signal.ErrStateNotFound)
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
