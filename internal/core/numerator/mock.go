package numerator

import (
	"context"
	"sync"
)

// MockGenerator is a test implementation of Generator.
// Without NextFunc it hands out sequential identifiers per family.
type MockGenerator struct {
	NextFunc func(ctx context.Context, family Family) (string, error)

	mu    sync.Mutex
	last  map[string]int64
	Calls int
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, family Family) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.NextFunc != nil {
		return m.NextFunc(ctx, family)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = make(map[string]int64)
	}
	m.last[family.Name]++
	return family.Format(m.last[family.Name]), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
