package settings

import (
	"context"
	"sync"
)

// Provider resolves a parameter by name.
//
// ok is false when the parameter does not exist. err is reserved for transport or
// backend failures; a missing parameter is not an error.
type Provider interface {
	Lookup(ctx context.Context, name string) (value string, ok bool, err error)
}

// Func adapts a function to [Provider].
type Func func(ctx context.Context, name string) (string, bool, error)

// Lookup calls f.
func (f Func) Lookup(ctx context.Context, name string) (string, bool, error) {
	return f(ctx, name)
}

// Memory is a goroutine-safe in-process Provider.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns a Memory seeded with values. The map is copied.
func NewMemory(values map[string]string) *Memory {
	m := &Memory{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Lookup implements Provider.
func (m *Memory) Lookup(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok, nil
}

// Set stores a parameter value.
func (m *Memory) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[name] = value
}

// Unset removes a parameter.
func (m *Memory) Unset(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
}
