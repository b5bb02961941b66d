package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use; UpdateRecord
// holds the write lock while fn runs, so fn must not call back into the store.
type Memory struct {
	mu      sync.RWMutex
	config  *Config
	records map[string]NameRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]NameRecord)}
}

// LoadConfig returns the saved configuration.
func (m *Memory) LoadConfig(_ context.Context) (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return Config{}, ErrConfigNotFound
	}
	return m.config.clone(), nil
}

// CreateConfig stores the configuration unless one exists.
func (m *Memory) CreateConfig(_ context.Context, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config != nil {
		return ErrConfigExists
	}
	c := cfg.clone()
	m.config = &c
	return nil
}

// SaveConfig overwrites the configuration.
func (m *Memory) SaveConfig(_ context.Context, cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cfg.clone()
	m.config = &c
	return nil
}

// LoadRecord returns the record for name.
func (m *Memory) LoadRecord(_ context.Context, name string) (NameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[name]; ok {
		return rec, nil
	}
	return NameRecord{}, ErrNotFound
}

// SaveRecord overwrites the record for name.
func (m *Memory) SaveRecord(_ context.Context, name string, record NameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = record
	return nil
}

// UpdateRecord applies fn under the write lock.
func (m *Memory) UpdateRecord(_ context.Context, name string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *NameRecord
	if rec, ok := m.records[name]; ok {
		current = &rec
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	m.records[name] = next
	return nil
}

var _ Store = (*Memory)(nil)
