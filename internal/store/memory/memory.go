package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

var ErrClosed = errors.New("memory backend closed")

// Backend keeps saved values in process memory. It backs tests and the
// default demo mode; nothing survives a restart.
type Backend struct {
	mu     sync.RWMutex
	values map[string][]byte
	saves  int
	closed bool
}

func New() *Backend {
	return &Backend{values: map[string][]byte{}}
}

// NewWithValues starts from previously saved values.
func NewWithValues(values map[string][]byte) *Backend {
	b := New()
	for k, v := range values {
		b.values[k] = slices.Clone(v)
	}
	return b
}

func (b *Backend) Load(_ context.Context) (map[string][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.copyValues(), nil
}

func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for k, v := range values {
		b.values[k] = slices.Clone(v)
	}
	b.saves++
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Values returns a copy of everything saved so far.
func (b *Backend) Values() map[string][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.copyValues()
}

// Saves counts successful Save calls.
func (b *Backend) Saves() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves
}

func (b *Backend) copyValues() map[string][]byte {
	out := make(map[string][]byte, len(b.values))
	for k, v := range maps.All(b.values) {
		out[k] = slices.Clone(v)
	}
	return out
}
