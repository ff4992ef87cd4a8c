package sessions

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
)

// InMemoryRepo keeps serialized sessions in process memory. Contents are lost on restart.
type InMemoryRepo struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates an empty in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		slots: make(map[string][]byte),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.slots[key]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return append([]byte(nil), value...), nil
}

func (r *InMemoryRepo) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy so callers can reuse their buffer
	r.slots[key] = append([]byte(nil), value...)
	return nil
}

func (r *InMemoryRepo) Update(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[key]; !ok {
		return apperrors.ErrSessionNotFound
	}
	r.slots[key] = append([]byte(nil), value...)
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, key)
	return nil
}
