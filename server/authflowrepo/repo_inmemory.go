package authflowrepo

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]*AuthFlowState
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return NewInMemoryRepoWithTTL(DefaultTTL, time.Now)
}

func NewInMemoryRepoWithTTL(ttl time.Duration, now func() time.Time) *InMemoryRepo {
	return &InMemoryRepo{
		ttl:    ttl,
		now:    now,
		states: make(map[string]*AuthFlowState),
	}
}

// Upsert stores or updates an auth flow state. Expired entries are swept on the way in.
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	copied := *authState
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = r.now()
	}
	r.states[state] = &copied
	return nil
}

// Take returns and removes the flow state for state.
func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, apperrors.ErrInvalidState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, apperrors.ErrInvalidState
	}
	delete(r.states, state)

	if r.expired(authState) {
		return nil, apperrors.ErrInvalidState
	}
	copied := *authState
	return &copied, nil
}

// Len is the number of live entries.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	return len(r.states)
}

func (r *InMemoryRepo) expired(s *AuthFlowState) bool {
	return r.now().Sub(s.CreatedAt) > r.ttl
}

func (r *InMemoryRepo) sweep() {
	for k, s := range r.states {
		if r.expired(s) {
			delete(r.states, k)
		}
	}
}
