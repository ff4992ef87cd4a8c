package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/rs/zerolog/log"
)

// Provider is the read side of a session slot. Guards and pages depend on this so tests can
// substitute a fixed session without touching storage.
type Provider interface {
	Current(ctx context.Context) (Session, bool)
}

// Store holds the single authenticated identity for one slot and mirrors it to durable storage.
// It is the only component that mutates a session.
type Store struct {
	repo Repo
	key  string

	mu      sync.Mutex
	loaded  bool
	current *Session
}

var _ Provider = (*Store)(nil)

// NewStore binds a slot to a storage key. Nothing is read until the first access.
func NewStore(repo Repo, key string) *Store {
	return &Store{repo: repo, key: key}
}

// Key is the durable storage key for this slot.
func (s *Store) Key() string {
	return s.key
}

// Current returns a copy of the session, rehydrating from storage on first use.
func (s *Store) Current(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Login stores the session in memory and durable storage, replacing any prior session.
func (s *Store) Login(ctx context.Context, session Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("[Store Login] %w", err)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[Store Login] failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("[Store Login] failed to persist session: %w", err)
	}
	s.loaded = true
	s.current = &session
	return nil
}

// Logout clears the in-memory session and removes the durable copy.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	s.current = nil
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("[Store Logout] failed to remove session: %w", err)
	}
	return nil
}

// UpdateCredentials persists refreshed bearer credentials without touching the identity. It never
// recreates a slot: if the durable copy was removed by a logout elsewhere, the session is gone and
// ErrNoSession is returned.
func (s *Store) UpdateCredentials(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	if s.current == nil {
		return fmt.Errorf("[Store UpdateCredentials] %w", apperrors.ErrNoSession)
	}
	updated := *s.current
	updated.Credentials = creds

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("[Store UpdateCredentials] failed to encode session: %w", err)
	}
	if err := s.repo.Update(ctx, s.key, data); err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			s.current = nil
			return fmt.Errorf("[Store UpdateCredentials] %w", apperrors.ErrNoSession)
		}
		return fmt.Errorf("[Store UpdateCredentials] failed to persist session: %w", err)
	}
	s.current = &updated
	return nil
}

// ensureLoaded rehydrates the slot once. A missing, unreadable or invalid copy means no session;
// invalid copies are removed. Must be called with mu held.
func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := s.repo.Get(ctx, s.key)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrSessionNotFound) {
			log.Warn().Err(err).Str("slot", s.key).Msg("session storage unavailable, treating as signed out")
		}
		return
	}

	session, err := decode(data)
	if err != nil {
		log.Debug().Err(err).Str("slot", s.key).Msg("discarding persisted session")
		if err := s.repo.Delete(ctx, s.key); err != nil {
			log.Warn().Err(err).Str("slot", s.key).Msg("failed to remove corrupt session")
		}
		return
	}
	s.current = &session
}

func decode(data []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperrors.ErrSessionCorrupt, err)
	}
	if err := session.Validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperrors.ErrSessionCorrupt, err)
	}
	return session, nil
}
