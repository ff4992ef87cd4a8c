package server

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/evcenter-admin/gateway"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// slotLocks serialises credential changes per session slot within this process.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

// Lock blocks until key is free and returns the matching unlock.
func (l *slotLocks) Lock(key string) func() {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &slotLock{}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *slotLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// slotTokenSource serves the bearer for one request. Once the token it holds expires it takes the
// slot lock and starts again from the persisted credentials, so a token another request already
// refreshed is reused and a rotating refresh token is never spent twice.
type slotTokenSource struct {
	ctx context.Context
	s   *Server
	key string

	mu  sync.Mutex
	tok *oauth2.Token
}

func (ts *slotTokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.tok.Valid() {
		return ts.tok, nil
	}

	unlock := ts.s.slotLocks.Lock(ts.key)
	defer unlock()

	store := sessions.NewStore(ts.s.sessions, ts.key)
	session, ok := store.Current(ts.ctx)
	if !ok {
		return nil, gateway.Expired()
	}
	persisted := session.Credentials.Token()

	var persistErr error
	src := gateway.NotifyOnRefresh(ts.s.refreshSource(ts.ctx, session, persisted), persisted, func(t *oauth2.Token) {
		persistErr = store.UpdateCredentials(ts.ctx, sessions.CredentialsFromToken(t))
	})
	t, err := src.Token()
	if err != nil {
		return nil, err
	}
	if persistErr != nil {
		if errors.Is(persistErr, apperrors.ErrNoSession) {
			// Signed out while the refresh was in flight
			return nil, gateway.Expired()
		}
		log.Warn().Err(persistErr).Str("slot", ts.key).Msg("failed to persist refreshed credentials")
	}

	ts.tok = t
	return t, nil
}

// refreshSource returns the source that renews tok for the session's login provider.
func (s *Server) refreshSource(ctx context.Context, session sessions.Session, tok *oauth2.Token) oauth2.TokenSource {
	if session.Provider != sessions.ProviderSSO {
		return s.backend.RefreshTokenSource(ctx, tok)
	}
	oc, err := s.getOidcConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("identity provider unavailable; token will not refresh")
		return oauth2.StaticTokenSource(tok)
	}
	return oc.OAuth2Config.TokenSource(ctx, tok)
}
