package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/evcenter-admin/guard"
	"github.com/jrsteele09/evcenter-admin/sessions"
)

const (
	// sessionCookieName holds the id of the browser's session slot
	sessionCookieName = "evcenter_session"
	// authSessionCookieName ties an SSO redirect to the browser that started it
	authSessionCookieName = "auth_session_id"

	sessionKeyPrefix = "session:"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// slotID reads the session slot id from the request cookie. Malformed ids are ignored.
func slotID(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// storeFor binds the request's slot to durable storage. A request without a slot gets nil.
func (s *Server) storeFor(r *http.Request) (string, *sessions.Store) {
	id := slotID(r)
	if id == "" {
		return "", nil
	}
	return id, sessions.NewStore(s.sessions, sessionKeyPrefix+id)
}

// resolve reads the current session for the request once.
func (s *Server) resolve(r *http.Request) (string, *sessions.Store, guard.Resolution) {
	id, store := s.storeFor(r)
	if store == nil {
		return "", nil, guard.Resolve(sessions.Session{}, false)
	}
	return id, store, guard.Resolve(store.Current(r.Context()))
}

// startSlot signs the session into a fresh slot and points the browser at it. Any prior slot is
// cleared so a login never inherits state from the previous identity.
func (s *Server) startSlot(ctx context.Context, w http.ResponseWriter, r *http.Request, session sessions.Session) error {
	if oldID, old := s.storeFor(r); old != nil {
		unlock := s.slotLocks.Lock(old.Key())
		_ = old.Logout(ctx)
		unlock()
		s.workspaces.Discard(oldID)
	}

	id := uuid.NewString()
	if err := sessions.NewStore(s.sessions, sessionKeyPrefix+id).Login(ctx, session); err != nil {
		return err
	}
	s.SetSessionCookie(w, r, id, int(s.config.GetSessionMaxAge().Seconds()))
	return nil
}

// endSlot signs the browser out and forgets its page state.
func (s *Server) endSlot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, store := s.storeFor(r)
	s.SetSessionCookie(w, r, "", -1)
	if store == nil {
		return nil
	}
	s.workspaces.Discard(id)

	unlock := s.slotLocks.Lock(store.Key())
	defer unlock()
	return store.Logout(ctx)
}

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) SetAuthSessionCookie(w http.ResponseWriter, r *http.Request, authSessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authSessionCookieName,
		Value:    authSessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// withQuery appends key=value to path, keeping any query it already has.
func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// clientIP is the remote address without its port, preferring the first forwarded hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
