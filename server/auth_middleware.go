package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/guard"
	"github.com/jrsteele09/evcenter-admin/internal/metrics"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
)

type contextKey int

const (
	slotContextKey contextKey = iota
	connContextKey
)

// RequireRoles guards a route. Anonymous visitors go to the login page carrying the requested
// path; signed-in users without the role go to their own home page. Admitted requests carry the
// session, its slot and an authenticated backend connection in their context.
func (s *Server) RequireRoles(req guard.Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			slot, store, res := s.resolve(r)
			decision := guard.Evaluate(req, res, r.URL.RequestURI())

			switch {
			case decision.State == guard.Allowed:
				metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
			case res.Session == nil:
				metrics.GuardDecisionsTotal.WithLabelValues("login_redirect").Inc()
				redirectSuccess(w, r, decision.Redirect)
				return
			default:
				metrics.GuardDecisionsTotal.WithLabelValues("home_redirect").Inc()
				log.Debug().Str("role", res.Session.Role.String()).Str("requires", req.String()).Str("path", r.URL.Path).Msg("role not admitted")
				redirectSuccess(w, r, decision.Redirect)
				return
			}

			ctx := sessions.WithSession(r.Context(), *res.Session)
			ctx = context.WithValue(ctx, slotContextKey, slot)
			ctx = context.WithValue(ctx, connContextKey, s.connect(ctx, store.Key(), *res.Session))
			next(w, r.WithContext(ctx))
		}
	}
}

// connect builds the backend connection for one request. Its bearer is renewed through the slot,
// so refreshed credentials are persisted before any other request can read them.
func (s *Server) connect(ctx context.Context, key string, session sessions.Session) *gateway.Conn {
	return s.backend.Connect(ctx, &slotTokenSource{ctx: ctx, s: s, key: key, tok: session.Credentials.Token()})
}

func slotFromContext(ctx context.Context) string {
	slot, _ := ctx.Value(slotContextKey).(string)
	return slot
}

func connFromContext(ctx context.Context) *gateway.Conn {
	conn, _ := ctx.Value(connContextKey).(*gateway.Conn)
	return conn
}

// handleBackendError reports whether err ended the session. An unauthorized backend response means
// the bearer can no longer be refreshed, so the browser is signed out and sent to login with next
// as the return path.
func (s *Server) handleBackendError(w http.ResponseWriter, r *http.Request, err error, next string) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}
	log.Info().Err(err).Str("path", r.URL.Path).Msg("backend rejected credentials; signing out")
	if err := s.endSlot(r.Context(), w, r); err != nil {
		log.Warn().Err(err).Msg("failed to clear expired session")
	}
	redirectWithError(w, r, guard.LoginURL(next), gateway.MessageOf(err))
	return true
}
