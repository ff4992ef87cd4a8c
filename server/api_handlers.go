package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/evcenter-admin/guard"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

// SessionInfo is the public view of the current session. Credentials are never exposed.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	CenterID      string `json:"centerId,omitempty"`
	Home          string `json:"home,omitempty"`
}

func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		info := SessionInfo{}
		if _, _, res := s.resolve(r); sessions.IsAuthenticated(res.Session) {
			info = SessionInfo{
				Authenticated: true,
				Name:          res.Session.Name,
				Email:         res.Session.Email,
				Role:          res.Session.Role.String(),
				CenterID:      res.Session.CenterID,
				Home:          guard.HomePath(res.Session.Role),
			}
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// HealthHandler reports 503 when the session storage cannot be reached.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.sessions.(sessions.Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("session storage unreachable")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write JSON response")
	}
}
