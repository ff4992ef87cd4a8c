package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/guard"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/internal/metrics"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
)

const (
	missingCredentialsMessage = "Email and password are required."
	tooManyAttemptsMessage    = "Too many sign-in attempts. Please wait a minute and try again."
	sessionStartMessage       = "Could not start your session. Please try again."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Next       string
	Error      string
	Email      string // Preserve email on error
	SSOEnabled bool
	SSOPath    string
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginPageData) {
	data.SSOEnabled = s.config.SSOEnabled()
	if data.SSOEnabled {
		data.SSOPath = RouteSSO
		if data.Next != "" {
			data.SSOPath = withQuery(RouteSSO, guard.NextParam, data.Next)
		}
	}
	page := pageData{AppName: s.config.GetAppName(), Title: "Sign in", Content: data}
	s.renderPage(w, status, "login.html", page)
}

// LoginPageUIHandler displays the login page (GET /login). A visitor who is already signed in goes
// straight on to next or their home page.
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := guard.SafeNext(r.URL.Query().Get(guard.NextParam))

		if _, _, res := s.resolve(r); sessions.IsAuthenticated(res.Session) {
			redirectSuccess(w, r, guard.AfterLogin(next, res.Session.Role))
			return
		}

		s.renderLogin(w, r, http.StatusOK, LoginPageData{
			Next:  next,
			Error: r.URL.Query().Get("error"),
			Email: r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.PostForm.Get("email"))
		password := r.PostForm.Get("password")
		next := guard.SafeNext(r.PostForm.Get(guard.NextParam))
		data := LoginPageData{Next: next, Email: email}

		if err := s.checkLoginAttempt(r, email, password); err != nil {
			if errors.Is(err, apperrors.ErrTooManyAttempts) {
				metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderPassword), "throttled").Inc()
				data.Error = tooManyAttemptsMessage
				w.Header().Set("Retry-After", "60")
				s.renderLogin(w, r, http.StatusTooManyRequests, data)
				return
			}
			data.Error = missingCredentialsMessage
			s.renderLogin(w, r, http.StatusBadRequest, data)
			return
		}

		result, err := s.backend.Login(r.Context(), email, password)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderPassword), "failure").Inc()
			log.Info().Err(err).Str("email", email).Msg("login rejected")
			data.Error = gateway.MessageOf(err)
			s.renderLogin(w, r, http.StatusUnauthorized, data)
			return
		}

		session := sessions.Session{
			Name:        result.Identity.Name,
			Email:       result.Identity.Email,
			Role:        result.Identity.Role,
			CenterID:    result.Identity.CenterID,
			Provider:    sessions.ProviderPassword,
			Credentials: sessions.CredentialsFromToken(result.Token),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.startSlot(r.Context(), w, r, session); err != nil {
			metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderPassword), "failure").Inc()
			log.Error().Err(err).Msg("failed to persist session")
			data.Error = sessionStartMessage
			s.renderLogin(w, r, http.StatusInternalServerError, data)
			return
		}

		metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderPassword), "success").Inc()
		log.Info().Str("email", session.Email).Str("role", session.Role.String()).Msg("signed in")
		redirectSuccess(w, r, guard.AfterLogin(next, session.Role))
	}
}

// checkLoginAttempt rejects a submission before it reaches the backend.
func (s *Server) checkLoginAttempt(r *http.Request, email, password string) error {
	if !s.limiter.Allow(clientIP(r)) {
		return apperrors.ErrTooManyAttempts
	}
	if email == "" || password == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidCredentials, "email and password are required")
	}
	return nil
}

// LogoutHandler clears the session and returns to the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.endSlot(r.Context(), w, r); err != nil {
			log.Warn().Err(err).Msg("failed to remove session on logout")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}
