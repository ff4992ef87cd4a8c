package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/evcenter-admin/guard"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/internal/metrics"
	"github.com/jrsteele09/evcenter-admin/internal/utils"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/jrsteele09/evcenter-admin/server/authflowrepo"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	ssoUnavailableMessage = "Single sign-on is unavailable right now."
	ssoFailedMessage      = "Single sign-on failed. Please try again."
	ssoNoAccessMessage    = "This account has no access to the dashboard."
)

// SSOStartHandler sends the browser to the identity provider with PKCE and a nonce.
func (s *Server) SSOStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := guard.SafeNext(r.URL.Query().Get(guard.NextParam))

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("identity provider discovery failed")
			redirectWithError(w, r, guard.LoginURL(next), ssoUnavailableMessage)
			return
		}

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		verifier := oauth2.GenerateVerifier()
		if err := s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    next,
		}); err != nil {
			log.Error().Err(err).Msg("failed to store sign-on state")
			redirectWithError(w, r, guard.LoginURL(next), ssoUnavailableMessage)
			return
		}
		s.SetAuthSessionCookie(w, r, state, int(authflowrepo.DefaultTTL.Seconds()))

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oauth2.S256ChallengeOption(verifier),
			oidc.Nonce(nonce),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		fail := func(err error, returnURL string) {
			metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderSSO), "failure").Inc()
			log.Warn().Err(err).Msg("single sign-on failed")
			msg := ssoFailedMessage
			if apperrors.Is(err, apperrors.ErrInvalidRole) {
				msg = ssoNoAccessMessage
			}
			redirectWithError(w, r, guard.LoginURL(returnURL), msg)
		}

		// The state cookie binds the callback to the browser that started the flow
		s.SetAuthSessionCookie(w, r, "", -1)
		cookie, err := r.Cookie(authSessionCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != state {
			fail(apperrors.ErrInvalidState, "")
			return
		}

		authState, err := s.authState.Take(state)
		if err != nil {
			fail(err, "")
			return
		}
		if errorParam != "" {
			fail(fmt.Errorf("authorization failed: %s - %s", errorParam, r.FormValue("error_description")), authState.ReturnURL)
			return
		}
		if code == "" {
			fail(fmt.Errorf("missing code parameter"), authState.ReturnURL)
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			fail(err, authState.ReturnURL)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(r.Context(), code, oauth2.VerifierOption(authState.CodeVerifier))
		if err != nil {
			fail(fmt.Errorf("token exchange failed: %w", err), authState.ReturnURL)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			fail(fmt.Errorf("no id_token in response: %w", apperrors.ErrMissingClaims), authState.ReturnURL)
			return
		}

		idToken, err := oidcConfig.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			fail(fmt.Errorf("id token verification failed: %w", err), authState.ReturnURL)
			return
		}

		session, err := s.sessionFromIDToken(idToken, authState.Nonce)
		if err != nil {
			fail(err, authState.ReturnURL)
			return
		}
		session.Credentials = sessions.CredentialsFromToken(oauth2Token)

		if err := s.startSlot(r.Context(), w, r, session); err != nil {
			fail(err, authState.ReturnURL)
			return
		}

		metrics.LoginsTotal.WithLabelValues(string(sessions.ProviderSSO), "success").Inc()
		log.Info().Str("email", session.Email).Str("role", session.Role.String()).Msg("signed in with single sign-on")
		redirectSuccess(w, r, guard.AfterLogin(authState.ReturnURL, session.Role))
	}
}

// sessionFromIDToken checks the nonce and maps the configured role claim onto the dashboard's
// role enumeration. The claim may be a string or a list; the first recognised role wins.
func (s *Server) sessionFromIDToken(idToken *oidc.IDToken, nonce string) (sessions.Session, error) {
	if idToken.Nonce != nonce {
		return sessions.Session{}, apperrors.ErrInvalidNonce
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return sessions.Session{}, fmt.Errorf("failed to extract claims: %w", err)
	}

	role, err := roleFromClaim(claims[s.config.GetOIDCRoleClaim()])
	if err != nil {
		return sessions.Session{}, err
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return sessions.Session{
		Name:      str("name"),
		Email:     str("email"),
		Role:      role,
		CenterID:  str("center_id"),
		Provider:  sessions.ProviderSSO,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func roleFromClaim(claim any) (roles.Role, error) {
	var candidates []string
	switch v := claim.(type) {
	case string:
		candidates = strings.Fields(strings.ReplaceAll(v, ",", " "))
	case []any:
		candidates = utils.ToStringSlice(v)
	}
	for _, c := range candidates {
		if r, err := roles.Parse(c); err == nil {
			return r, nil
		}
	}
	return "", fmt.Errorf("role claim %v: %w", claim, apperrors.ErrInvalidRole)
}
