package sessions

import (
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/roles"
	"golang.org/x/oauth2"
)

// LoginProvider records how a session was established, which decides how its credentials refresh.
type LoginProvider string

const (
	ProviderPassword LoginProvider = "password" // Backend /auth/login, refreshed through /auth/refresh
	ProviderSSO      LoginProvider = "sso"      // OIDC identity provider, refreshed through its token endpoint
)

// Credentials is the bearer material the gateway attaches to backend calls.
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Token converts the credentials for use with an oauth2.TokenSource.
func (c Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// CredentialsFromToken is the inverse of Credentials.Token.
func CredentialsFromToken(t *oauth2.Token) Credentials {
	if t == nil {
		return Credentials{}
	}
	return Credentials{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

// Session is the authenticated identity of one browser.
type Session struct {
	Name        string        `json:"name"`
	Email       string        `json:"email,omitempty"`
	Role        roles.Role    `json:"role"`
	CenterID    string        `json:"centerId,omitempty"`
	Provider    LoginProvider `json:"provider,omitempty"`
	Credentials Credentials   `json:"credentials"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Validate enforces the session invariant: a present session always carries an enumerated role.
func (s Session) Validate() error {
	if !s.Role.Valid() {
		return fmt.Errorf("[Session Validate] role %q: %w", s.Role, apperrors.ErrInvalidRole)
	}
	return nil
}

// DisplayName falls back to the email when the backend supplied no name.
func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}
