// Package authflowrepo keeps the short-lived state of in-flight single sign-on redirects.
package authflowrepo

import "time"

// DefaultTTL bounds how long a visitor may spend at the identity provider.
const DefaultTTL = 10 * time.Minute

// AuthFlowState is what the callback needs to finish a sign-on started by this dashboard.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

// Repo stores flow state keyed by the OAuth state parameter. Take is single use: a state can
// complete at most one sign-on.
type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Take(state string) (*AuthFlowState, error)
}
