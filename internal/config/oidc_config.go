package config

type OIDCConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRedirectURL() string
	GetOIDCRoleClaim() string
	SSOEnabled() bool
}

// OIDC configures the optional single sign-on login. SSO is enabled when an issuer and client ID are set.
type OIDC struct {
	Issuer       string `env:"OIDC_ISSUER"`
	ClientID     string `env:"OIDC_CLIENT_ID"`
	ClientSecret string `env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string `env:"OIDC_REDIRECT_URL, default=http://localhost:8080/callback"`
	RoleClaim    string `env:"OIDC_ROLE_CLAIM, default=role"`
}

var _ OIDCConfig = OIDC{}

func (o OIDC) GetOIDCIssuer() string       { return o.Issuer }
func (o OIDC) GetOIDCClientID() string     { return o.ClientID }
func (o OIDC) GetOIDCClientSecret() string { return o.ClientSecret }
func (o OIDC) GetOIDCRedirectURL() string  { return o.RedirectURL }
func (o OIDC) GetOIDCRoleClaim() string    { return o.RoleClaim }

func (o OIDC) SSOEnabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}
