package gateway

import (
	"context"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/evcenter-admin/roles"
	"golang.org/x/oauth2"
)

const resourceAuth = "auth"

// Identity is who the backend says signed in.
type Identity struct {
	Name     string
	Email    string
	Role     roles.Role
	CenterID string
}

// AuthResult is a successful login or refresh.
type AuthResult struct {
	Token    *oauth2.Token
	Identity Identity
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		CenterID string `json:"centerId"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token and the account's identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, c.httpClient, operation{resourceAuth, "login"}, http.MethodPost, "/auth/login", nil,
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &Error{StatusCode: http.StatusBadGateway, Message: FallbackMessage}
	}

	role, err := roles.Parse(resp.User.Role)
	if err != nil {
		return nil, &Error{StatusCode: http.StatusForbidden, Message: "This account has no access to the dashboard.", cause: err}
	}

	return &AuthResult{
		Token: c.token(resp),
		Identity: Identity{
			Name:     resp.User.Name,
			Email:    resp.User.Email,
			Role:     role,
			CenterID: resp.User.CenterID,
		},
	}, nil
}

// Refresh trades a refresh token for a new bearer token. The old refresh token is kept when the
// backend does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var resp authResponse
	err := c.do(ctx, c.httpClient, operation{resourceAuth, "refresh"}, http.MethodPost, "/auth/refresh", nil,
		refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &Error{StatusCode: http.StatusUnauthorized, Message: unauthorizedMessage}
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return c.token(resp), nil
}

func (c *Client) token(resp authResponse) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: resp.RefreshToken,
		Expiry:       c.expiry(resp.ExpiresIn, resp.AccessToken),
	}
}

// expiry prefers expiresIn and falls back to the access token's exp claim. The signature is not
// checked here; the backend validates its own tokens.
func (c *Client) expiry(expiresIn int64, accessToken string) time.Time {
	if expiresIn > 0 {
		return c.now().Add(time.Duration(expiresIn) * time.Second)
	}
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
