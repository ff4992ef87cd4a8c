package gateway

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Conn is an authenticated view of the backend. Every request it sends carries the bearer from
// its token source.
type Conn struct {
	client *Client
	http   *http.Client
}

// Connect binds the client to a token source. The source decides how an expired token is
// refreshed; see RefreshTokenSource for password sessions.
func (c *Client) Connect(_ context.Context, src oauth2.TokenSource) *Conn {
	return &Conn{
		client: c,
		http: &http.Client{
			Transport: &oauth2.Transport{Base: c.httpClient.Transport, Source: src},
			Timeout:   c.httpClient.Timeout,
		},
	}
}

func (c *Conn) do(ctx context.Context, op operation, method, path string, query url.Values, in, out any) error {
	return c.client.do(ctx, c.http, op, method, path, query, in, out)
}

// RefreshTokenSource returns a source that serves t until it expires and then trades the refresh
// token at the backend. ctx bounds the refresh call.
func (c *Client) RefreshTokenSource(ctx context.Context, t *oauth2.Token) oauth2.TokenSource {
	rt := ""
	if t != nil {
		rt = t.RefreshToken
	}
	return oauth2.ReuseTokenSource(t, &backendRefresher{ctx: ctx, client: c, refreshToken: rt})
}

type backendRefresher struct {
	ctx          context.Context
	client       *Client
	mu           sync.Mutex
	refreshToken string
}

func (b *backendRefresher) Token() (*oauth2.Token, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refreshToken == "" {
		return nil, Expired()
	}
	t, err := b.client.Refresh(b.ctx, b.refreshToken)
	if err != nil {
		return nil, err
	}
	b.refreshToken = t.RefreshToken
	return t, nil
}

// NotifyOnRefresh wraps src and calls fn each time it yields an access token different from the
// last one seen, starting from current. fn runs synchronously inside the request that triggered
// the refresh.
func NotifyOnRefresh(src oauth2.TokenSource, current *oauth2.Token, fn func(*oauth2.Token)) oauth2.TokenSource {
	last := ""
	if current != nil {
		last = current.AccessToken
	}
	return &notifyingSource{src: src, last: last, fn: fn}
}

type notifyingSource struct {
	src  oauth2.TokenSource
	fn   func(*oauth2.Token)
	mu   sync.Mutex
	last string
}

func (n *notifyingSource) Token() (*oauth2.Token, error) {
	t, err := n.src.Token()
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	changed := t.AccessToken != n.last
	n.last = t.AccessToken
	n.mu.Unlock()

	if changed && n.fn != nil {
		log.Debug().Time("expiry", t.Expiry).Msg("bearer credential refreshed")
		n.fn(t)
	}
	return t, nil
}
