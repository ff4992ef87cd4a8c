package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/internal/mockapi"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type part struct {
	ID  string `json:"id"`
	SKU string `json:"sku"`
}

func newBackend(t *testing.T, opts ...mockapi.Option) (*mockapi.Server, *gateway.Client) {
	t.Helper()
	api := mockapi.New(opts...)
	require.NoError(t, api.AddUser("Sam Staff", "staff@example.com", "staff-pass", "staff", "center-1"))
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, gateway.New(srv.URL + "/")
}

func login(t *testing.T, c *gateway.Client) *gateway.AuthResult {
	t.Helper()
	res, err := c.Login(context.Background(), "staff@example.com", "staff-pass")
	require.NoError(t, err)
	return res
}

func TestLogin(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	api := mockapi.New(mockapi.WithClock(func() time.Time { return now }))
	require.NoError(t, api.AddUser("Sam Staff", "staff@example.com", "staff-pass", "staff", "center-1"))
	srv := httptest.NewServer(api)
	defer srv.Close()
	c := gateway.New(srv.URL, gateway.WithClock(func() time.Time { return now }))

	res, err := c.Login(context.Background(), "staff@example.com", "staff-pass")
	require.NoError(t, err)
	assert.Equal(t, gateway.Identity{Name: "Sam Staff", Email: "staff@example.com", Role: roles.Staff, CenterID: "center-1"}, res.Identity)
	assert.NotEmpty(t, res.Token.AccessToken)
	assert.NotEmpty(t, res.Token.RefreshToken)
	assert.Equal(t, now.Add(15*time.Minute), res.Token.Expiry)
}

func TestLoginInvalidCredentials(t *testing.T) {
	_, c := newBackend(t)
	_, err := c.Login(context.Background(), "staff@example.com", "nope")

	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Equal(t, "Invalid email or password", gwErr.Message)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	api, c := newBackend(t)
	require.NoError(t, api.AddUser("Eve", "eve@example.com", "pw", "superuser", ""))
	_, err := c.Login(context.Background(), "eve@example.com", "pw")
	require.ErrorIs(t, err, gateway.ErrForbidden)
}

func TestExpiryFallsBackToJWTClaim(t *testing.T) {
	_, c := newBackend(t, mockapi.WithoutExpiresIn(), mockapi.WithTokenTTL(time.Hour))
	res := login(t, c)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.Token.Expiry, 5*time.Second)
}

func TestConnAttachesBearer(t *testing.T) {
	api, c := newBackend(t)
	res := login(t, c)
	conn := c.Connect(context.Background(), oauth2.StaticTokenSource(res.Token))

	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.NoError(t, err)

	reqs := api.RequestsTo(http.MethodGet, "/parts")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+res.Token.AccessToken, reqs[0].Authorization)
	assert.Equal(t, "1", reqs[0].Query.Get("page"))
	assert.Equal(t, "20", reqs[0].Query.Get("limit"))
}

func TestPagination(t *testing.T) {
	api, c := newBackend(t)
	for i := 0; i < 45; i++ {
		api.Seed("parts", mockapi.Record{"sku": fmt.Sprintf("P-%02d", i)})
	}
	conn := c.Connect(context.Background(), oauth2.StaticTokenSource(login(t, c).Token))
	parts := gateway.NewResource[part](conn, "parts")

	first, err := parts.List(context.Background(), gateway.Page{Number: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 45, first.Total)
	assert.Equal(t, 3, first.TotalPages())
	assert.Len(t, first.Items, 20)

	last, err := parts.List(context.Background(), gateway.Page{Number: 3, Limit: 20})
	require.NoError(t, err)
	require.Len(t, last.Items, 5)
	assert.Equal(t, "P-40", last.Items[0].SKU)
	assert.Equal(t, 3, last.TotalPages())
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{45, 20, 3},
		{40, 20, 2},
		{0, 20, 0},
		{1, 20, 1},
		{5, 0, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, gateway.TotalPages(tc.total, tc.limit), "%d/%d", tc.total, tc.limit)
	}
}

func TestResourceCRUD(t *testing.T) {
	api, c := newBackend(t)
	conn := c.Connect(context.Background(), oauth2.StaticTokenSource(login(t, c).Token))
	parts := gateway.NewResource[part](conn, "parts")
	ctx := context.Background()

	created, err := parts.Create(ctx, part{SKU: "BRK-1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := parts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := parts.Update(ctx, created.ID, part{SKU: "BRK-2"})
	require.NoError(t, err)
	assert.Equal(t, part{ID: created.ID, SKU: "BRK-2"}, updated)

	require.NoError(t, parts.Delete(ctx, created.ID))
	assert.Empty(t, api.Records("parts"))

	_, err = parts.Get(ctx, created.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Equal(t, "Record not found", gateway.MessageOf(err))
}

func TestErrorNormalization(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		message string
		code    string
	}{
		"message":           {http.StatusConflict, `{"message":"SKU already exists"}`, "SKU already exists", ""},
		"error string":      {http.StatusBadRequest, `{"error":"quantity must be positive"}`, "quantity must be positive", "quantity must be positive"},
		"nested error":      {http.StatusUnprocessableEntity, `{"error":{"message":"bad VIN","code":"vin_invalid"}}`, "bad VIN", "vin_invalid"},
		"oauth2 style":      {http.StatusBadRequest, `{"error":"invalid_grant","error_description":"refresh token revoked"}`, "refresh token revoked", "invalid_grant"},
		"html body":         {http.StatusBadGateway, `<html>bad gateway</html>`, gateway.FallbackMessage, ""},
		"empty body":        {http.StatusInternalServerError, ``, gateway.FallbackMessage, ""},
		"empty 401":         {http.StatusUnauthorized, ``, "Your session has expired. Please sign in again.", ""},
		"message with code": {http.StatusConflict, `{"message":"in use","code":"conflict"}`, "in use", "conflict"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			conn := gateway.New(srv.URL).Connect(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
			_, err := gateway.NewResource[part](conn, "parts").Get(context.Background(), "1")

			var gwErr *gateway.Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tc.status, gwErr.StatusCode)
			assert.Equal(t, tc.message, gwErr.Message)
			assert.Equal(t, tc.code, gwErr.Code)
		})
	}
}

func TestBackendErrorLogFields(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"SKU already exists"}`))
	}))
	defer srv.Close()

	conn := gateway.New(srv.URL).Connect(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	_, err := gateway.NewResource[part](conn, "parts").Get(context.Background(), "1")
	require.Error(t, err)

	type logEntry struct {
		Message        string `json:"message"`
		BackendMessage string `json:"backend_message"`
	}
	var line *logEntry
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		require.LessOrEqual(t, bytes.Count(raw, []byte(`"message":`)), 1, "duplicate message key in %s", raw)
		var entry logEntry
		require.NoError(t, json.Unmarshal(raw, &entry))
		if entry.Message == "backend returned an error" {
			line = &entry
		}
	}
	require.NotNil(t, line)
	assert.Equal(t, "SKU already exists", line.BackendMessage)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	conn := gateway.New(url).Connect(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})

	require.ErrorIs(t, err, gateway.ErrTransport)
	var gwErr *gateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Zero(t, gwErr.StatusCode)
	assert.Contains(t, gwErr.Message, "unreachable")
}

func TestMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"items":"nope"}}`))
	}))
	defer srv.Close()

	conn := gateway.New(srv.URL).Connect(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.Error(t, err)
	assert.Equal(t, gateway.FallbackMessage, gateway.MessageOf(err))
}

func TestBareBodiesAreAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"9","sku":"BARE"}`))
	}))
	defer srv.Close()

	conn := gateway.New(srv.URL).Connect(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	got, err := gateway.NewResource[part](conn, "parts").Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, part{ID: "9", SKU: "BARE"}, got)
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	api, c := newBackend(t)
	res := login(t, c)

	stale := *res.Token
	stale.Expiry = time.Now().Add(-time.Minute)

	var refreshed []*oauth2.Token
	src := gateway.NotifyOnRefresh(c.RefreshTokenSource(context.Background(), &stale), &stale, func(t *oauth2.Token) {
		refreshed = append(refreshed, t)
	})
	conn := c.Connect(context.Background(), src)

	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.NoError(t, err)

	require.Len(t, refreshed, 1)
	assert.NotEqual(t, stale.AccessToken, refreshed[0].AccessToken)
	assert.NotEqual(t, stale.RefreshToken, refreshed[0].RefreshToken)
	assert.Len(t, api.RequestsTo(http.MethodPost, "/auth/refresh"), 1)

	reqs := api.RequestsTo(http.MethodGet, "/parts")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+refreshed[0].AccessToken, reqs[0].Authorization)

	// A second call reuses the refreshed token.
	_, err = gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.NoError(t, err)
	assert.Len(t, refreshed, 1)
	assert.Len(t, api.RequestsTo(http.MethodPost, "/auth/refresh"), 1)
}

func TestFailedRefreshIsUnauthorized(t *testing.T) {
	api, c := newBackend(t)
	stale := &oauth2.Token{AccessToken: "old", RefreshToken: "revoked", Expiry: time.Now().Add(-time.Minute)}
	conn := c.Connect(context.Background(), c.RefreshTokenSource(context.Background(), stale))

	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Empty(t, api.RequestsTo(http.MethodGet, "/parts"))
}

func TestOAuthRetrieveErrorIsUnauthorized(t *testing.T) {
	src := oauth2.TokenSource(failingSource{})
	conn := gateway.New("http://127.0.0.1:1").Connect(context.Background(), src)
	_, err := gateway.NewResource[part](conn, "parts").List(context.Background(), gateway.Page{})
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.True(t, strings.Contains(gateway.MessageOf(err), "sign in"))
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, &oauth2.RetrieveError{Response: &http.Response{StatusCode: 400}, ErrorCode: "invalid_grant"}
}

func TestReportsSummary(t *testing.T) {
	api, c := newBackend(t)
	require.NoError(t, api.SeedDemo())
	conn := c.Connect(context.Background(), oauth2.StaticTokenSource(login(t, c).Token))

	sum, err := conn.Reports().Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.ActiveTechnicians)
	assert.Equal(t, 2, sum.LowStockParts)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", gateway.MessageOf(nil))
	assert.Equal(t, gateway.FallbackMessage, gateway.MessageOf(errors.New("boom")))
	assert.Equal(t, "x", gateway.MessageOf(fmt.Errorf("wrapped: %w", &gateway.Error{StatusCode: 400, Message: "x"})))
}
