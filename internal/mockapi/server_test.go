package mockapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/evcenter-admin/internal/mockapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestLogin(t *testing.T) {
	api := mockapi.New()
	require.NoError(t, api.AddUser("Sam", "sam@example.com", "secret", "staff", "c1"))

	code, body := do(t, api, http.MethodPost, "/auth/login", "", map[string]string{"email": "SAM@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	assert.EqualValues(t, 900, data["expiresIn"])
	assert.Equal(t, "staff", data["user"].(map[string]any)["role"])

	code, body = do(t, api, http.MethodPost, "/auth/login", "", map[string]string{"email": "sam@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestRefreshRotates(t *testing.T) {
	api := mockapi.New()
	require.NoError(t, api.AddUser("Sam", "sam@example.com", "secret", "staff", ""))
	_, body := do(t, api, http.MethodPost, "/auth/login", "", map[string]string{"email": "sam@example.com", "password": "secret"})
	refresh := body["data"].(map[string]any)["refreshToken"].(string)

	code, body := do(t, api, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, refresh, body["data"].(map[string]any)["refreshToken"])

	code, _ = do(t, api, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCollectionsRequireBearer(t *testing.T) {
	api := mockapi.New()
	code, body := do(t, api, http.MethodGet, "/parts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Missing bearer token", body["message"])

	code, _ = do(t, api, http.MethodGet, "/parts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, err := api.IssueToken("x@example.com", -time.Minute)
	require.NoError(t, err)
	code, _ = do(t, api, http.MethodGet, "/parts", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestListPagination(t *testing.T) {
	api := mockapi.New()
	for i := 0; i < 45; i++ {
		api.Seed("parts", mockapi.Record{"sku": fmt.Sprintf("P-%02d", i)})
	}
	token, err := api.IssueToken("x@example.com", time.Minute)
	require.NoError(t, err)

	code, body := do(t, api, http.MethodGet, "/parts?page=3&limit=20", token, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 45, data["total"])
	items := data["items"].([]any)
	require.Len(t, items, 5)
	assert.Equal(t, "P-40", items[0].(map[string]any)["sku"])

	reqs := api.RequestsTo(http.MethodGet, "/parts")
	require.Len(t, reqs, 1)
	assert.Equal(t, "3", reqs[0].Query.Get("page"))
	assert.Equal(t, "Bearer "+token, reqs[0].Authorization)
}

func TestCRUDAndInjectedFailure(t *testing.T) {
	api := mockapi.New()
	token, err := api.IssueToken("x@example.com", time.Minute)
	require.NoError(t, err)

	code, body := do(t, api, http.MethodPost, "/customers", token, map[string]any{"name": "Jo"})
	require.Equal(t, http.StatusCreated, code)
	id := body["data"].(map[string]any)["id"].(string)
	require.NotEmpty(t, id)

	code, body = do(t, api, http.MethodPut, "/customers/"+id, token, map[string]any{"data": map[string]any{"name": "Joanna"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Joanna", body["data"].(map[string]any)["name"])

	api.FailNext(http.MethodDelete, "customers", http.StatusConflict, "Customer has open invoices")
	code, body = do(t, api, http.MethodDelete, "/customers/"+id, token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Customer has open invoices", body["message"])
	assert.Len(t, api.Records("customers"), 1)

	code, _ = do(t, api, http.MethodDelete, "/customers/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, api.Records("customers"))

	code, _ = do(t, api, http.MethodGet, "/customers/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, api, http.MethodGet, "/spaceships", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSeedDemoSummary(t *testing.T) {
	api := mockapi.New()
	require.NoError(t, api.SeedDemo())
	token, err := api.IssueToken("admin@evcenter.test", time.Minute)
	require.NoError(t, err)

	code, body := do(t, api, http.MethodGet, "/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["activeTechnicians"])
	assert.EqualValues(t, 2, data["lowStockParts"])
	assert.Len(t, api.Records("appointments"), 25)
}
