package redisrepo_test

import (
	"context"
	"os"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/sessions/redisrepo"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when REDIS_TEST_ADDR is set, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	repo, err := redisrepo.Connect(ctx, redisrepo.Config{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer repo.Close()

	key := "test-" + time.Now().Format("150405.000000")

	_, err = repo.Get(ctx, key)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, repo.Put(ctx, key, []byte(`{"role":"admin"}`)))
	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"admin"}`, string(got))

	require.NoError(t, repo.Update(ctx, key, []byte(`{"role":"staff"}`)))
	got, err = repo.Get(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"staff"}`, string(got))
	require.NoError(t, repo.Ping(ctx))

	require.NoError(t, repo.Delete(ctx, key))
	_, err = repo.Get(ctx, key)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	require.ErrorIs(t, repo.Update(ctx, key, []byte(`{}`)), apperrors.ErrSessionNotFound)
}

func TestConnectFailsFast(t *testing.T) {
	_, err := redisrepo.Connect(context.Background(), redisrepo.Config{
		Addr:    "127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})
	require.Error(t, err)
}
