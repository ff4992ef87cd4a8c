// Package redisrepo stores serialized sessions in Redis so several dashboard instances share them.
package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "evcenter:"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	TTL     time.Duration // Expiry applied on every write; zero keeps keys forever
	Timeout time.Duration
}

type Repo struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ sessions.Repo   = (*Repo)(nil)
	_ sessions.Pinger = (*Repo)(nil)
)

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*Repo, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisrepo Connect] ping: %w", err)
	}

	return New(client, cfg.TTL), nil
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{client: client, ttl: ttl}
}

func (r *Repo) Close() error { return r.client.Close() }

func (r *Repo) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[redisrepo Get] %w", err)
	}
	return value, nil
}

func (r *Repo) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("[redisrepo Put] %w", err)
	}
	return nil
}

// Update only writes when the key still exists (SET XX), so a slot removed by logout stays removed.
func (r *Repo) Update(ctx context.Context, key string, value []byte) error {
	err := r.client.SetArgs(ctx, keyPrefix+key, value, redis.SetArgs{Mode: "XX", TTL: r.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return apperrors.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("[redisrepo Update] %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("[redisrepo Delete] %w", err)
	}
	return nil
}
