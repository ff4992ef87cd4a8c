package sessions

import "context"

// Repo is durable key/value storage for serialized sessions. Each key holds one session slot.
// Get and Update return apperrors.ErrSessionNotFound when the key is absent.
type Repo interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update overwrites an existing key and never creates one.
	Update(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by repos backed by a server or file that can become unavailable.
type Pinger interface {
	Ping(ctx context.Context) error
}
