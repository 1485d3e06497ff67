package cart

import (
	"context"
)

const keyPrefix = "cart:"

// Store persists serialized cart states under a fixed key per session.
// Load returns domain.ErrNotFound when nothing is stored for key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Key namespaces a session id.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}
