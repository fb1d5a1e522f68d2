package port

import "context"

// StateStore is a single key-value slot holding the serialized result table.
// Save rewrites the whole slot; Load returns nil bytes when the slot is empty.
// Ping reports whether the backing store is reachable, for readiness checks.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
}
