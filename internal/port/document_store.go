package port

import (
	"context"
	"io"
)

// StoreInput encapsulates the parameters needed to store a queued document.
type StoreInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// DocumentStore abstracts storage of queued PDF documents.
type DocumentStore interface {
	Put(ctx context.Context, input StoreInput) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
