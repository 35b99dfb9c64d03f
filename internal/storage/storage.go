package storage

import (
	"context"
	"io"
)

// Store persists uploaded images. Save returns the location handed to the
// processor as image_path.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
