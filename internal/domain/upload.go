package domain

import (
	"context"
	"io"
)

// Blob is a file selected in a form but not yet uploaded.
type Blob struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageUploader stores a blob under key and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, blob *Blob, key string) (string, error)
}
