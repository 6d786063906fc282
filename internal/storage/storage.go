package storage

import (
	"context"
	"time"
)

// ObjectInfo represents metadata for a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStorage captures the minimal S3-compatible operations the upload
// archive needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
