package storage

import "context"

// ObjectInfo represents metadata for a stored archive object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// UploadArchive keeps the original uploaded report bytes so a past upload
// can be re-inspected or re-ingested after a mapping change.
type UploadArchive interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}
