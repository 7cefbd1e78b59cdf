package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/chartmuseum/storage"

	"github.com/wearella/marketpulse/internal/config"
	"github.com/wearella/marketpulse/internal/domain"
)

// ArchiveKey builds the canonical object key for an uploaded report file:
// <platform>/<reportType>/<dateRange>/<filename>.
func ArchiveKey(platform domain.Platform, reportType domain.ReportType, dateRange, filename string) string {
	if filename == "" {
		filename = "upload"
	}
	return path.Join(string(platform), string(reportType), dateRange, filename)
}

// FileArchive stores archive objects on the local filesystem through
// chartmuseum's storage backend.
type FileArchive struct {
	backend storage.Backend
}

// NewFileArchive creates an archive rooted at cfg.Dir.
func NewFileArchive(cfg config.ArchiveConfig) (*FileArchive, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("archive directory must be provided")
	}
	return &FileArchive{
		backend: storage.NewLocalFilesystemBackend(dir),
	}, nil
}

func (a *FileArchive) Put(ctx context.Context, key string, data []byte) error {
	if err := a.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("archive put %s failed: %w", key, err)
	}
	return nil
}

func (a *FileArchive) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := a.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("archive get %s failed: %w", key, err)
	}
	return object.Content, nil
}

func (a *FileArchive) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := a.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("archive list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(objects))
	for _, object := range objects {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

func (a *FileArchive) Delete(ctx context.Context, key string) error {
	if err := a.backend.DeleteObject(key); err != nil {
		return fmt.Errorf("archive delete %s failed: %w", key, err)
	}
	return nil
}

var _ UploadArchive = (*FileArchive)(nil)

// noopArchive drops everything; used when archiving is disabled.
type noopArchive struct{}

func NewNoopArchive() UploadArchive { return noopArchive{} }

func (noopArchive) Put(ctx context.Context, key string, data []byte) error { return nil }

func (noopArchive) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("archiving is disabled")
}

func (noopArchive) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (noopArchive) Delete(ctx context.Context, key string) error { return nil }
