package repository

import (
	"context"
	"errors"

	"github.com/wearella/marketpulse/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a create would collide with an existing
	// (platform, dateRange, reportType) natural key.
	ErrDuplicate = errors.New("record already exists for this platform, date range and report type")
)

// UploadRecordRepository persists aggregated upload records.
type UploadRecordRepository interface {
	Create(ctx context.Context, record *domain.UploadRecord) error
	GetByID(ctx context.Context, id string) (*domain.UploadRecord, error)
	FindByKey(ctx context.Context, key domain.RecordKey) (*domain.UploadRecord, error)
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.UploadRecord, error)
	// ListRecent returns the newest records by start date, bounded by limit.
	ListRecent(ctx context.Context, limit int, platform domain.Platform, reportType domain.ReportType) ([]domain.UploadRecord, error)
	// Upsert replaces any record holding the same natural key; last write wins.
	Upsert(ctx context.Context, record *domain.UploadRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByKey(ctx context.Context, key domain.RecordKey) error
}
