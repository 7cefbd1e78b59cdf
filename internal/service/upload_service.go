package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wearella/marketpulse/internal/cache"
	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
	"github.com/wearella/marketpulse/internal/pipeline"
	"github.com/wearella/marketpulse/internal/repository"
	"github.com/wearella/marketpulse/internal/storage"
)

// ErrDuplicateUpload signals that a record for the same platform, date
// range and report type already exists and the caller did not opt into
// overwriting it.
var ErrDuplicateUpload = errors.New("a report for this platform, date range and report type already exists")

// UploadRequest carries one parsed report file through ingestion.
type UploadRequest struct {
	Platform   domain.Platform
	ReportType domain.ReportType
	StartDate  time.Time
	EndDate    time.Time
	Filename   string
	Rows       []ingest.Row
	// Raw holds the original file bytes for archiving; may be nil.
	Raw []byte
	// Overwrite replaces an existing record with the same natural key.
	Overwrite bool
}

type UploadService struct {
	repo    repository.UploadRecordRepository
	agg     *pipeline.Aggregator
	cache   cache.ReportCache
	archive storage.UploadArchive
}

func NewUploadService(repo repository.UploadRecordRepository, agg *pipeline.Aggregator, cacheImpl cache.ReportCache, archive storage.UploadArchive) *UploadService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if archive == nil {
		archive = storage.NewNoopArchive()
	}
	return &UploadService{repo: repo, agg: agg, cache: cacheImpl, archive: archive}
}

// Process aggregates the rows into an UploadRecord and persists it.
// Re-uploads of the same natural key replace the stored record only when
// Overwrite is set; otherwise the existing record is returned alongside
// ErrDuplicateUpload so the caller can prompt for confirmation.
func (s *UploadService) Process(ctx context.Context, req UploadRequest) (*domain.UploadRecord, error) {
	record, err := s.agg.BuildRecord(req.Rows, req.Platform, req.ReportType, req.StartDate, req.EndDate, req.Filename)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByKey(ctx, record.Key())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && !req.Overwrite {
		return existing, ErrDuplicateUpload
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("upload: cache invalidation failed")
	}
	s.archiveRaw(ctx, record, req.Raw)

	log.Info().
		Str("platform", string(record.Platform)).
		Str("report_type", string(record.ReportType)).
		Str("date_range", record.DateRange).
		Int("rows", len(req.Rows)).
		Bool("replaced", existing != nil).
		Msg("upload processed")

	return record, nil
}

// archiveRaw stores the original bytes best-effort; archive failures never
// fail the upload.
func (s *UploadService) archiveRaw(ctx context.Context, record *domain.UploadRecord, raw []byte) {
	if len(raw) == 0 {
		return
	}
	key := storage.ArchiveKey(record.Platform, record.ReportType, record.DateRange, record.Filename)
	if err := s.archive.Put(ctx, key, raw); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("upload: archiving raw file failed")
	}
}

func (s *UploadService) Get(ctx context.Context, id string) (*domain.UploadRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UploadService) List(ctx context.Context, filter domain.RecordFilter) ([]domain.UploadRecord, error) {
	return s.repo.List(ctx, filter)
}

func (s *UploadService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("upload: cache invalidation failed")
	}
	return nil
}

func (s *UploadService) DeleteByKey(ctx context.Context, key domain.RecordKey) error {
	if err := s.repo.DeleteByKey(ctx, key); err != nil {
		return err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("upload: cache invalidation failed")
	}
	return nil
}
