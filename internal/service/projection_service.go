package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/wearella/marketpulse/internal/cache"
	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/projection"
	"github.com/wearella/marketpulse/internal/repository"
)

type ProjectionService struct {
	repo         repository.UploadRecordRepository
	engine       *projection.Engine
	cache        cache.ReportCache
	recentWindow int
}

func NewProjectionService(repo repository.UploadRecordRepository, engine *projection.Engine, cacheImpl cache.ReportCache, recentWindow int) *ProjectionService {
	if engine == nil {
		engine = projection.NewEngine(projection.DefaultConfig())
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if recentWindow <= 0 {
		recentWindow = 90
	}
	return &ProjectionService{repo: repo, engine: engine, cache: cacheImpl, recentWindow: recentWindow}
}

// Project forecasts sales over the recent order history, cache-aside.
func (s *ProjectionService) Project(ctx context.Context, sku string, horizonDays int, platform domain.Platform) (*domain.ProjectionResult, error) {
	if result, ok, err := s.cache.GetProjection(ctx, sku, horizonDays, platform); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("projection: cache get failed")
	}

	records, err := s.repo.ListRecent(ctx, s.recentWindow, platform, domain.ReportOrders)
	if err != nil {
		return nil, err
	}

	result := s.engine.Project(records, sku, horizonDays, platform)
	if err := s.cache.SetProjection(ctx, sku, horizonDays, platform, &result); err != nil {
		log.Warn().Err(err).Msg("projection: cache set failed")
	}
	return &result, nil
}
