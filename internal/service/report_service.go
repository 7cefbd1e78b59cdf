package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/wearella/marketpulse/internal/cache"
	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/pipeline"
	"github.com/wearella/marketpulse/internal/repository"
)

const defaultTopN = 10

type ReportService struct {
	repo         repository.UploadRecordRepository
	cache        cache.ReportCache
	recentWindow int
}

func NewReportService(repo repository.UploadRecordRepository, cacheImpl cache.ReportCache, recentWindow int) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if recentWindow <= 0 {
		recentWindow = 90
	}
	return &ReportService{repo: repo, cache: cacheImpl, recentWindow: recentWindow}
}

// Summary builds the cross-record dashboard aggregate, cache-aside.
func (s *ReportService) Summary(ctx context.Context, filter domain.RecordFilter) (*domain.DashboardSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get summary failed")
	}

	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(records)

	if err := s.cache.SetSummary(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("report: cache set summary failed")
	}
	return summary, nil
}

func buildSummary(records []domain.UploadRecord) *domain.DashboardSummary {
	summary := &domain.DashboardSummary{RecordCount: len(records)}
	for i := range records {
		r := &records[i]
		summary.TotalOrders += r.TotalOrders
		summary.TotalSales += r.TotalSales
		summary.TotalReturns += r.TotalReturns
		summary.TotalRefundAmount += r.TotalRefundAmount
		summary.TotalStock += r.TotalStock
		summary.TotalFreeStock += r.TotalFreeStock
	}

	summary.TopSkus = pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Skus }).TopN(defaultTopN)
	summary.TopCategories = pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Categories }).TopN(defaultTopN)
	summary.TopCities = pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Cities }).TopN(defaultTopN)
	summary.ReturnReasons = pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.ReturnReasons }).TopN(defaultTopN)
	summary.PlatformBreakdown = pipeline.PlatformTotals(records, func(r *domain.UploadRecord) float64 { return r.TotalSales }).TopN(0)
	summary.TopParentSkus = pipeline.ParentRollups(records, defaultTopN)
	return summary
}

// TopSkus serves a single-dimension rollup with a caller-chosen bound.
func (s *ReportService) TopSkus(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.KeyTotal, error) {
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Skus }).TopN(n), nil
}

func (s *ReportService) TopCategories(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.KeyTotal, error) {
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Categories }).TopN(n), nil
}

// PlatformBreakdown sums sales per marketplace.
func (s *ReportService) PlatformBreakdown(ctx context.Context, filter domain.RecordFilter) ([]domain.KeyTotal, error) {
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pipeline.PlatformTotals(records, func(r *domain.UploadRecord) float64 { return r.TotalSales }).TopN(0), nil
}

func (s *ReportService) ParentSkus(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.ParentSkuRollup, error) {
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pipeline.ParentRollups(records, n), nil
}

// Warehouses lists total stock per warehouse across inventory records.
func (s *ReportService) Warehouses(ctx context.Context, filter domain.RecordFilter) ([]domain.KeyTotal, error) {
	filter.ReportType = domain.ReportInventory
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pipeline.SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Warehouses }).TopN(0), nil
}

// WarehouseSkus drills into one warehouse's per-SKU stock.
func (s *ReportService) WarehouseSkus(ctx context.Context, filter domain.RecordFilter, warehouse string) (*domain.WarehouseBreakdown, error) {
	filter.ReportType = domain.ReportInventory
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return breakdown(warehouse, pipeline.WarehouseSkus(records, warehouse)), nil
}

// SkuWarehouses is the inverse drill-down: one SKU's stock per warehouse.
func (s *ReportService) SkuWarehouses(ctx context.Context, filter domain.RecordFilter, sku string) (*domain.WarehouseBreakdown, error) {
	filter.ReportType = domain.ReportInventory
	records, err := s.records(ctx, filter)
	if err != nil {
		return nil, err
	}
	return breakdown(sku, pipeline.SkuWarehouses(records, sku)), nil
}

func breakdown(key string, totals map[string]float64) *domain.WarehouseBreakdown {
	out := &domain.WarehouseBreakdown{Key: key, Items: make([]domain.KeyTotal, 0, len(totals))}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := pipeline.NewOrderedTotals()
	for _, k := range keys {
		ordered.Add(k, totals[k])
		out.Total += totals[k]
	}
	out.Items = ordered.TopN(0)
	return out
}

func (s *ReportService) records(ctx context.Context, filter domain.RecordFilter) ([]domain.UploadRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.recentWindow
	}
	return s.repo.List(ctx, filter)
}
