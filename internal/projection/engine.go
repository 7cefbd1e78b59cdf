// Package projection derives a trend and seasonality adjusted sales
// forecast from stored upload records. The math is deterministic: an
// insufficient history lowers the confidence label, it never substitutes
// fabricated numbers.
package projection

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
)

// Config holds the tunable thresholds. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// Confidence tiers by historical sample size.
	HighConfidenceMin   int
	MediumConfidenceMin int
	// Growth clamp band, percent.
	MinGrowthPct float64
	MaxGrowthPct float64
	// Sane band for the average order value, guarding quantity math
	// against division pathologies.
	MinAvgOrderValue float64
	MaxAvgOrderValue float64
	// Below this many points the early/recent split is not meaningful.
	MinSplitPoints int
	// Platform share thresholds for the trend label.
	GrowingSharePct   float64
	DecliningSharePct float64
}

func DefaultConfig() Config {
	return Config{
		HighConfidenceMin:   10,
		MediumConfidenceMin: 5,
		MinGrowthPct:        -50,
		MaxGrowthPct:        200,
		MinAvgOrderValue:    100,
		MaxAvgOrderValue:    2000,
		MinSplitPoints:      4,
		GrowingSharePct:     30,
		DecliningSharePct:   10,
	}
}

// Engine computes projections. The clock is injectable so the seasonality
// month is controllable in tests.
type Engine struct {
	cfg Config
	now func() time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// WithClock overrides the engine's notion of "now".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Project runs the forecast over the given records (typically the most
// recent 90, any order). targetSku narrows the series to one SKU, falling
// back to the parent rollup; empty means total sales. platform filters the
// input records; empty means all platforms.
func (e *Engine) Project(records []domain.UploadRecord, targetSku string, horizonDays int, platform domain.Platform) domain.ProjectionResult {
	if horizonDays <= 0 {
		horizonDays = 30
	}

	filtered := make([]domain.UploadRecord, 0, len(records))
	for _, r := range records {
		if platform != "" && r.Platform != platform {
			continue
		}
		filtered = append(filtered, r)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartDate.Before(filtered[j].StartDate)
	})

	series := make([]float64, 0, len(filtered))
	kept := make([]domain.UploadRecord, 0, len(filtered))
	for _, r := range filtered {
		value, ok := seriesValue(&r, targetSku)
		if !ok {
			continue
		}
		series = append(series, value)
		kept = append(kept, r)
	}

	if len(series) == 0 {
		return domain.ProjectionResult{
			Found:       false,
			TargetSku:   targetSku,
			HorizonDays: horizonDays,
			Confidence:  domain.ConfidenceLow,
			Insights:    []string{notFoundInsight(targetSku, platform)},
		}
	}

	var totalValue float64
	for _, v := range series {
		totalValue += v
	}

	// inclusive day span of the history window
	coverageDays := daysBetween(kept[0].StartDate, kept[len(kept)-1].EndDate) + 1
	if coverageDays < 1 {
		coverageDays = 1
	}
	avgDailyValue := totalValue / float64(coverageDays)

	growthPct, growthReliable := e.growthRate(series)
	seasonality := SeasonalityFactor(e.now())

	projected := avgDailyValue * (1 + growthPct/100) * seasonality * float64(horizonDays)
	if projected < 0 {
		// never project negative sales; floor at naive extrapolation
		projected = avgDailyValue * float64(horizonDays)
	}

	avgOrderValue := totalValue / float64(len(series))
	avgOrderValue = clamp(avgOrderValue, e.cfg.MinAvgOrderValue, e.cfg.MaxAvgOrderValue)
	quantity := int(math.Ceil(projected / avgOrderValue))
	if quantity < 1 {
		quantity = 1
	}

	confidence := e.confidence(len(series))
	if !growthReliable {
		confidence = domain.ConfidenceLow
	}

	result := domain.ProjectionResult{
		Found:             true,
		TargetSku:         targetSku,
		HorizonDays:       horizonDays,
		ProjectedSales:    projected,
		ProjectedQuantity: quantity,
		GrowthRate:        growthPct,
		GrowthReliable:    growthReliable,
		Confidence:        confidence,
		SeasonalityFactor: seasonality,
		AvgDailyValue:     avgDailyValue,
		AvgOrderValue:     avgOrderValue,
		RecordCount:       len(series),
		CoverageDays:      coverageDays,
		Allocations:       e.allocations(kept, targetSku, totalValue),
	}
	e.narrate(&result)
	return result
}

// seriesValue pulls the per-record numeric series. With no target SKU every
// record contributes: a genuinely zero-sales period is a zero data point,
// not a gap. SKU lookups try the per-SKU map first, then the parent rollup,
// and miss only when neither carries the SKU.
func seriesValue(r *domain.UploadRecord, targetSku string) (float64, bool) {
	if targetSku == "" {
		if r.TotalSales > 0 {
			return r.TotalSales, true
		}
		var sum float64
		for _, v := range r.Skus {
			sum += v
		}
		return sum, true
	}
	if v, ok := r.Skus[targetSku]; ok {
		return v, true
	}
	if v, ok := r.ParentSkus[targetSku]; ok {
		return v, true
	}
	return 0, false
}

// growthRate splits the chronological series at its midpoint and compares
// the half means. Below MinSplitPoints the split is not meaningful: growth
// is 0 and the result is flagged unreliable (confidence drops to Low).
func (e *Engine) growthRate(series []float64) (float64, bool) {
	if len(series) < e.cfg.MinSplitPoints {
		return 0, false
	}
	mid := len(series) / 2
	earlyMean := mean(series[:mid])
	recentMean := mean(series[mid:])

	if earlyMean == 0 {
		if recentMean > 0 {
			return 100, true
		}
		return 0, true
	}
	growth := (recentMean - earlyMean) / earlyMean * 100
	return clamp(growth, e.cfg.MinGrowthPct, e.cfg.MaxGrowthPct), true
}

func (e *Engine) confidence(recordCount int) domain.Confidence {
	switch {
	case recordCount > e.cfg.HighConfidenceMin:
		return domain.ConfidenceHigh
	case recordCount > e.cfg.MediumConfidenceMin:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// allocations turns each platform's share of the observed value into a
// recommended inventory allocation percentage with a trend label.
func (e *Engine) allocations(records []domain.UploadRecord, targetSku string, totalValue float64) []domain.PlatformAllocation {
	if totalValue <= 0 {
		return nil
	}
	order := make([]domain.Platform, 0)
	byPlatform := make(map[domain.Platform]float64)
	for i := range records {
		value, ok := seriesValue(&records[i], targetSku)
		if !ok {
			continue
		}
		if _, seen := byPlatform[records[i].Platform]; !seen {
			order = append(order, records[i].Platform)
		}
		byPlatform[records[i].Platform] += value
	}

	out := make([]domain.PlatformAllocation, 0, len(order))
	for _, p := range order {
		share := byPlatform[p] / totalValue * 100
		trend := "stable"
		if share > e.cfg.GrowingSharePct {
			trend = "growing"
		} else if share < e.cfg.DecliningSharePct {
			trend = "declining"
		}
		out = append(out, domain.PlatformAllocation{Platform: p, SharePct: share, Trend: trend})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SharePct > out[j].SharePct })
	return out
}

func (e *Engine) narrate(r *domain.ProjectionResult) {
	subject := "overall sales"
	if r.TargetSku != "" {
		subject = r.TargetSku
	}

	switch {
	case !r.GrowthReliable:
		r.Insights = append(r.Insights, fmt.Sprintf("Only %d data points for %s; trend is not reliably computable yet.", r.RecordCount, subject))
		r.Risks = append(r.Risks, "Projection is based on the raw run rate; upload more reports to unlock trend analysis.")
	case r.GrowthRate >= 20:
		r.Insights = append(r.Insights, fmt.Sprintf("%s is growing %.0f%% period over period.", subject, r.GrowthRate))
		r.Opportunities = append(r.Opportunities, "Demand is accelerating; consider increasing stock cover ahead of the projection horizon.")
	case r.GrowthRate <= -20:
		r.Insights = append(r.Insights, fmt.Sprintf("%s declined %.0f%% versus the earlier period.", subject, -r.GrowthRate))
		r.Risks = append(r.Risks, "Declining run rate; review pricing and visibility before committing inventory.")
	default:
		r.Insights = append(r.Insights, fmt.Sprintf("%s is holding steady (%.0f%% trend).", subject, r.GrowthRate))
	}

	if r.SeasonalityFactor >= 1.3 {
		r.Opportunities = append(r.Opportunities, fmt.Sprintf("Festive seasonality multiplier of %.2f is in effect; the projection assumes the seasonal uplift materializes.", r.SeasonalityFactor))
	}
	if r.Confidence == domain.ConfidenceLow {
		r.Risks = append(r.Risks, "Low confidence: fewer than 6 historical records back this projection.")
	}
}

func notFoundInsight(targetSku string, platform domain.Platform) string {
	if targetSku != "" {
		return fmt.Sprintf("No historical records contain SKU %q; nothing to project.", targetSku)
	}
	if platform != "" {
		return fmt.Sprintf("No historical records for platform %q; nothing to project.", platform)
	}
	return "No historical records available; nothing to project."
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
