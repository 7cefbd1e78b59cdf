package projection

import (
	"math"
	"testing"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
)

// fixedClock pins the seasonality month to April (factor 1.00) so the
// trend math is observable in isolation.
func fixedClock() time.Time {
	return time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
}

func dailyRecords(values []float64, platform domain.Platform, sku string) []domain.UploadRecord {
	records := make([]domain.UploadRecord, 0, len(values))
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		day := base.AddDate(0, 0, i)
		records = append(records, domain.UploadRecord{
			Platform:   platform,
			ReportType: domain.ReportOrders,
			StartDate:  day,
			EndDate:    day,
			TotalSales: v,
			Skus:       map[string]float64{sku: v},
		})
	}
	return records
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig()).WithClock(fixedClock)
}

func TestProject_GrowthFromSplitMeans(t *testing.T) {
	t.Parallel()

	records := dailyRecords([]float64{100, 100, 100, 200, 200, 200}, domain.PlatformMyntra, "BW-1")
	result := newTestEngine().Project(records, "", 30, "")

	if !result.Found {
		t.Fatalf("want found")
	}
	if result.GrowthRate != 100 {
		t.Fatalf("growth: want 100 got %v", result.GrowthRate)
	}
	if !result.GrowthReliable {
		t.Fatalf("growth should be reliable with 6 points")
	}
	if result.CoverageDays != 6 {
		t.Fatalf("coverage: want 6 got %d", result.CoverageDays)
	}
	if result.AvgDailyValue != 150 {
		t.Fatalf("avg daily: want 150 got %v", result.AvgDailyValue)
	}
	// 150 avg/day * (1 + 100%) * 1.00 seasonality * 30 days
	if math.Abs(result.ProjectedSales-9000) > 1e-9 {
		t.Fatalf("projected: want 9000 got %v", result.ProjectedSales)
	}
	if result.AvgOrderValue != 150 {
		t.Fatalf("avg order value: want 150 got %v", result.AvgOrderValue)
	}
	if result.ProjectedQuantity != 60 {
		t.Fatalf("quantity: want 60 got %d", result.ProjectedQuantity)
	}
	if result.Confidence != domain.ConfidenceMedium {
		t.Fatalf("confidence: want Medium got %s", result.Confidence)
	}
	if result.SeasonalityFactor != 1.00 {
		t.Fatalf("seasonality: want 1.00 got %v", result.SeasonalityFactor)
	}
}

func TestProject_GrowthClamps(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()

	up := engine.Project(dailyRecords([]float64{10, 10, 1000, 1000}, "", "S"), "", 30, "")
	if up.GrowthRate != 200 {
		t.Fatalf("upper clamp: want 200 got %v", up.GrowthRate)
	}

	down := engine.Project(dailyRecords([]float64{1000, 1000, 10, 10}, "", "S"), "", 30, "")
	if down.GrowthRate != -50 {
		t.Fatalf("lower clamp: want -50 got %v", down.GrowthRate)
	}
	if down.ProjectedSales <= 0 {
		t.Fatalf("clamped decline must still project positive sales: %v", down.ProjectedSales)
	}
}

func TestProject_ZeroEarlyMean(t *testing.T) {
	t.Parallel()

	// the per-SKU series keeps explicit zero entries, so a SKU that only
	// started selling recently hits the zero-early-mean rule
	result := newTestEngine().Project(dailyRecords([]float64{0, 0, 50, 50}, "", "S"), "S", 30, "")
	if result.GrowthRate != 100 || !result.GrowthReliable {
		t.Fatalf("zero early mean: want growth 100 reliable, got %v %v", result.GrowthRate, result.GrowthReliable)
	}
}

func TestProject_OverallSeriesKeepsZeroSalesPeriods(t *testing.T) {
	t.Parallel()

	// A period with no sales is a zero data point in the overall series,
	// not a gap: it must count toward the split means and the coverage.
	result := newTestEngine().Project(dailyRecords([]float64{0, 0, 50, 50}, "", "S"), "", 30, "")

	if result.RecordCount != 4 {
		t.Fatalf("zero-sales records dropped from the series: want 4 got %d", result.RecordCount)
	}
	if result.CoverageDays != 4 {
		t.Fatalf("coverage: want 4 got %d", result.CoverageDays)
	}
	if result.GrowthRate != 100 || !result.GrowthReliable {
		t.Fatalf("want growth 100 reliable, got %v %v", result.GrowthRate, result.GrowthReliable)
	}
	if result.AvgDailyValue != 25 {
		t.Fatalf("avg daily: want 25 got %v", result.AvgDailyValue)
	}
}

func TestProject_TooFewPointsIsDeterministic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	records := dailyRecords([]float64{100, 200, 300}, "", "S")

	first := engine.Project(records, "", 30, "")
	second := engine.Project(records, "", 30, "")

	if first.GrowthRate != 0 || first.GrowthReliable {
		t.Fatalf("below split threshold: want growth 0 unreliable, got %v %v", first.GrowthRate, first.GrowthReliable)
	}
	if first.Confidence != domain.ConfidenceLow {
		t.Fatalf("confidence: want Low got %s", first.Confidence)
	}
	if first.ProjectedSales != second.ProjectedSales || first.GrowthRate != second.GrowthRate {
		t.Fatalf("projection must be deterministic: %+v vs %+v", first, second)
	}
}

func TestProject_ConfidenceTiers(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	flat := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = 100
		}
		return out
	}

	cases := []struct {
		points int
		want   domain.Confidence
	}{
		{4, domain.ConfidenceLow},
		{6, domain.ConfidenceMedium},
		{10, domain.ConfidenceMedium},
		{11, domain.ConfidenceHigh},
	}
	for _, tc := range cases {
		got := engine.Project(dailyRecords(flat(tc.points), "", "S"), "", 30, "").Confidence
		if got != tc.want {
			t.Fatalf("%d points: want %s got %s", tc.points, tc.want, got)
		}
	}
}

func TestProject_SkuSeriesWithParentFallback(t *testing.T) {
	t.Parallel()

	records := dailyRecords([]float64{100, 100, 100, 100}, domain.PlatformMyntra, "BW-1023_XL")
	for i := range records {
		records[i].ParentSkus = map[string]float64{"BW-1023": records[i].Skus["BW-1023_XL"]}
	}
	engine := newTestEngine()

	child := engine.Project(records, "BW-1023_XL", 30, "")
	if !child.Found || child.RecordCount != 4 {
		t.Fatalf("child series: %+v", child)
	}

	parent := engine.Project(records, "BW-1023", 30, "")
	if !parent.Found || parent.RecordCount != 4 {
		t.Fatalf("parent fallback series: %+v", parent)
	}
}

func TestProject_UnknownSkuNotFound(t *testing.T) {
	t.Parallel()

	records := dailyRecords([]float64{100, 100}, "", "BW-1")
	result := newTestEngine().Project(records, "NOPE", 30, "")
	if result.Found {
		t.Fatalf("want not found")
	}
	if result.Confidence != domain.ConfidenceLow {
		t.Fatalf("not-found confidence: want Low got %s", result.Confidence)
	}
	if len(result.Insights) == 0 {
		t.Fatalf("not-found result should carry an insight")
	}
}

func TestProject_PlatformFilter(t *testing.T) {
	t.Parallel()

	records := append(
		dailyRecords([]float64{100, 100, 100, 100}, domain.PlatformMyntra, "S"),
		dailyRecords([]float64{999, 999, 999, 999}, domain.PlatformNykaa, "S")...,
	)
	result := newTestEngine().Project(records, "", 30, domain.PlatformMyntra)
	if result.RecordCount != 4 {
		t.Fatalf("platform filter: want 4 records got %d", result.RecordCount)
	}
	if result.AvgDailyValue != 100 {
		t.Fatalf("nykaa records leaked into the series: %v", result.AvgDailyValue)
	}
}

func TestProject_Allocations(t *testing.T) {
	t.Parallel()

	records := append(
		dailyRecords([]float64{300, 300, 300, 300}, domain.PlatformMyntra, "S"),
		dailyRecords([]float64{100, 100, 100, 100}, domain.PlatformNykaa, "S")...,
	)
	result := newTestEngine().Project(records, "", 30, "")

	if len(result.Allocations) != 2 {
		t.Fatalf("want 2 allocations, got %+v", result.Allocations)
	}
	if result.Allocations[0].Platform != domain.PlatformMyntra {
		t.Fatalf("allocations not sorted by share: %+v", result.Allocations)
	}
	if math.Abs(result.Allocations[0].SharePct-75) > 1e-9 {
		t.Fatalf("myntra share: want 75 got %v", result.Allocations[0].SharePct)
	}
	if result.Allocations[0].Trend != "growing" {
		t.Fatalf("75%% share should label growing, got %s", result.Allocations[0].Trend)
	}
	if result.Allocations[1].Trend != "stable" {
		t.Fatalf("25%% share should label stable, got %s", result.Allocations[1].Trend)
	}
}

func TestProject_AvgOrderValueClamp(t *testing.T) {
	t.Parallel()

	low := newTestEngine().Project(dailyRecords([]float64{10, 10, 10, 10}, "", "S"), "", 30, "")
	if low.AvgOrderValue != 100 {
		t.Fatalf("lower AOV clamp: want 100 got %v", low.AvgOrderValue)
	}

	high := newTestEngine().Project(dailyRecords([]float64{9000, 9000, 9000, 9000}, "", "S"), "", 30, "")
	if high.AvgOrderValue != 2000 {
		t.Fatalf("upper AOV clamp: want 2000 got %v", high.AvgOrderValue)
	}
}

func TestProject_NoRecords(t *testing.T) {
	t.Parallel()

	result := newTestEngine().Project(nil, "", 0, "")
	if result.Found {
		t.Fatalf("want not found for empty history")
	}
	if result.HorizonDays != 30 {
		t.Fatalf("default horizon: want 30 got %d", result.HorizonDays)
	}
}

func TestSeasonalityFactor(t *testing.T) {
	t.Parallel()

	nov := SeasonalityFactor(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC))
	if nov != 1.60 {
		t.Fatalf("november: want 1.60 got %v", nov)
	}
	feb := SeasonalityFactor(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
	if feb != 0.85 {
		t.Fatalf("february: want 0.85 got %v", feb)
	}
	for m := time.January; m <= time.December; m++ {
		f := SeasonalityFactor(time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC))
		if f < 0.8 || f > 1.6 {
			t.Fatalf("%s factor %v outside [0.8, 1.6]", m, f)
		}
	}
}
