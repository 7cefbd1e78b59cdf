package domain

// Confidence is the coarse reliability label of a projection, driven by
// historical sample size.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// PlatformAllocation recommends an inventory share for one marketplace.
type PlatformAllocation struct {
	Platform Platform `json:"platform"`
	SharePct float64  `json:"share_pct"`
	Trend    string   `json:"trend"` // growing | stable | declining
}

// ProjectionResult is computed on demand and never persisted.
type ProjectionResult struct {
	Found       bool   `json:"found"`
	TargetSku   string `json:"target_sku,omitempty"`
	HorizonDays int    `json:"horizon_days"`

	ProjectedSales    float64    `json:"projected_sales"`
	ProjectedQuantity int        `json:"projected_quantity"`
	GrowthRate        float64    `json:"growth_rate"`
	GrowthReliable    bool       `json:"growth_reliable"`
	Confidence        Confidence `json:"confidence"`
	SeasonalityFactor float64    `json:"seasonality_factor"`

	AvgDailyValue float64 `json:"avg_daily_value"`
	AvgOrderValue float64 `json:"avg_order_value"`
	RecordCount   int     `json:"record_count"`
	CoverageDays  int     `json:"coverage_days"`

	Allocations []PlatformAllocation `json:"allocations,omitempty"`

	Insights      []string `json:"insights,omitempty"`
	Risks         []string `json:"risks,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
}
