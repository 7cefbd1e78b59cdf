package domain

// KeyTotal is one entry of a dimension rollup (SKU, category, city,
// warehouse or platform mapped to a summed metric).
type KeyTotal struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ParentSkuRollup is a parent-level total together with its child SKUs,
// retained for drill-down.
type ParentSkuRollup struct {
	ParentSku string             `json:"parent_sku"`
	Total     float64            `json:"total"`
	Children  map[string]float64 `json:"children"`
}

// DashboardSummary is the cross-record aggregate served to the dashboard.
type DashboardSummary struct {
	RecordCount       int     `json:"record_count"`
	TotalOrders       int     `json:"total_orders"`
	TotalSales        float64 `json:"total_sales"`
	TotalReturns      int     `json:"total_returns"`
	TotalRefundAmount float64 `json:"total_refund_amount"`
	TotalStock        float64 `json:"total_stock"`
	TotalFreeStock    float64 `json:"total_free_stock"`

	TopSkus           []KeyTotal        `json:"top_skus"`
	TopCategories     []KeyTotal        `json:"top_categories"`
	TopCities         []KeyTotal        `json:"top_cities"`
	PlatformBreakdown []KeyTotal        `json:"platform_breakdown"`
	TopParentSkus     []ParentSkuRollup `json:"top_parent_skus"`
	ReturnReasons     []KeyTotal        `json:"return_reasons"`
}

// WarehouseBreakdown answers warehouse drill-downs in either direction.
type WarehouseBreakdown struct {
	Key   string     `json:"key"`
	Total float64    `json:"total"`
	Items []KeyTotal `json:"items"`
}
