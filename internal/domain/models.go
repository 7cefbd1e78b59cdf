// internal/domain/models.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies the marketplace an export file came from.
type Platform string

const (
	PlatformMyntra   Platform = "myntra"
	PlatformNykaa    Platform = "nykaa"
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformAjio     Platform = "ajio"
	PlatformWebsite  Platform = "website"
	// PlatformWarehouse is the legacy warehouse stock feed, which
	// identifies items by sku_id instead of a marketplace SKU.
	PlatformWarehouse Platform = "warehouse"
)

// Platforms lists every supported upload source.
var Platforms = []Platform{
	PlatformMyntra,
	PlatformNykaa,
	PlatformAmazon,
	PlatformFlipkart,
	PlatformAjio,
	PlatformWebsite,
	PlatformWarehouse,
}

// ParsePlatform normalizes and validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ReportType is the category of an uploaded export.
type ReportType string

const (
	ReportOrders    ReportType = "orders"
	ReportReturns   ReportType = "returns"
	ReportInventory ReportType = "inventory"
	// Myntra-specific return subtypes.
	ReportSJIT ReportType = "sjit"
	ReportPPMP ReportType = "ppmp"
	ReportRTV  ReportType = "rtv"
)

var ReportTypes = []ReportType{
	ReportOrders,
	ReportReturns,
	ReportInventory,
	ReportSJIT,
	ReportPPMP,
	ReportRTV,
}

// ParseReportType normalizes and validates a report type.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ReportTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// IsReturnType reports whether the report counts returned units.
func (t ReportType) IsReturnType() bool {
	switch t {
	case ReportReturns, ReportSJIT, ReportPPMP, ReportRTV:
		return true
	}
	return false
}

// RecordKey is the natural key of an upload: re-uploading the same
// (platform, dateRange, reportType) replaces the stored record.
type RecordKey struct {
	Platform   Platform   `json:"platform" bson:"platform"`
	DateRange  string     `json:"date_range" bson:"dateRange"`
	ReportType ReportType `json:"report_type" bson:"reportType"`
}

// DateRangeLayout is the display format used for the dateRange key field.
const DateRangeLayout = "2006-01-02"

// FormatDateRange derives the display string stored in UploadRecord.DateRange.
func FormatDateRange(start, end time.Time) string {
	return start.Format(DateRangeLayout) + " - " + end.Format(DateRangeLayout)
}

// UploadRecord is one normalized aggregate per uploaded export file.
// Rollup maps merge by summation; totals may diverge from map sums because
// rows with a missing SKU or zero value are excluded from the maps.
type UploadRecord struct {
	ID         string     `json:"id" bson:"_id"`
	Platform   Platform   `json:"platform" bson:"platform"`
	ReportType ReportType `json:"report_type" bson:"reportType"`
	StartDate  time.Time  `json:"start_date" bson:"startDate"`
	EndDate    time.Time  `json:"end_date" bson:"endDate"`
	DateRange  string     `json:"date_range" bson:"dateRange"`
	Filename   string     `json:"filename,omitempty" bson:"filename,omitempty"`

	TotalOrders       int     `json:"total_orders" bson:"totalOrders"`
	TotalSales        float64 `json:"total_sales" bson:"totalSales"`
	TotalReturns      int     `json:"total_returns" bson:"totalReturns"`
	TotalRefundAmount float64 `json:"total_refund_amount" bson:"totalRefundAmount"`
	TotalStock        float64 `json:"total_stock" bson:"totalStock"`
	TotalFreeStock    float64 `json:"total_free_stock" bson:"totalFreeStock"`
	SjitReturns       int     `json:"sjit_returns" bson:"sjitReturns"`
	PpmpReturns       int     `json:"ppmp_returns" bson:"ppmpReturns"`
	RtvReturns        int     `json:"rtv_returns" bson:"rtvReturns"`

	Categories    map[string]float64 `json:"categories" bson:"categories"`
	Skus          map[string]float64 `json:"skus" bson:"skus"`
	Cities        map[string]float64 `json:"cities" bson:"cities"`
	Warehouses    map[string]float64 `json:"warehouses" bson:"warehouses"`
	ParentSkus    map[string]float64 `json:"parent_skus" bson:"parentSkus"`
	ReturnReasons map[string]float64 `json:"return_reasons" bson:"returnReasons"`
	ReturnTypes   map[string]float64 `json:"return_types" bson:"returnTypes"`
	SkuCategories map[string]string  `json:"sku_categories" bson:"skuCategories"`

	// Warehouse cross-index, populated in both directions so either lookup
	// works without rescanning raw rows.
	WarehouseSkuData map[string]map[string]float64 `json:"warehouse_sku_data" bson:"warehouseSkuData"`
	SkuWarehouseData map[string]map[string]float64 `json:"sku_warehouse_data" bson:"skuWarehouseData"`

	// Original uploaded rows, retained for drill-downs that the aggregate
	// maps cannot answer.
	RawData []map[string]string `json:"raw_data,omitempty" bson:"rawData,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// Key returns the record's natural key.
func (r *UploadRecord) Key() RecordKey {
	return RecordKey{Platform: r.Platform, DateRange: r.DateRange, ReportType: r.ReportType}
}

// RecordFilter narrows repository list queries.
type RecordFilter struct {
	Platform   Platform   `json:"platform"`
	ReportType ReportType `json:"report_type"`
	From       time.Time  `json:"from"`
	To         time.Time  `json:"to"`
	Limit      int        `json:"limit"`
}
