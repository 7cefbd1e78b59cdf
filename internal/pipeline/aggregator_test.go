package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
)

var (
	testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
)

func orderRow(kv map[string]string) ingest.Row {
	r := make(ingest.Row, len(kv))
	for k, v := range kv {
		r[ingest.NormalizeColumn(k)] = v
	}
	return r
}

func TestBuildRecord_Orders(t *testing.T) {
	t.Parallel()

	table := mappingTable(t,
		map[string]string{"Local_SKU": "BW-1", "Category": "Tops", "Myntra": "MYN-1"},
	)
	agg := NewAggregator(table)

	rows := []ingest.Row{
		orderRow(map[string]string{"Seller SKU": "MYN-1", "Final Amount": "1,200.50", "Quantity": "2", "Customer City": "Mumbai", "Category": "Ignored"}),
		orderRow(map[string]string{"Seller SKU": "MYN-1", "Final Amount": "300", "City": "Delhi"}),
		orderRow(map[string]string{"Final Amount": "100"}), // no sku: totals only
	}

	record, err := agg.BuildRecord(rows, domain.PlatformMyntra, domain.ReportOrders, testStart, testEnd, "orders.csv")
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}

	if record.TotalOrders != 4 {
		t.Fatalf("total orders: want 4 got %d", record.TotalOrders)
	}
	if record.TotalSales != 1600.50 {
		t.Fatalf("total sales: want 1600.50 got %v", record.TotalSales)
	}
	// the sku-less row is in the totals but not in the sku map
	if got := record.Skus["BW-1"]; got != 1500.50 {
		t.Fatalf("BW-1 sales: want 1500.50 got %v", got)
	}
	if got := record.ParentSkus["BW-1"]; got != 1500.50 {
		t.Fatalf("parent BW-1: want 1500.50 got %v", got)
	}
	if got := record.Categories["Tops"]; got != 1500.50 {
		t.Fatalf("Tops: want 1500.50 got %v", got)
	}
	if got := record.SkuCategories["BW-1"]; got != "Tops" {
		t.Fatalf("sku category: want Tops got %q", got)
	}
	if record.Cities["Mumbai"] != 1200.50 || record.Cities["Delhi"] != 300 {
		t.Fatalf("cities: %v", record.Cities)
	}
	if record.DateRange != "2025-06-01 - 2025-06-30" {
		t.Fatalf("date range: %q", record.DateRange)
	}
	if len(record.RawData) != 3 {
		t.Fatalf("raw rows: want 3 got %d", len(record.RawData))
	}
}

func TestBuildRecord_OrdersUsesRowCategoryForUnmappedSku(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil)
	rows := []ingest.Row{
		orderRow(map[string]string{"SKU": "XX-1", "Amount": "100", "Category": "Dresses"}),
	}
	record, err := agg.BuildRecord(rows, domain.PlatformAjio, domain.ReportOrders, testStart, testEnd, "")
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}
	if got := record.Categories["Dresses"]; got != 100 {
		t.Fatalf("row-level category fallback missing: %v", record.Categories)
	}
}

func TestBuildRecord_ReturnSubtypes(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil)
	rows := []ingest.Row{
		orderRow(map[string]string{"SKU": "BW-1", "Quantity": "2", "Return Reason": "Size issue", "Refund Amount": "500"}),
		orderRow(map[string]string{"SKU": "BW-2", "Return Reason": "Damaged"}),
	}

	record, err := agg.BuildRecord(rows, domain.PlatformMyntra, domain.ReportSJIT, testStart, testEnd, "")
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}

	if record.TotalReturns != 3 {
		t.Fatalf("total returns: want 3 got %d", record.TotalReturns)
	}
	if record.SjitReturns != 3 {
		t.Fatalf("sjit returns: want 3 got %d", record.SjitReturns)
	}
	if record.PpmpReturns != 0 || record.RtvReturns != 0 {
		t.Fatalf("other subtype counters must stay zero: %+v", record)
	}
	if record.TotalRefundAmount != 500 {
		t.Fatalf("refund: want 500 got %v", record.TotalRefundAmount)
	}
	if record.ReturnReasons["Size issue"] != 2 || record.ReturnReasons["Damaged"] != 1 {
		t.Fatalf("return reasons: %v", record.ReturnReasons)
	}
	// no explicit return type column: report type fills in
	if record.ReturnTypes["sjit"] != 3 {
		t.Fatalf("return types: %v", record.ReturnTypes)
	}
	if record.Skus["BW-1"] != 2 || record.Skus["BW-2"] != 1 {
		t.Fatalf("return sku units: %v", record.Skus)
	}
}

func TestBuildRecord_InventoryCrossIndex(t *testing.T) {
	t.Parallel()

	table := mappingTable(t, map[string]string{"Local_SKU": "BW-1", "SKU_ID": "WH-1"})
	agg := NewAggregator(table)

	rows := []ingest.Row{
		orderRow(map[string]string{"SKU": "BW-1", "Total Stock": "40", "Free Stock": "10", "Warehouse Name": "Bhiwandi"}),
		orderRow(map[string]string{"SKU": "BW-1", "Total Stock": "60", "Warehouse Name": "Gurgaon"}),
		orderRow(map[string]string{"SKU": "BW-2", "Total Stock": "5", "Warehouse Name": "Bhiwandi"}),
	}

	record, err := agg.BuildRecord(rows, domain.PlatformWebsite, domain.ReportInventory, testStart, testEnd, "")
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}

	if record.TotalStock != 105 {
		t.Fatalf("total stock: want 105 got %v", record.TotalStock)
	}
	if record.TotalFreeStock != 10 {
		t.Fatalf("free stock: want 10 got %v", record.TotalFreeStock)
	}
	if record.Warehouses["Bhiwandi"] != 45 || record.Warehouses["Gurgaon"] != 60 {
		t.Fatalf("warehouses: %v", record.Warehouses)
	}
	if record.WarehouseSkuData["Bhiwandi"]["BW-1"] != 40 {
		t.Fatalf("warehouse->sku index: %v", record.WarehouseSkuData)
	}
	if record.SkuWarehouseData["BW-1"]["Gurgaon"] != 60 {
		t.Fatalf("sku->warehouse index: %v", record.SkuWarehouseData)
	}
	// both directions hold the same triples
	var fwd, rev float64
	for _, skus := range record.WarehouseSkuData {
		for _, v := range skus {
			fwd += v
		}
	}
	for _, whs := range record.SkuWarehouseData {
		for _, v := range whs {
			rev += v
		}
	}
	if fwd != rev {
		t.Fatalf("cross-index out of sync: fwd=%v rev=%v", fwd, rev)
	}
}

func TestBuildRecord_RejectsInvertedDates(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil)
	_, err := agg.BuildRecord(nil, domain.PlatformMyntra, domain.ReportOrders, testEnd, testStart, "")
	if err == nil || !strings.Contains(err.Error(), "precedes") {
		t.Fatalf("want inverted-date error, got %v", err)
	}
}

func TestBuildRecord_EmptyFileProducesEmptyRecord(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil)
	record, err := agg.BuildRecord(nil, domain.PlatformMyntra, domain.ReportOrders, testStart, testEnd, "empty.csv")
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}
	if record.TotalOrders != 0 || record.TotalSales != 0 || len(record.Skus) != 0 {
		t.Fatalf("empty input should produce zeroed record: %+v", record)
	}
	if record.Skus == nil || record.Categories == nil {
		t.Fatalf("rollup maps must be initialized")
	}
}
