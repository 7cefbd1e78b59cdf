package pipeline

import (
	"fmt"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
	"github.com/wearella/marketpulse/internal/skumap"
)

// Column name variants accepted across marketplace export formats. Headers
// are normalized by ingest, so spacing/case/punctuation differences are
// already collapsed.
var (
	skuColumns       = []string{"seller sku", "sku code", "sku", "sku id", "vendor sku", "style code"}
	amountColumns    = []string{"final amount", "order value", "item value", "amount", "sales", "total"}
	qtyColumns       = []string{"quantity", "qty", "units", "item quantity"}
	cityColumns      = []string{"customer city", "shipping city", "ship city", "city"}
	categoryColumns  = []string{"category", "article type", "product category"}
	warehouseColumns = []string{"warehouse name", "warehouse id", "warehouse", "facility", "location"}
	stockColumns     = []string{"total stock", "stock", "inventory count", "available units", "sellable units"}
	freeStockColumns = []string{"free stock", "free inventory", "available stock", "unreserved"}
	refundColumns    = []string{"refund amount", "return amount", "refund", "amount"}
	reasonColumns    = []string{"return reason", "reason", "return reason description"}
	rtnTypeColumns   = []string{"return type", "return mode", "type"}
)

// Aggregator turns raw export rows into UploadRecords.
type Aggregator struct {
	canon *Canonicalizer
}

func NewAggregator(table *skumap.Table) *Aggregator {
	return &Aggregator{canon: NewCanonicalizer(table)}
}

// BuildRecord runs the single-pass canonicalize + aggregate pipeline over
// one uploaded file. Rows missing a SKU or carrying a zero metric value are
// excluded from the rollup maps but never abort the batch, so scalar totals
// may legitimately diverge from map sums.
func (a *Aggregator) BuildRecord(rows []ingest.Row, platform domain.Platform, reportType domain.ReportType, start, end time.Time, filename string) (*domain.UploadRecord, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", end.Format(domain.DateRangeLayout), start.Format(domain.DateRangeLayout))
	}

	now := time.Now().UTC()
	record := &domain.UploadRecord{
		Platform:         platform,
		ReportType:       reportType,
		StartDate:        start,
		EndDate:          end,
		DateRange:        domain.FormatDateRange(start, end),
		Filename:         filename,
		Categories:       make(map[string]float64),
		Skus:             make(map[string]float64),
		Cities:           make(map[string]float64),
		Warehouses:       make(map[string]float64),
		ParentSkus:       make(map[string]float64),
		ReturnReasons:    make(map[string]float64),
		ReturnTypes:      make(map[string]float64),
		SkuCategories:    make(map[string]string),
		WarehouseSkuData: make(map[string]map[string]float64),
		SkuWarehouseData: make(map[string]map[string]float64),
		RawData:          make([]map[string]string, 0, len(rows)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	rawSkuValues := make(map[string]float64)
	rowCategories := make(map[string]string)

	for _, row := range rows {
		record.RawData = append(record.RawData, map[string]string(row))

		switch reportType {
		case domain.ReportOrders:
			a.foldOrderRow(record, row, rawSkuValues, rowCategories)
		case domain.ReportInventory:
			a.foldInventoryRow(record, row, rawSkuValues)
		default:
			a.foldReturnRow(record, row, rawSkuValues)
		}
	}

	set := a.canon.Canonicalize(rawSkuValues, platform)
	record.Skus = set.Canonical
	for localSku, value := range set.Canonical {
		record.ParentSkus[ParentSku(localSku)] += value

		category := set.Categories[localSku]
		if category == "" {
			category = rowCategories[set.OriginalSkus[localSku]]
		}
		if category != "" {
			record.SkuCategories[localSku] = category
			record.Categories[category] += value
		}
	}

	return record, nil
}

func (a *Aggregator) foldOrderRow(record *domain.UploadRecord, row ingest.Row, rawSkuValues map[string]float64, rowCategories map[string]string) {
	units := row.Float(qtyColumns...)
	if units <= 0 {
		units = 1
	}
	amount := row.Float(amountColumns...)
	record.TotalOrders += int(units)
	record.TotalSales += amount

	sku := row.Get(skuColumns...)
	if sku == "" || amount == 0 {
		return
	}
	rawSkuValues[sku] += amount
	if category := row.Get(categoryColumns...); category != "" {
		rowCategories[sku] = category
	}
	if city := row.Get(cityColumns...); city != "" {
		record.Cities[city] += amount
	}
}

func (a *Aggregator) foldReturnRow(record *domain.UploadRecord, row ingest.Row, rawSkuValues map[string]float64) {
	units := row.Float(qtyColumns...)
	if units <= 0 {
		units = 1
	}
	record.TotalReturns += int(units)
	record.TotalRefundAmount += row.Float(refundColumns...)

	switch record.ReportType {
	case domain.ReportSJIT:
		record.SjitReturns += int(units)
	case domain.ReportPPMP:
		record.PpmpReturns += int(units)
	case domain.ReportRTV:
		record.RtvReturns += int(units)
	}

	if reason := row.Get(reasonColumns...); reason != "" {
		record.ReturnReasons[reason] += units
	}
	rtnType := row.Get(rtnTypeColumns...)
	if rtnType == "" {
		rtnType = string(record.ReportType)
	}
	record.ReturnTypes[rtnType] += units

	sku := row.Get(skuColumns...)
	if sku == "" {
		return
	}
	rawSkuValues[sku] += units

	if city := row.Get(cityColumns...); city != "" {
		record.Cities[city] += units
	}
}

func (a *Aggregator) foldInventoryRow(record *domain.UploadRecord, row ingest.Row, rawSkuValues map[string]float64) {
	stock := row.Float(stockColumns...)
	record.TotalStock += stock
	record.TotalFreeStock += row.Float(freeStockColumns...)

	sku := row.Get(skuColumns...)
	if sku == "" || stock == 0 {
		return
	}
	rawSkuValues[sku] += stock

	warehouse := row.Get(warehouseColumns...)
	if warehouse == "" {
		return
	}
	record.Warehouses[warehouse] += stock

	// Cross-index the (warehouse, sku, stock) triple in both directions so
	// either drill-down works without a raw-row rescan.
	localSku := a.canon.Resolve(sku, record.Platform).LocalSku
	if record.WarehouseSkuData[warehouse] == nil {
		record.WarehouseSkuData[warehouse] = make(map[string]float64)
	}
	record.WarehouseSkuData[warehouse][localSku] += stock
	if record.SkuWarehouseData[localSku] == nil {
		record.SkuWarehouseData[localSku] = make(map[string]float64)
	}
	record.SkuWarehouseData[localSku][warehouse] += stock
}
