package pipeline

import (
	"sort"
	"strings"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
)

// OrderedTotals accumulates per-key sums while remembering first-insertion
// order, so top-N views break value ties by the order keys appeared.
type OrderedTotals struct {
	keys   []string
	values map[string]float64
}

func NewOrderedTotals() *OrderedTotals {
	return &OrderedTotals{values: make(map[string]float64)}
}

func (o *OrderedTotals) Add(key string, value float64) {
	if key == "" {
		return
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] += value
}

func (o *OrderedTotals) Get(key string) float64 { return o.values[key] }

func (o *OrderedTotals) Len() int { return len(o.keys) }

// Total sums every accumulated value.
func (o *OrderedTotals) Total() float64 {
	var sum float64
	for _, v := range o.values {
		sum += v
	}
	return sum
}

// TopN returns the n largest entries, descending by value; ties keep
// insertion order (stable sort). n <= 0 returns everything.
func (o *OrderedTotals) TopN(n int) []domain.KeyTotal {
	out := make([]domain.KeyTotal, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, domain.KeyTotal{Key: k, Value: o.values[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SumField folds one rollup map across records into ordered totals.
func SumField(records []domain.UploadRecord, pick func(*domain.UploadRecord) map[string]float64) *OrderedTotals {
	totals := NewOrderedTotals()
	for i := range records {
		m := pick(&records[i])
		// map iteration order is random; sort keys so tie-breaking by
		// insertion order stays deterministic across runs
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			totals.Add(k, m[k])
		}
	}
	return totals
}

// PlatformTotals sums a scalar field per platform.
func PlatformTotals(records []domain.UploadRecord, pick func(*domain.UploadRecord) float64) *OrderedTotals {
	totals := NewOrderedTotals()
	for i := range records {
		totals.Add(string(records[i].Platform), pick(&records[i]))
	}
	return totals
}

// ParentRollups groups per-SKU totals under their parent SKUs, keeping the
// child set and per-child values for drill-down. The sum of children always
// equals the parent total.
func ParentRollups(records []domain.UploadRecord, limit int) []domain.ParentSkuRollup {
	skuTotals := SumField(records, func(r *domain.UploadRecord) map[string]float64 { return r.Skus })

	order := make([]string, 0)
	children := make(map[string]map[string]float64)
	totals := make(map[string]float64)
	for _, kt := range skuTotals.TopN(0) {
		parent := ParentSku(kt.Key)
		if children[parent] == nil {
			children[parent] = make(map[string]float64)
			order = append(order, parent)
		}
		children[parent][kt.Key] += kt.Value
		totals[parent] += kt.Value
	}

	out := make([]domain.ParentSkuRollup, 0, len(order))
	for _, parent := range order {
		out = append(out, domain.ParentSkuRollup{ParentSku: parent, Total: totals[parent], Children: children[parent]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WarehouseSkus returns per-SKU stock inside one warehouse across records.
// The cross-index answers it directly; when the index misses (records
// written before mapping data existed), fall back to rescanning raw rows.
func WarehouseSkus(records []domain.UploadRecord, warehouse string) map[string]float64 {
	out := make(map[string]float64)
	for i := range records {
		if skus, ok := records[i].WarehouseSkuData[warehouse]; ok {
			for sku, stock := range skus {
				out[sku] += stock
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for i := range records {
		rescanWarehouseRows(&records[i], warehouse, out)
	}
	return out
}

// SkuWarehouses is the inverse lookup: per-warehouse stock of one SKU.
func SkuWarehouses(records []domain.UploadRecord, sku string) map[string]float64 {
	out := make(map[string]float64)
	for i := range records {
		if warehouses, ok := records[i].SkuWarehouseData[sku]; ok {
			for warehouse, stock := range warehouses {
				out[warehouse] += stock
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for i := range records {
		rescanSkuRows(&records[i], sku, out)
	}
	return out
}

func rescanWarehouseRows(record *domain.UploadRecord, warehouse string, out map[string]float64) {
	for _, raw := range record.RawData {
		row := ingest.Row(raw)
		if !strings.EqualFold(row.Get(warehouseColumns...), warehouse) {
			continue
		}
		sku := row.Get(skuColumns...)
		stock := row.Float(stockColumns...)
		if sku == "" || stock == 0 {
			continue
		}
		out[sku] += stock
	}
}

func rescanSkuRows(record *domain.UploadRecord, sku string, out map[string]float64) {
	for _, raw := range record.RawData {
		row := ingest.Row(raw)
		if !strings.EqualFold(row.Get(skuColumns...), sku) {
			continue
		}
		warehouse := row.Get(warehouseColumns...)
		stock := row.Float(stockColumns...)
		if warehouse == "" || stock == 0 {
			continue
		}
		out[warehouse] += stock
	}
}
