// Package pipeline is the canonicalization + aggregation core: raw export
// rows go in, one normalized UploadRecord per file comes out, and stored
// records fold into cross-record rollups for the dashboard.
package pipeline

import (
	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/skumap"
)

// CanonicalSet is the outcome of canonicalizing one batch of SKU values.
type CanonicalSet struct {
	// Canonical maps local SKU to the summed metric value. Two platform
	// SKUs aliasing the same local SKU (size variants of one parent) fold
	// into a single bucket.
	Canonical map[string]float64
	// Categories maps local SKU to category; a non-empty category is never
	// overwritten by an empty one.
	Categories map[string]string
	// OriginalSkus keeps the first platform SKU seen per local SKU.
	OriginalSkus map[string]string
}

// Canonicalizer applies the mapping table to raw (sku, value) pairs.
type Canonicalizer struct {
	table *skumap.Table
}

func NewCanonicalizer(table *skumap.Table) *Canonicalizer {
	if table == nil {
		table = skumap.New()
	}
	return &Canonicalizer{table: table}
}

// namespace picks the alias namespace used for lookups. Myntra and Nykaa
// exports carry their own SKU columns; the legacy warehouse feed identifies
// items by sku_id; everything else matches on the local SKU directly.
func namespace(platform domain.Platform) string {
	switch platform {
	case domain.PlatformMyntra, domain.PlatformNykaa:
		return string(platform)
	case domain.PlatformWarehouse:
		return "sku_id"
	default:
		return "local"
	}
}

// Canonicalize folds raw per-SKU values into canonical local-SKU buckets.
// The total value is preserved: sum(Canonical) equals the sum of the
// safe-parsed inputs, since unparseable values already arrived as 0.
func (c *Canonicalizer) Canonicalize(rawSkuValues map[string]float64, platform domain.Platform) CanonicalSet {
	set := CanonicalSet{
		Canonical:    make(map[string]float64, len(rawSkuValues)),
		Categories:   make(map[string]string),
		OriginalSkus: make(map[string]string),
	}
	ns := namespace(platform)
	for sku, value := range rawSkuValues {
		res := c.table.Resolve(sku, ns)
		set.Canonical[res.LocalSku] += value
		if res.Category != "" {
			set.Categories[res.LocalSku] = res.Category
		}
		if _, ok := set.OriginalSkus[res.LocalSku]; !ok {
			set.OriginalSkus[res.LocalSku] = res.OriginalSku
		}
	}
	return set
}

// Resolve exposes a single lookup in the platform's namespace.
func (c *Canonicalizer) Resolve(sku string, platform domain.Platform) skumap.Resolution {
	return c.table.Resolve(sku, namespace(platform))
}
