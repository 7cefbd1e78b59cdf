// Package skumap maps platform-specific SKU strings to canonical local
// SKUs. The table is built once from a reference file, shared by reference
// across requests and never mutated afterwards.
package skumap

import (
	"strings"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
)

// Entry is one canonical SKU. All aliases of the SKU resolve to the same
// entry object.
type Entry struct {
	LocalSku string
	Category string
	// Aliases maps platform name to that platform's SKU string.
	Aliases map[string]string
}

// Resolution is the outcome of a lookup. Unmapped SKUs pass through
// unchanged with an empty category.
type Resolution struct {
	LocalSku    string `json:"local_sku"`
	Category    string `json:"category"`
	OriginalSku string `json:"original_sku"`
}

// Table is the immutable alias lookup. Keys are "<namespace>_<lowered sku>".
type Table struct {
	entries map[string]*Entry
	byLocal map[string]*Entry
}

// New returns an empty table. Every lookup against it is a passthrough,
// which is the expected degraded mode when no reference file exists.
func New() *Table {
	return &Table{
		entries: make(map[string]*Entry),
		byLocal: make(map[string]*Entry),
	}
}

// localSkuColumns covers the header spellings seen across reference files.
// ingest.NormalizeColumn collapses them, so one normalized key suffices.
const localSkuColumn = "local sku"

// platformColumns are the alias namespaces a reference row may carry.
// sku_id is the legacy warehouse feed identifier.
var platformColumns = []string{
	string(domain.PlatformMyntra),
	string(domain.PlatformNykaa),
	string(domain.PlatformAmazon),
	string(domain.PlatformFlipkart),
	string(domain.PlatformAjio),
	string(domain.PlatformWebsite),
	"sku_id",
}

// Build constructs a table from reference rows. Rows without a local SKU are
// skipped. A reference file carrying only some of the expected columns still
// builds a partial table from whatever aliases are present.
func Build(rows []ingest.Row) *Table {
	t := New()
	for _, row := range rows {
		localSku := row.Get(localSkuColumn)
		if localSku == "" {
			continue
		}

		entry, ok := t.byLocal[strings.ToLower(localSku)]
		if !ok {
			entry = &Entry{LocalSku: localSku, Aliases: make(map[string]string)}
			t.byLocal[strings.ToLower(localSku)] = entry
		}
		if category := row.Get("category"); category != "" && entry.Category == "" {
			entry.Category = category
		}

		t.entries[aliasKey("local", localSku)] = entry
		for _, platform := range platformColumns {
			alias := row.Get(platform)
			if alias == "" {
				continue
			}
			entry.Aliases[platform] = alias
			t.entries[aliasKey(platform, alias)] = entry
		}
	}
	return t
}

// Resolve looks up a platform SKU. It never fails: when the table is empty
// or the key misses, the input SKU passes through as its own local SKU.
func (t *Table) Resolve(platformSku, platform string) Resolution {
	if t != nil && len(t.entries) > 0 {
		if entry, ok := t.entries[aliasKey(platform, platformSku)]; ok {
			return Resolution{LocalSku: entry.LocalSku, Category: entry.Category, OriginalSku: platformSku}
		}
		if entry, ok := t.entries[aliasKey("local", platformSku)]; ok {
			return Resolution{LocalSku: entry.LocalSku, Category: entry.Category, OriginalSku: platformSku}
		}
	}
	return Resolution{LocalSku: platformSku, Category: "", OriginalSku: platformSku}
}

// Len reports how many distinct canonical SKUs the table holds.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byLocal)
}

// Empty reports whether lookups are passthrough-only.
func (t *Table) Empty() bool {
	return t == nil || len(t.entries) == 0
}

// AliasCount reports how many alias keys are registered, the "local" self
// aliases included.
func (t *Table) AliasCount() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// AliasColumns lists the alias namespaces a reference file may carry,
// sku_id (the legacy warehouse feed) included.
func AliasColumns() []string {
	return append([]string(nil), platformColumns...)
}

// PlatformAliasCount reports how many canonical SKUs carry an alias for the
// given platform namespace.
func (t *Table) PlatformAliasCount(platform string) int {
	if t == nil {
		return 0
	}
	count := 0
	for _, entry := range t.byLocal {
		if _, ok := entry.Aliases[strings.ToLower(strings.TrimSpace(platform))]; ok {
			count++
		}
	}
	return count
}

func aliasKey(namespace, sku string) string {
	return strings.ToLower(strings.TrimSpace(namespace)) + "_" + strings.ToLower(strings.TrimSpace(sku))
}
