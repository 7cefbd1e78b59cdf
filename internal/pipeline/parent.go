package pipeline

import (
	"regexp"
	"strings"
)

// styleCodePattern matches a leading style code: 2-4 letters followed by
// 3-6 digits, e.g. "BW1023" in "BW1023XL".
var styleCodePattern = regexp.MustCompile(`^([A-Za-z]{2,4}[0-9]{3,6})`)

// ParentSku derives the style-level parent of a child SKU. The rule is
// deterministic and total: every non-empty SKU maps to exactly one
// non-empty parent. An empty or all-whitespace input has no parent and
// returns ""; callers feed real SKUs here (the aggregator filters empties
// before rollup).
//   - "BW-1023_XL"  -> "BW-1023" (prefix before the first underscore)
//   - "BW1023XL"    -> "BW1023"  (leading style code)
//   - anything else -> the SKU itself
func ParentSku(sku string) string {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return ""
	}
	if idx := strings.Index(sku, "_"); idx > 0 {
		return sku[:idx]
	}
	if m := styleCodePattern.FindString(sku); m != "" {
		return m
	}
	return sku
}
