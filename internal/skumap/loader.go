package skumap

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/wearella/marketpulse/internal/ingest"
)

// LoadFile reads the reference mapping table from a CSV or XLSX file.
// A missing or unreadable file is a valid steady state, not an error: the
// returned table is empty and every lookup passes through.
func LoadFile(path string) *Table {
	if path == "" {
		return New()
	}
	if _, err := os.Stat(path); err != nil {
		log.Warn().Str("path", path).Msg("sku mapping file not found, running with passthrough mapping")
		return New()
	}

	rows, err := ingest.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse sku mapping file, running with passthrough mapping")
		return New()
	}

	table := Build(rows)
	log.Info().Str("path", path).Int("skus", table.Len()).Msg("sku mapping table loaded")
	return table
}
