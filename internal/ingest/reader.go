// Package ingest parses uploaded CSV/XLSX export files into plain rows.
// The reporting pipeline begins once these rows exist; everything here is
// thin I/O with header normalization.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one parsed record, keyed by normalized column name.
type Row map[string]string

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

// NormalizeColumn collapses case, spacing and punctuation so header
// variants like "Local_SKU", "Local SKU" and "local_sku" all match.
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// Get returns the first non-empty value among the given column names.
func (r Row) Get(names ...string) string {
	for _, name := range names {
		if v, ok := r[NormalizeColumn(name)]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Float safe-parses the first matching column into a number. Thousands
// separators are stripped; anything unparseable coerces to 0.
func (r Row) Float(names ...string) float64 {
	v := r.Get(names...)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

// ReadCSV parses CSV content into rows. A malformed row is skipped, never
// aborting the rest of the file.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeColumn(h)
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// bad row, keep going
			continue
		}
		rows = append(rows, recordToRow(keys, record))
	}
	return rows, nil
}

// ReadXLSX parses the first sheet of an XLSX file into rows.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var keys []string
	rows := make([]Row, 0)
	for iter.Next() {
		record, err := iter.Columns()
		if err != nil {
			continue
		}
		if keys == nil {
			keys = make([]string, len(record))
			for i, h := range record {
				keys[i] = NormalizeColumn(h)
			}
			continue
		}
		rows = append(rows, recordToRow(keys, record))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating xlsx rows: %w", err)
	}
	return rows, nil
}

// Read dispatches on the filename extension. JSON uploads are not handled
// here; callers receiving pre-parsed row arrays skip this package entirely.
func Read(r io.Reader, filename string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx", ".xls":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return ReadXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported file extension %s", filepath.Ext(filename))
	}
}

// ReadFile opens and parses a file on disk.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

func recordToRow(keys []string, record []string) Row {
	row := make(Row, len(keys))
	for i, key := range keys {
		if key == "" {
			continue
		}
		if i < len(record) {
			row[key] = strings.TrimSpace(record[i])
		}
	}
	return row
}
