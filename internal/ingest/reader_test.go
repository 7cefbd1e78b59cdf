package ingest

import (
	"strings"
	"testing"
)

func TestNormalizeColumn(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Local_SKU", "localsku"},
		{"Local SKU", "localsku"},
		{"  seller-sku ", "sellersku"},
		{"Final.Amount", "finalamount"},
		{"Warehouse/Name", "warehousename"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeColumn(tc.in); got != tc.want {
			t.Fatalf("NormalizeColumn(%q): want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestRowGet_FirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	row := Row{"sku": "", "sellersku": "BW-1"}
	if got := row.Get("SKU", "Seller SKU"); got != "BW-1" {
		t.Fatalf("want BW-1 got %q", got)
	}
	if got := row.Get("missing"); got != "" {
		t.Fatalf("missing column should be empty, got %q", got)
	}
}

func TestRowFloat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  float64
	}{
		{"1200.50", 1200.50},
		{"1,200.50", 1200.50},
		{"1,00,000", 100000},
		{"-42", -42},
		{"abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		row := Row{"amount": tc.value}
		if got := row.Float("Amount"); got != tc.want {
			t.Fatalf("Float(%q): want %v got %v", tc.value, tc.want, got)
		}
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Seller SKU,Final Amount,Customer City",
		"BW-1,500,Mumbai",
		`BW-2,"1,200",Delhi`,
		"BW-3,300", // short row: remaining columns stay empty
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows got %d", len(rows))
	}
	if rows[0].Get("seller sku") != "BW-1" || rows[0].Float("final amount") != 500 {
		t.Fatalf("row 0: %v", rows[0])
	}
	if rows[1].Float("final amount") != 1200 {
		t.Fatalf("row 1 quoted amount: %v", rows[1])
	}
	if rows[2].Get("customer city") != "" {
		t.Fatalf("short row should leave trailing columns empty: %v", rows[2])
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input should not error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("want no rows, got %d", len(rows))
	}
}

func TestRead_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("x"), "report.pdf")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("want unsupported extension error, got %v", err)
	}
}

func TestRead_DispatchesCSV(t *testing.T) {
	t.Parallel()

	rows, err := Read(strings.NewReader("SKU,Amount\nBW-1,10"), "Report.CSV")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 || rows[0].Get("sku") != "BW-1" {
		t.Fatalf("rows: %v", rows)
	}
}
