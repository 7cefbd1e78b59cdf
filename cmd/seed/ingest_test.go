package main

import (
	"testing"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
)

func TestParseFileMeta(t *testing.T) {
	t.Parallel()

	meta, err := parseFileMeta("myntra_orders_2025-06-01_2025-06-30.csv")
	if err != nil {
		t.Fatalf("parseFileMeta: %v", err)
	}
	if meta.platform != domain.PlatformMyntra || meta.reportType != domain.ReportOrders {
		t.Fatalf("meta: %+v", meta)
	}
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !meta.start.Equal(want) {
		t.Fatalf("start: %v", meta.start)
	}

	bad := []string{
		"orders_2025-06-01_2025-06-30.csv",
		"unknown_orders_2025-06-01_2025-06-30.csv",
		"myntra_bogus_2025-06-01_2025-06-30.csv",
		"myntra_orders_June_2025-06-30.csv",
		"notes.txt",
	}
	for _, name := range bad {
		if _, err := parseFileMeta(name); err == nil {
			t.Fatalf("parseFileMeta(%q): want error", name)
		}
	}
}
