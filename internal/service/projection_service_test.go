package service

import (
	"context"
	"testing"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/projection"
)

func TestProjectionService_ProjectsOverOrderHistory(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedRecords(t, repo)
	engine := projection.NewEngine(projection.DefaultConfig()).WithClock(func() time.Time {
		return time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	})
	svc := NewProjectionService(repo, engine, nil, 90)

	result, err := svc.Project(context.Background(), "", 30, "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !result.Found {
		t.Fatalf("want found over seeded orders")
	}
	// only the two order records feed the series; the inventory record is
	// excluded by report type
	if result.RecordCount != 2 {
		t.Fatalf("record count: want 2 got %d", result.RecordCount)
	}
	if result.GrowthReliable {
		t.Fatalf("2 points cannot produce a reliable trend")
	}
	if result.Confidence != domain.ConfidenceLow {
		t.Fatalf("confidence: want Low got %s", result.Confidence)
	}
	if result.ProjectedSales <= 0 {
		t.Fatalf("projection must be positive: %v", result.ProjectedSales)
	}
}

func TestProjectionService_SkuNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	seedRecords(t, repo)
	svc := NewProjectionService(repo, nil, nil, 90)

	result, err := svc.Project(context.Background(), "UNKNOWN-SKU", 30, "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if result.Found {
		t.Fatalf("unknown sku must report not found, got %+v", result)
	}
}
