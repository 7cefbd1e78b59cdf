package cache

import (
	"testing"
	"time"

	"github.com/wearella/marketpulse/internal/domain"
)

func TestCacheTTLs(t *testing.T) {
	t.Parallel()

	summary, projection := cacheTTLs(0)
	if summary != defaultSummaryTTL {
		t.Fatalf("unset TTL should fall back to default, got %v", summary)
	}
	if projection != defaultSummaryTTL*projectionTTLFactor {
		t.Fatalf("projection TTL: want %v got %v", defaultSummaryTTL*projectionTTLFactor, projection)
	}

	summary, projection = cacheTTLs(300)
	if summary != 300*time.Second {
		t.Fatalf("configured TTL: want 300s got %v", summary)
	}
	if projection != summary*projectionTTLFactor {
		t.Fatalf("projection TTL must scale with the summary TTL, got %v", projection)
	}
}

func TestBuildSummaryKey(t *testing.T) {
	t.Parallel()

	if got := buildSummaryKey(domain.RecordFilter{}); got != summaryKeyPrefix+":default" {
		t.Fatalf("empty filter key: got %q", got)
	}

	a := buildSummaryKey(domain.RecordFilter{Platform: domain.PlatformMyntra})
	b := buildSummaryKey(domain.RecordFilter{Platform: domain.PlatformNykaa})
	if a == b {
		t.Fatalf("different filters must produce different keys")
	}
	if again := buildSummaryKey(domain.RecordFilter{Platform: domain.PlatformMyntra}); again != a {
		t.Fatalf("same filter must produce a stable key: %q vs %q", a, again)
	}
}

func TestBuildProjectionKey(t *testing.T) {
	t.Parallel()

	lower := buildProjectionKey("bw-1", 30, domain.PlatformMyntra)
	upper := buildProjectionKey("BW-1", 30, domain.PlatformMyntra)
	if lower != upper {
		t.Fatalf("sku lookups are case-insensitive, keys must match: %q vs %q", lower, upper)
	}

	other := buildProjectionKey("bw-1", 60, domain.PlatformMyntra)
	if other == lower {
		t.Fatalf("different horizons must produce different keys")
	}
}
