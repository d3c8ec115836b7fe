package youtube

import (
	"errors"
	"testing"

	"github.com/TKay76/the-trend-navigator/internal/models"
)

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		duration string
		expected int
	}{
		{"PT45S", 45},
		{"PT1M", 60},
		{"PT1M30S", 90},
		{"PT2H15M30S", 8130},
		{"PT1H", 3600},
		{"", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			if got := parseDurationSeconds(tt.duration); got != tt.expected {
				t.Errorf("parseDurationSeconds(%q) = %d, want %d", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestFilterShorts(t *testing.T) {
	videos := []*models.VideoRecord{
		{ID: "short-45s", DurationSeconds: 45},
		{ID: "short-60s", DurationSeconds: 60},
		{ID: "too-long", DurationSeconds: 61},
		{ID: "way-too-long", DurationSeconds: 240},
		{ID: "unknown-duration", DurationSeconds: 0},
	}

	shorts := filterShorts(videos)
	if len(shorts) != 3 {
		t.Fatalf("got %d shorts, want 3", len(shorts))
	}

	wantIDs := map[string]bool{"short-45s": true, "short-60s": true, "unknown-duration": true}
	for _, v := range shorts {
		if !wantIDs[v.ID] {
			t.Errorf("unexpected video %s in shorts", v.ID)
		}
	}
}

func TestReserveQuota(t *testing.T) {
	c := &Client{maxQuota: 250}

	// Two searches fit, a third would exceed the budget.
	if err := c.reserveQuota(searchQuotaCost); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}
	if err := c.reserveQuota(searchQuotaCost); err != nil {
		t.Fatalf("second reservation failed: %v", err)
	}
	if err := c.reserveQuota(searchQuotaCost); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("third reservation error = %v, want ErrQuotaExceeded", err)
	}

	// Failed reservations must not charge the budget.
	if got := c.QuotaUsed(); got != 200 {
		t.Errorf("QuotaUsed() = %d, want 200", got)
	}

	// Cheap calls still fit in the remainder.
	if err := c.reserveQuota(listQuotaCost); err != nil {
		t.Errorf("list reservation failed: %v", err)
	}
}
