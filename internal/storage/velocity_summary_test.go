package storage

import (
	"math"
	"testing"
)

// TestZoneBands verifies every zone is listed in velocity order and that
// untracked sets are excluded from the percentages.
func TestZoneBands(t *testing.T) {
	bands, tracked := zoneBands(map[string]int{
		"strength":       3,
		"power":          1,
		"":               4,
		"strength_speed": 4,
	})
	if tracked != 8 {
		t.Errorf("tracked = %d, want 8", tracked)
	}
	wantOrder := []string{"max_strength", "strength", "strength_speed", "power", "max_velocity"}
	if len(bands) != len(wantOrder) {
		t.Fatalf("got %d bands, want %d", len(bands), len(wantOrder))
	}
	for i, b := range bands {
		if b.Zone != wantOrder[i] {
			t.Errorf("band %d = %s, want %s", i, b.Zone, wantOrder[i])
		}
	}
	if bands[2].Sets != 4 || math.Abs(bands[2].Pct-50) > 1e-9 {
		t.Errorf("strength_speed = %d sets %.1f%%, want 4 sets 50%%", bands[2].Sets, bands[2].Pct)
	}
	if bands[0].Sets != 0 || bands[0].Pct != 0 {
		t.Errorf("max_strength = %+v, want empty", bands[0])
	}
	if bands[2].Label != "Strength-Speed" {
		t.Errorf("label = %q, want Strength-Speed", bands[2].Label)
	}
}

// TestZoneBandsEmpty verifies an empty range yields zero percentages, not NaN.
func TestZoneBandsEmpty(t *testing.T) {
	bands, tracked := zoneBands(nil)
	if tracked != 0 {
		t.Errorf("tracked = %d, want 0", tracked)
	}
	for _, b := range bands {
		if b.Pct != 0 {
			t.Errorf("%s pct = %v, want 0", b.Zone, b.Pct)
		}
	}
}
