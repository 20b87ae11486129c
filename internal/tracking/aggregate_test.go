package tracking

import (
	"testing"
	"time"
)

func sampleAt(lat, lng float64, ts time.Time) LocationSample {
	return LocationSample{Lat: lat, Lng: lng, Timestamp: ts}
}

// TestBuildView_ZeroSamplesExcluded verifies that a user with no stored
// samples never produces a view, whatever the presence flag says.
func TestBuildView_ZeroSamplesExcluded(t *testing.T) {
	user := studentRecord{UserID: "u1", DisplayName: "Ana"}

	if _, ok := buildView(user, nil, true); ok {
		t.Error("expected no view for a sharing user with zero samples")
	}
	if _, ok := buildView(user, []LocationSample{}, false); ok {
		t.Error("expected no view for a non-sharing user with zero samples")
	}
}

// TestBuildView_TrailOrdering verifies that for samples stored at T1<T2<T3
// (fetched newest-first) the current position is T3 and the trail runs
// oldest-first.
func TestBuildView_TrailOrdering(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	t1 := sampleAt(10.1, 120.1, base)
	t2 := sampleAt(10.2, 120.2, base.Add(time.Minute))
	t3 := sampleAt(10.3, 120.3, base.Add(2*time.Minute))

	// Newest-first, as the store query returns them.
	view, ok := buildView(studentRecord{UserID: "u1", DisplayName: "Ana"}, []LocationSample{t3, t2, t1}, true)
	if !ok {
		t.Fatal("expected a view")
	}

	if view.Lat != t3.Lat || view.Lng != t3.Lng || !view.Timestamp.Equal(t3.Timestamp) {
		t.Errorf("expected current position to be the newest sample, got %+v", view)
	}

	want := [][2]float64{{10.1, 120.1}, {10.2, 120.2}, {10.3, 120.3}}
	if len(view.Trail) != len(want) {
		t.Fatalf("expected trail of %d points, got %d", len(want), len(view.Trail))
	}
	for i := range want {
		if view.Trail[i] != want[i] {
			t.Errorf("trail[%d] = %v, want %v", i, view.Trail[i], want[i])
		}
	}
}

// TestBuildView_ProfileFallbacks verifies the Unknown/N/A fallbacks and
// the title-cased username fallback for the display name.
func TestBuildView_ProfileFallbacks(t *testing.T) {
	samples := []LocationSample{sampleAt(10, 120, time.Now())}

	view, ok := buildView(studentRecord{UserID: "u1"}, samples, false)
	if !ok {
		t.Fatal("expected a view")
	}
	if view.Name != "Unknown" {
		t.Errorf("expected name fallback Unknown, got %q", view.Name)
	}
	if view.ClassName != "N/A" || view.School != "N/A" {
		t.Errorf("expected N/A class and school, got %q / %q", view.ClassName, view.School)
	}
	if view.Sharing {
		t.Error("expected sharing false")
	}

	view, ok = buildView(studentRecord{UserID: "u2", Username: "ana cruz"}, samples, true)
	if !ok {
		t.Fatal("expected a view")
	}
	if view.Name != "Ana Cruz" {
		t.Errorf("expected title-cased username fallback, got %q", view.Name)
	}
	if !view.Sharing {
		t.Error("expected sharing true")
	}
}

// TestBuildView_TrailCappedInput verifies the view simply reflects however
// many samples the store handed over (the query caps at 50).
func TestBuildView_TrailCappedInput(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	samples := make([]LocationSample, trailLimit)
	for i := range samples {
		samples[i] = sampleAt(float64(i), float64(i), base.Add(time.Duration(-i)*time.Second))
	}

	view, ok := buildView(studentRecord{UserID: "u1", DisplayName: "Ana"}, samples, true)
	if !ok {
		t.Fatal("expected a view")
	}
	if len(view.Trail) != trailLimit {
		t.Fatalf("expected %d trail points, got %d", trailLimit, len(view.Trail))
	}
}
