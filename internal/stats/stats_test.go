package stats

import (
	"math"
	"testing"
)

func TestSummaryStats(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Sum(data); got != 40 {
		t.Fatalf("sum: expected 40, got %f", got)
	}
	if got := Mean(data); got != 5 {
		t.Fatalf("mean: expected 5, got %f", got)
	}
	if got := StdDev(data); math.Abs(got-2) > 1e-12 {
		t.Fatalf("stddev: expected 2, got %f", got)
	}
	if got := Min(data); got != 2 {
		t.Fatalf("min: expected 2, got %f", got)
	}
	if got := Max(data); got != 9 {
		t.Fatalf("max: expected 9, got %f", got)
	}
}

func TestEmptyData(t *testing.T) {
	if Mean(nil) != 0 || StdDev(nil) != 0 || Min(nil) != 0 || Max(nil) != 0 {
		t.Fatal("expected zero stats for empty data")
	}
}
