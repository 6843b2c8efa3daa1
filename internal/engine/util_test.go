package engine

import "testing"

func TestRoundTo(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{33.333, 1, 33.3},
		{0.25, 1, 0.3},
		{0.35, 1, 0.4},
		{2.5, 0, 3},
		{-0.25, 1, -0.3},
		{10.0, 1, 10.0},
	}

	for _, tt := range tests {
		if got := roundTo(tt.v, tt.decimals); got != tt.want {
			t.Errorf("roundTo(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 10},
		{0.25, 17.5},
		{0.5, 25},
		{0.75, 32.5},
		{1, 40},
	}

	for _, tt := range tests {
		if got := quantile(values, tt.q); got != tt.want {
			t.Errorf("quantile(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}

	if got := quantile(nil, 0.5); got != 0 {
		t.Errorf("quantile(nil) = %v, want 0", got)
	}
	if got := quantile([]float64{7}, 0.25); got != 7 {
		t.Errorf("quantile(single) = %v, want 7", got)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{5, 20, 40}); got != 20 {
		t.Errorf("median(odd) = %v, want 20", got)
	}
	if got := median([]float64{10, 20}); got != 15 {
		t.Errorf("median(even) = %v, want 15", got)
	}
}
