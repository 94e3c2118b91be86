package stats

import "testing"

func TestMean(t *testing.T) {
	if got := Mean([]float64{25, 50, 75}); got != 50 {
		t.Errorf("Mean = %v, want 50", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		33.333: 33.3,
		66.666: 66.7,
		50.0:   50.0,
		0.05:   0.1,
	}
	for in, want := range cases {
		if got := Round1(in); got != want {
			t.Errorf("Round1(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	if got := Percentile(values, 50); got != 30 {
		t.Errorf("p50 = %v, want 30", got)
	}
	if got := Percentile(values, 0); got != 10 {
		t.Errorf("p0 = %v, want 10", got)
	}
	if got := Percentile(values, 100); got != 50 {
		t.Errorf("p100 = %v, want 50", got)
	}
	// Interpolated: p90 over 5 values lands between ranks 4 and 5
	if got := Percentile(values, 90); got != 46 {
		t.Errorf("p90 = %v, want 46", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("empty p50 = %v, want 0", got)
	}
}
