package scoring

import (
	"testing"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

func TestClassifyBoundaries(t *testing.T) {
	s := NewScorer(true)

	cases := []struct {
		name    string
		num     int
		maxConf float64
		want    string
	}{
		{"single low confidence", 1, 0.69, models.SeverityLow},
		{"two detections any confidence", 2, 0.0, models.SeverityMedium},
		{"single very high confidence", 1, 0.95, models.SeverityHigh},
		{"three detections zero confidence", 3, 0.0, models.SeverityHigh},
		{"confidence at lower medium bound", 1, 0.7, models.SeverityMedium},
		{"confidence at upper medium bound", 1, 0.9, models.SeverityMedium},
		{"no detections", 0, 0.0, models.SeverityLow},
		{"many detections", 10, 0.1, models.SeverityHigh},
	}

	for _, c := range cases {
		got := s.Classify(c.num, c.maxConf)
		if got != c.want {
			t.Errorf("%s: Classify(%d, %v) = %q, want %q", c.name, c.num, c.maxConf, got, c.want)
		}
	}
}

func TestClassifyDisabled(t *testing.T) {
	s := NewScorer(false)
	if got := s.Classify(5, 0.99); got != models.SeverityLow {
		t.Errorf("disabled scorer returned %q, want low", got)
	}
}

func TestScore(t *testing.T) {
	s := NewScorer(true)

	cases := []struct {
		name     string
		severity string
		road     string
		num      int
		ageDays  int
		want     int
	}{
		{"baseline low residential", models.SeverityLow, models.RoadTypeResidential, 0, 0, 25},
		{"high on highway clamps to 100", models.SeverityHigh, models.RoadTypeHighway, 5, 10, 100},
		{"medium arterial two boxes", models.SeverityMedium, models.RoadTypeArterial, 2, 0, 75},
		{"detection bonus caps at 20", models.SeverityLow, models.RoadTypeResidential, 100, 0, 45},
		{"age bonus caps at 20", models.SeverityLow, models.RoadTypeResidential, 0, 30, 45},
		{"unknown road type contributes 0", models.SeverityLow, "gravel", 0, 0, 25},
		{"unknown severity falls back to low base", "extreme", models.RoadTypeResidential, 0, 0, 25},
	}

	for _, c := range cases {
		got := s.Score(c.severity, c.road, c.num, c.ageDays)
		if got != c.want {
			t.Errorf("%s: Score = %d, want %d", c.name, got, c.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("%s: score %d outside [0,100]", c.name, got)
		}
	}
}

func TestScoreDisabled(t *testing.T) {
	s := NewScorer(false)
	if got := s.Score(models.SeverityHigh, models.RoadTypeHighway, 10, 10); got != 0 {
		t.Errorf("disabled scorer returned %d, want 0", got)
	}
}

func TestUrgency(t *testing.T) {
	cases := map[string]string{
		models.SeverityHigh:   models.UrgencyEmergency,
		models.SeverityMedium: models.UrgencyUrgent,
		models.SeverityLow:    models.UrgencyRoutine,
		"unknown":             models.UrgencyRoutine,
	}
	for severity, want := range cases {
		if got := Urgency(severity); got != want {
			t.Errorf("Urgency(%q) = %q, want %q", severity, got, want)
		}
	}
}
