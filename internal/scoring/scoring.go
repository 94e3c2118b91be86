// Package scoring derives severity tiers, priority scores, and repair
// urgency from detection output. All functions are deterministic and
// side-effect free.
package scoring

import "github.com/roadsense/roadsense-backend-go/internal/models"

// severity base scores
var severityBase = map[string]int{
	models.SeverityLow:    25,
	models.SeverityMedium: 50,
	models.SeverityHigh:   75,
}

// road-type bonuses; unknown road types contribute 0
var roadBonus = map[string]int{
	models.RoadTypeResidential: 0,
	models.RoadTypeArterial:    15,
	models.RoadTypeHighway:     25,
}

// Scorer computes severity and priority. When Enabled is false every
// severity is "low" and every score is 0, which disables prioritization
// without touching callers.
type Scorer struct {
	Enabled bool
}

// NewScorer creates a scorer with the given feature-flag state
func NewScorer(enabled bool) *Scorer {
	return &Scorer{Enabled: enabled}
}

// Classify maps detection count and max confidence to a severity tier.
// Rules are checked top to bottom; first match wins.
func (s *Scorer) Classify(numDetections int, maxConfidence float64) string {
	if !s.Enabled {
		return models.SeverityLow
	}

	switch {
	case numDetections >= 3 || maxConfidence > 0.9:
		return models.SeverityHigh
	case numDetections == 2 || (maxConfidence >= 0.7 && maxConfidence <= 0.9):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Score computes the 0-100 priority score from severity, road type,
// detection count, and record age in days.
func (s *Scorer) Score(severity, roadType string, numDetections, ageDays int) int {
	if !s.Enabled {
		return 0
	}

	score := severityBase[severity]
	if score == 0 {
		score = severityBase[models.SeverityLow]
	}
	score += roadBonus[roadType]

	detectionBonus := numDetections * 5
	if detectionBonus > 20 {
		detectionBonus = 20
	}
	score += detectionBonus

	ageBonus := ageDays * 5
	if ageBonus > 20 {
		ageBonus = 20
	}
	score += ageBonus

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// Urgency derives the coarse repair-urgency label from severity.
// Computed once at record creation and never recomputed.
func Urgency(severity string) string {
	switch severity {
	case models.SeverityHigh:
		return models.UrgencyEmergency
	case models.SeverityMedium:
		return models.UrgencyUrgent
	default:
		return models.UrgencyRoutine
	}
}
