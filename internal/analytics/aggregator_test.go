package analytics

import (
	"testing"
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

func strptr(s string) *string { return &s }

func record(id string, score int, severity, status string, area *string, createdAt time.Time) *models.DetectionRecord {
	return &models.DetectionRecord{
		ID:            id,
		CreatedAt:     createdAt,
		Severity:      severity,
		PriorityScore: score,
		Area:          area,
		RoadType:      models.RoadTypeResidential,
		RepairUrgency: models.UrgencyRoutine,
		Status:        status,
	}
}

func TestPriorityQueueOrderAndDefaultFilter(t *testing.T) {
	now := time.Now()
	records := []*models.DetectionRecord{
		record("low", 30, models.SeverityLow, models.StatusReported, nil, now),
		record("high", 90, models.SeverityHigh, models.StatusVerified, nil, now),
		record("done", 99, models.SeverityHigh, models.StatusRepaired, nil, now),
		record("mid", 55, models.SeverityMedium, models.StatusScheduled, nil, now),
	}

	items := PriorityQueue(records, "", 10)

	if len(items) != 3 {
		t.Fatalf("queue length = %d, want 3 (repaired excluded)", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].PriorityScore > items[i-1].PriorityScore {
			t.Fatalf("queue not sorted descending: %v", items)
		}
	}
	if items[0].ID != "high" {
		t.Errorf("top of queue = %s, want high", items[0].ID)
	}
}

func TestPriorityQueueStatusFilter(t *testing.T) {
	now := time.Now()
	records := []*models.DetectionRecord{
		record("a", 30, models.SeverityLow, models.StatusReported, nil, now),
		record("b", 90, models.SeverityHigh, models.StatusRepaired, nil, now),
	}

	items := PriorityQueue(records, models.StatusRepaired, 10)
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("explicit repaired filter returned %v", items)
	}
}

func TestPriorityQueueLimitClamp(t *testing.T) {
	now := time.Now()
	var records []*models.DetectionRecord
	for i := 0; i < 60; i++ {
		records = append(records, record("r", i, models.SeverityLow, models.StatusReported, nil, now))
	}

	if got := len(PriorityQueue(records, "", 0)); got != DefaultQueueLimit {
		t.Errorf("limit 0 returned %d items, want default %d", got, DefaultQueueLimit)
	}
	if got := len(PriorityQueue(records, "", 5)); got != 5 {
		t.Errorf("limit 5 returned %d items", got)
	}
	if got := len(PriorityQueue(records, "", 10000)); got != 60 {
		t.Errorf("oversized limit returned %d items, want all 60", got)
	}
}

func TestAreaRollup(t *testing.T) {
	now := time.Now()
	records := []*models.DetectionRecord{
		record("1", 80, models.SeverityHigh, models.StatusReported, strptr("Downtown"), now),
		record("2", 40, models.SeverityLow, models.StatusRepaired, strptr("Downtown"), now),
		record("3", 60, models.SeverityMedium, models.StatusReported, strptr("Springdale"), now),
		record("4", 20, models.SeverityLow, models.StatusReported, nil, now),
	}

	areas := AreaRollup(records)

	if len(areas) != 3 {
		t.Fatalf("area count = %d, want 3", len(areas))
	}

	// Count conservation: per-area totals sum to the scanned set
	total := 0
	for _, a := range areas {
		total += a.TotalPotholes
	}
	if total != len(records) {
		t.Errorf("per-area totals sum to %d, want %d", total, len(records))
	}

	// Downtown first (largest), breakdowns correct
	if areas[0].Area != "Downtown" || areas[0].TotalPotholes != 2 {
		t.Fatalf("first area = %+v", areas[0])
	}
	if areas[0].Repaired != 1 || areas[0].Pending != 1 {
		t.Errorf("Downtown repaired/pending = %d/%d", areas[0].Repaired, areas[0].Pending)
	}
	if areas[0].SeverityCounts[models.SeverityHigh] != 1 || areas[0].SeverityCounts[models.SeverityLow] != 1 {
		t.Errorf("Downtown severity counts = %v", areas[0].SeverityCounts)
	}
	if areas[0].AvgPriorityScore != 60.0 {
		t.Errorf("Downtown avg = %v, want 60.0", areas[0].AvgPriorityScore)
	}

	// Missing area lands in the Unknown bucket
	found := false
	for _, a := range areas {
		if a.Area == UnknownArea {
			found = true
			if a.TotalPotholes != 1 {
				t.Errorf("Unknown bucket = %d, want 1", a.TotalPotholes)
			}
		}
	}
	if !found {
		t.Error("no Unknown bucket in rollup")
	}
}

func TestAreaRollupHotspot(t *testing.T) {
	now := time.Now()
	var records []*models.DetectionRecord
	for i := 0; i <= HotspotThreshold; i++ {
		records = append(records, record("r", 50, models.SeverityLow, models.StatusReported, strptr("Busy"), now))
	}
	records = append(records, record("q", 50, models.SeverityLow, models.StatusReported, strptr("Quiet"), now))

	areas := AreaRollup(records)
	for _, a := range areas {
		if a.Area == "Busy" && !a.IsHotspot {
			t.Errorf("Busy (count %d) not flagged as hotspot", a.TotalPotholes)
		}
		if a.Area == "Quiet" && a.IsHotspot {
			t.Errorf("Quiet flagged as hotspot")
		}
	}
}

func TestAreaRollupAvgRounding(t *testing.T) {
	now := time.Now()
	records := []*models.DetectionRecord{
		record("1", 25, models.SeverityLow, models.StatusReported, strptr("A"), now),
		record("2", 50, models.SeverityLow, models.StatusReported, strptr("A"), now),
		record("3", 25, models.SeverityLow, models.StatusReported, strptr("A"), now),
	}

	areas := AreaRollup(records)
	if areas[0].AvgPriorityScore != 33.3 {
		t.Errorf("avg = %v, want 33.3", areas[0].AvgPriorityScore)
	}
}

func TestWindowStats(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	records := []*models.DetectionRecord{
		record("1", 80, models.SeverityHigh, models.StatusRepaired, strptr("Downtown"), now.AddDate(0, 0, -1)),
		record("2", 40, models.SeverityLow, models.StatusReported, strptr("Downtown"), now.AddDate(0, 0, -2)),
		record("3", 60, models.SeverityMedium, models.StatusReported, strptr("Springdale"), now.AddDate(0, 0, -2)),
		// Outside the window, must be ignored
		record("4", 99, models.SeverityHigh, models.StatusReported, strptr("Old"), now.AddDate(0, 0, -40)),
	}

	summary := WindowStats(records, 7, now)

	if summary.TotalDetections != 3 {
		t.Fatalf("total = %d, want 3", summary.TotalDetections)
	}
	if summary.Repaired != 1 || summary.Pending != 2 {
		t.Errorf("repaired/pending = %d/%d", summary.Repaired, summary.Pending)
	}
	if summary.RepairRatePct != 33.3 {
		t.Errorf("repair rate = %v, want 33.3", summary.RepairRatePct)
	}
	if summary.EstimatedSavings != CostSavingsPerRepair {
		t.Errorf("savings = %v, want %v", summary.EstimatedSavings, CostSavingsPerRepair)
	}

	if len(summary.Timeline) != 7 {
		t.Fatalf("timeline length = %d, want 7", len(summary.Timeline))
	}
	counted := 0
	for _, day := range summary.Timeline {
		counted += day.Count
	}
	if counted != 3 {
		t.Errorf("timeline counts sum to %d, want 3", counted)
	}

	if len(summary.TopAreas) == 0 || summary.TopAreas[0].Area != "Downtown" || summary.TopAreas[0].Count != 2 {
		t.Errorf("top areas = %v", summary.TopAreas)
	}
	for _, a := range summary.TopAreas {
		if a.Area == "Old" {
			t.Error("out-of-window area leaked into top areas")
		}
	}
}

func TestWindowStatsEmpty(t *testing.T) {
	summary := WindowStats(nil, 7, time.Now())

	if summary.TotalDetections != 0 || summary.RepairRatePct != 0 {
		t.Errorf("empty summary = %+v", summary)
	}
	if len(summary.Timeline) != 7 {
		t.Errorf("empty timeline length = %d, want zero-filled 7", len(summary.Timeline))
	}
}
