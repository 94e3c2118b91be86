// Package analytics computes the read-side rollups over the detection
// record set: the priority queue, per-area statistics, and time-window
// summaries. Every view is a fresh full scan; nothing is cached or
// mutated.
package analytics

import (
	"sort"
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/models"
	"github.com/roadsense/roadsense-backend-go/internal/stats"
)

const (
	// HotspotThreshold flags an area as a hotspot when its record
	// count exceeds this value
	HotspotThreshold = 10

	// CostSavingsPerRepair is the fixed per-repair savings estimate
	// used in window summaries
	CostSavingsPerRepair = 500.0

	// DefaultQueueLimit and MaxQueueLimit bound the priority queue size
	DefaultQueueLimit = 50
	MaxQueueLimit     = 500

	// UnknownArea is the bucket for records with no resolved area
	UnknownArea = "Unknown"
)

// PriorityQueue returns records ordered by priority score descending.
// statusFilter narrows to one status; when empty, repaired records are
// excluded. Ties in score have no defined secondary order.
func PriorityQueue(records []*models.DetectionRecord, statusFilter string, limit int) []models.QueueItem {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	if limit > MaxQueueLimit {
		limit = MaxQueueLimit
	}

	var items []models.QueueItem
	for _, r := range records {
		if statusFilter != "" {
			if r.Status != statusFilter {
				continue
			}
		} else if r.Status == models.StatusRepaired {
			continue
		}

		items = append(items, models.QueueItem{
			ID:            r.ID,
			CreatedAt:     r.CreatedAt,
			Severity:      r.Severity,
			PriorityScore: r.PriorityScore,
			RepairUrgency: r.RepairUrgency,
			Status:        r.Status,
			Area:          r.Area,
			StreetName:    r.StreetName,
			RoadType:      r.RoadType,
			Location:      r.Metadata.Location,
			NumDetections: r.Detection.NumDetections,
			ClusterID:     r.ClusterID,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PriorityScore > items[j].PriorityScore
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// AreaRollup groups records by area (missing areas fall into the
// "Unknown" bucket) and computes per-area counts, severity and repair
// breakdowns, and the average priority score. Areas are sorted by
// total count descending.
func AreaRollup(records []*models.DetectionRecord) []models.AreaStatistics {
	type accumulator struct {
		stats  *models.AreaStatistics
		scores []float64
	}
	byArea := make(map[string]*accumulator)

	for _, r := range records {
		area := UnknownArea
		if r.Area != nil && *r.Area != "" {
			area = *r.Area
		}

		acc, ok := byArea[area]
		if !ok {
			acc = &accumulator{stats: &models.AreaStatistics{
				Area: area,
				SeverityCounts: map[string]int{
					models.SeverityLow:    0,
					models.SeverityMedium: 0,
					models.SeverityHigh:   0,
				},
			}}
			byArea[area] = acc
		}

		acc.stats.TotalPotholes++
		// Unrecognized severities are tolerated: counted in the total
		// but not in a tier bucket
		if _, known := acc.stats.SeverityCounts[r.Severity]; known {
			acc.stats.SeverityCounts[r.Severity]++
		}
		if r.Status == models.StatusRepaired {
			acc.stats.Repaired++
		} else {
			acc.stats.Pending++
		}
		acc.scores = append(acc.scores, float64(r.PriorityScore))
	}

	areas := make([]models.AreaStatistics, 0, len(byArea))
	for _, acc := range byArea {
		acc.stats.AvgPriorityScore = stats.Round1(stats.Mean(acc.scores))
		acc.stats.IsHotspot = acc.stats.TotalPotholes > HotspotThreshold
		areas = append(areas, *acc.stats)
	}

	sort.Slice(areas, func(i, j int) bool {
		if areas[i].TotalPotholes != areas[j].TotalPotholes {
			return areas[i].TotalPotholes > areas[j].TotalPotholes
		}
		return areas[i].Area < areas[j].Area
	})
	return areas
}

// WindowStats summarizes the records created within the last N days:
// totals, repair rate, a zero-filled per-day timeline, the top five
// areas, the estimated savings from completed repairs, and the
// priority-score distribution.
func WindowStats(records []*models.DetectionRecord, days int, now time.Time) models.SummaryStatistics {
	if days <= 0 {
		days = 30
	}
	cutoff := now.AddDate(0, 0, -days)

	summary := models.SummaryStatistics{
		WindowDays: days,
		Timeline:   make([]models.DailyCount, 0, days),
		TopAreas:   []models.AreaCount{},
	}

	perDay := make(map[string]int)
	perArea := make(map[string]int)
	var scores []float64

	for _, r := range records {
		if r.CreatedAt.Before(cutoff) {
			continue
		}

		summary.TotalDetections++
		if r.Status == models.StatusRepaired {
			summary.Repaired++
		} else {
			summary.Pending++
		}

		perDay[r.CreatedAt.UTC().Format("2006-01-02")]++

		area := UnknownArea
		if r.Area != nil && *r.Area != "" {
			area = *r.Area
		}
		perArea[area]++

		scores = append(scores, float64(r.PriorityScore))
	}

	if summary.TotalDetections > 0 {
		rate := float64(summary.Repaired) / float64(summary.TotalDetections) * 100
		summary.RepairRatePct = stats.Round1(rate)
	}
	summary.EstimatedSavings = float64(summary.Repaired) * CostSavingsPerRepair
	summary.PriorityP50 = stats.Round1(stats.Percentile(scores, 50))
	summary.PriorityP90 = stats.Round1(stats.Percentile(scores, 90))

	// Zero-filled timeline, oldest day first
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).UTC().Format("2006-01-02")
		summary.Timeline = append(summary.Timeline, models.DailyCount{Date: day, Count: perDay[day]})
	}

	for area, count := range perArea {
		summary.TopAreas = append(summary.TopAreas, models.AreaCount{Area: area, Count: count})
	}
	sort.Slice(summary.TopAreas, func(i, j int) bool {
		if summary.TopAreas[i].Count != summary.TopAreas[j].Count {
			return summary.TopAreas[i].Count > summary.TopAreas[j].Count
		}
		return summary.TopAreas[i].Area < summary.TopAreas[j].Area
	})
	if len(summary.TopAreas) > 5 {
		summary.TopAreas = summary.TopAreas[:5]
	}

	return summary
}
