package models

import "time"

// QueueItem is one entry of the priority-ordered repair queue
type QueueItem struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Severity      string    `json:"severity"`
	PriorityScore int       `json:"priority_score"`
	RepairUrgency string    `json:"repair_urgency"`
	Status        string    `json:"status"`
	Area          *string   `json:"area"`
	StreetName    *string   `json:"street_name"`
	RoadType      string    `json:"road_type"`
	Location      *GeoPoint `json:"location,omitempty"`
	NumDetections int       `json:"num_detections"`
	ClusterID     *int64    `json:"cluster_id"`
}

// AreaStatistics is the per-area rollup, recomputed fresh on every call
type AreaStatistics struct {
	Area             string         `json:"area"`
	TotalPotholes    int            `json:"total_potholes"`
	SeverityCounts   map[string]int `json:"severity_counts"`
	Repaired         int            `json:"repaired"`
	Pending          int            `json:"pending"`
	AvgPriorityScore float64        `json:"avg_priority_score"`
	IsHotspot        bool           `json:"is_hotspot"`
}

// DailyCount is one bucket of the time-window timeline
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// AreaCount ranks an area by record count within a window
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// SummaryStatistics is the time-windowed operational summary
type SummaryStatistics struct {
	WindowDays       int          `json:"window_days"`
	TotalDetections  int          `json:"total_detections"`
	Repaired         int          `json:"repaired"`
	Pending          int          `json:"pending"`
	RepairRatePct    float64      `json:"repair_rate_pct"`
	Timeline         []DailyCount `json:"timeline"`
	TopAreas         []AreaCount  `json:"top_areas"`
	EstimatedSavings float64      `json:"estimated_savings"`
	PriorityP50      float64      `json:"priority_p50"`
	PriorityP90      float64      `json:"priority_p90"`
}
