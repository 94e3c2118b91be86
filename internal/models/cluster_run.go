package models

import "time"

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ClusterAssignment maps a record to the cluster label a run gave it.
// Only positive (non-noise) assignments are ever written back.
type ClusterAssignment struct {
	RecordID  string `json:"record_id"`
	ClusterID int64  `json:"cluster_id"`
}

// ClusterSummary describes one cluster produced by a run
type ClusterSummary struct {
	ClusterID   int64   `json:"cluster_id"`
	Size        int     `json:"size"`
	CentroidLat float64 `json:"centroid_lat"`
	CentroidLng float64 `json:"centroid_lng"`
	SpanMeters  float64 `json:"span_meters"`
}

// ClusterRun records one execution of the spatial clustering job
type ClusterRun struct {
	ID           string           `json:"id" db:"id"`
	Status       string           `json:"status" db:"status"`
	OpenRecords  int              `json:"open_records" db:"open_records"`
	Clustered    int              `json:"clustered" db:"clustered"`
	Noise        int              `json:"noise" db:"noise"`
	NumClusters  int              `json:"num_clusters" db:"num_clusters"`
	Clusters     []ClusterSummary `json:"clusters,omitempty" db:"-"`
	StartedAt    time.Time        `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage *string          `json:"error_message,omitempty" db:"error_message"`
}

// IsTerminal returns true if the run has finished, successfully or not
func (r *ClusterRun) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
