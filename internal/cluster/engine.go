// Package cluster groups open detection records into geographic
// hotspots so maintenance crews can batch nearby repairs.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roadsense/roadsense-backend-go/internal/models"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/internal/spatial"
)

// ErrRunInProgress is returned when a run is triggered while another is
// still executing; runs are serialized
var ErrRunInProgress = errors.New("clustering run already in progress")

const (
	// DefaultEps is the DBSCAN neighborhood radius in coordinate
	// degrees (~55 m north-south; narrower east-west away from the
	// equator, see spatial.PlanarDegreeDistance)
	DefaultEps = 0.0005

	// DefaultMinPts is the minimum neighborhood size for a core point
	DefaultMinPts = 2

	// maxOpsPerBatch bounds one assignment write batch (store limit)
	maxOpsPerBatch = 500

	// batchAttempts is how often a failed batch is retried before the
	// run is abandoned
	batchAttempts = 3
)

// Engine runs density-based clustering over open records and writes
// cluster assignments back in bounded batches
type Engine struct {
	detections *repository.DetectionRepository
	runs       *repository.ClusterRunRepository
	enabled    bool
	eps        float64
	minPts     int

	mu sync.Mutex // serializes runs
}

// NewEngine creates a clustering engine with the given parameters
func NewEngine(detections *repository.DetectionRepository, runs *repository.ClusterRunRepository, enabled bool, eps float64, minPts int) *Engine {
	if eps <= 0 {
		eps = DefaultEps
	}
	if minPts <= 0 {
		minPts = DefaultMinPts
	}
	return &Engine{
		detections: detections,
		runs:       runs,
		enabled:    enabled,
		eps:        eps,
		minPts:     minPts,
	}
}

// Run executes one clustering pass. Runs are serialized: a second
// trigger while one is executing returns ErrRunInProgress. A pass
// clears every previous assignment before writing fresh ones, so each
// run is idempotent and stale cluster ids never survive.
func (e *Engine) Run(ctx context.Context) (*models.ClusterRun, error) {
	if !e.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.mu.Unlock()

	run := &models.ClusterRun{
		ID:        uuid.NewString(),
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := e.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	if err := e.execute(ctx, run); err != nil {
		if markErr := e.runs.MarkFailed(ctx, run.ID, err.Error()); markErr != nil {
			log.Printf("[Cluster] failed to record run failure: %v", markErr)
		}
		return nil, err
	}

	if err := e.runs.MarkCompleted(ctx, run); err != nil {
		return nil, err
	}
	run.Status = models.RunStatusCompleted

	log.Printf("[Cluster] run %s: %d open, %d clustered into %d clusters, %d noise",
		run.ID, run.OpenRecords, run.Clustered, run.NumClusters, run.Noise)
	return run, nil
}

func (e *Engine) execute(ctx context.Context, run *models.ClusterRun) error {
	if !e.enabled {
		run.Clusters = []models.ClusterSummary{}
		return nil
	}

	records, err := e.detections.ListOpenWithLocation(ctx)
	if err != nil {
		return err
	}
	run.OpenRecords = len(records)

	points := make([]spatial.Point, 0, len(records))
	for _, r := range records {
		if !r.HasLocation() {
			continue
		}
		loc := r.Metadata.Location
		points = append(points, spatial.Point{ID: r.ID, Lat: loc.Lat, Lng: loc.Lng})
	}

	// Previous assignments go first so records that dropped out of
	// every cluster come back NULL
	if err := e.detections.ClearClusterIDs(ctx); err != nil {
		return err
	}

	// The algorithm needs at least two coordinates to say anything
	if len(points) < 2 {
		run.Clusters = []models.ClusterSummary{}
		return nil
	}

	labels := spatial.DBSCAN(points, e.eps, e.minPts)

	var assignments []models.ClusterAssignment
	members := make(map[int64][]spatial.Point)
	for i, label := range labels {
		if label == spatial.Noise {
			run.Noise++
			continue
		}
		id := int64(label)
		assignments = append(assignments, models.ClusterAssignment{RecordID: points[i].ID, ClusterID: id})
		members[id] = append(members[id], points[i])
	}
	run.Clustered = len(assignments)
	run.NumClusters = len(members)
	run.Clusters = summarize(members)

	return e.writeAssignments(ctx, assignments)
}

// writeAssignments persists assignments in bounded batches, retrying
// each failed batch in full before giving up
func (e *Engine) writeAssignments(ctx context.Context, assignments []models.ClusterAssignment) error {
	for start := 0; start < len(assignments); start += maxOpsPerBatch {
		end := start + maxOpsPerBatch
		if end > len(assignments) {
			end = len(assignments)
		}
		batch := assignments[start:end]

		var err error
		for attempt := 1; attempt <= batchAttempts; attempt++ {
			if err = e.detections.AssignClusterBatch(ctx, batch); err == nil {
				break
			}
			log.Printf("[Cluster] batch %d-%d attempt %d failed: %v", start, end, attempt, err)
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		if err != nil {
			return fmt.Errorf("assignment batch %d-%d failed after %d attempts: %w", start, end, batchAttempts, err)
		}
	}
	return nil
}

// summarize computes per-cluster centroid and span for the run report.
// Span is the largest member distance from the centroid in meters,
// measured geodesically for display even though clustering itself uses
// planar degrees.
func summarize(members map[int64][]spatial.Point) []models.ClusterSummary {
	summaries := make([]models.ClusterSummary, 0, len(members))
	for id, pts := range members {
		lat, lng := spatial.Centroid(pts)

		var span float64
		for _, p := range pts {
			if d := spatial.HaversineDistance(lat, lng, p.Lat, p.Lng); d > span {
				span = d
			}
		}

		summaries = append(summaries, models.ClusterSummary{
			ClusterID:   id,
			Size:        len(pts),
			CentroidLat: lat,
			CentroidLng: lng,
			SpanMeters:  span,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ClusterID < summaries[j].ClusterID
	})
	return summaries
}
