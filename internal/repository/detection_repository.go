// Package repository handles database operations for detection records
// and clustering runs.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

// ErrNotFound is returned when an operation targets a missing record
var ErrNotFound = errors.New("record not found")

// DetectionRepository handles database operations for detection records
type DetectionRepository struct {
	db *sqlx.DB
}

// NewDetectionRepository creates a new detection repository
func NewDetectionRepository(db *sqlx.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// detectionRow is the flat database image of a DetectionRecord
type detectionRow struct {
	ID            string     `db:"id"`
	CreatedAt     time.Time  `db:"created_at"`
	ExpiresAt     time.Time  `db:"expires_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
	DeviceID      *string    `db:"device_id"`
	CapturedAt    *time.Time `db:"captured_at"`
	Lat           *float64   `db:"lat"`
	Lng           *float64   `db:"lng"`
	Alt           *float64   `db:"alt"`
	StoragePath   string     `db:"storage_path"`
	BoxesJSON     string     `db:"boxes_json"`
	NumDetections int        `db:"num_detections"`
	ModelVersion  string     `db:"model_version"`
	InferenceMs   int64      `db:"inference_ms"`
	Severity      string     `db:"severity"`
	PriorityScore int        `db:"priority_score"`
	Area          *string    `db:"area"`
	StreetName    *string    `db:"street_name"`
	RoadType      string     `db:"road_type"`
	RepairUrgency string     `db:"repair_urgency"`
	ClusterID     *int64     `db:"cluster_id"`
	Status        string     `db:"status"`
}

const detectionColumns = `
	id, created_at, expires_at, updated_at, device_id, captured_at,
	lat, lng, alt, storage_path, boxes_json, num_detections,
	model_version, inference_ms, severity, priority_score, area,
	street_name, road_type, repair_urgency, cluster_id, status
`

func (row *detectionRow) toModel() *models.DetectionRecord {
	record := &models.DetectionRecord{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
		UpdatedAt: row.UpdatedAt,
		Metadata: models.DetectionMetadata{
			DeviceID:   row.DeviceID,
			CapturedAt: row.CapturedAt,
		},
		StoragePath: row.StoragePath,
		Detection: models.DetectionResult{
			NumDetections: row.NumDetections,
			ModelVersion:  row.ModelVersion,
			InferenceMs:   row.InferenceMs,
		},
		Severity:      row.Severity,
		PriorityScore: row.PriorityScore,
		Area:          row.Area,
		StreetName:    row.StreetName,
		RoadType:      row.RoadType,
		RepairUrgency: row.RepairUrgency,
		ClusterID:     row.ClusterID,
		Status:        row.Status,
	}

	if row.Lat != nil && row.Lng != nil {
		record.Metadata.Location = &models.GeoPoint{Lat: *row.Lat, Lng: *row.Lng, Alt: row.Alt}
	}

	// A malformed boxes payload degrades to an empty box list rather
	// than failing the whole read
	boxes := []models.BoundingBox{}
	if err := json.Unmarshal([]byte(row.BoxesJSON), &boxes); err != nil {
		log.Printf("[DetectionRepository] malformed boxes_json for %s: %v", row.ID, err)
		boxes = []models.BoundingBox{}
	}
	record.Detection.BoundingBoxes = boxes

	return record
}

// Create inserts a new detection record
func (r *DetectionRepository) Create(ctx context.Context, record *models.DetectionRecord) error {
	boxes, err := json.Marshal(record.Detection.BoundingBoxes)
	if err != nil {
		return fmt.Errorf("failed to marshal bounding boxes: %w", err)
	}

	var lat, lng, alt *float64
	if loc := record.Metadata.Location; loc != nil {
		lat, lng, alt = &loc.Lat, &loc.Lng, loc.Alt
	}

	query := `
		INSERT INTO detections (` + detectionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.CreatedAt,
		record.ExpiresAt,
		record.UpdatedAt,
		record.Metadata.DeviceID,
		record.Metadata.CapturedAt,
		lat,
		lng,
		alt,
		record.StoragePath,
		string(boxes),
		record.Detection.NumDetections,
		record.Detection.ModelVersion,
		record.Detection.InferenceMs,
		record.Severity,
		record.PriorityScore,
		record.Area,
		record.StreetName,
		record.RoadType,
		record.RepairUrgency,
		record.ClusterID,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create detection: %w", err)
	}

	return nil
}

// GetByID retrieves a detection record by ID
func (r *DetectionRepository) GetByID(ctx context.Context, id string) (*models.DetectionRecord, error) {
	var row detectionRow
	query := `SELECT ` + detectionColumns + ` FROM detections WHERE id = ?`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}

	return row.toModel(), nil
}

// Delete removes a detection record
func (r *DetectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM detections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete detection: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus writes a new status and updated-at timestamp
func (r *DetectionRepository) UpdateStatus(ctx context.Context, id, status string, now time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE detections SET status = ?, updated_at = ? WHERE id = ?",
		status, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every detection record. The analytics aggregations
// compute all views from this single scan.
func (r *DetectionRepository) ListAll(ctx context.Context) ([]*models.DetectionRecord, error) {
	var rows []detectionRow
	query := `SELECT ` + detectionColumns + ` FROM detections`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}

	records := make([]*models.DetectionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toModel())
	}
	return records, nil
}

// ListOpenWithLocation returns the non-repaired records that carry a
// capture coordinate, the input set for a clustering run
func (r *DetectionRepository) ListOpenWithLocation(ctx context.Context) ([]*models.DetectionRecord, error) {
	var rows []detectionRow
	query := `
		SELECT ` + detectionColumns + `
		FROM detections
		WHERE status != ? AND lat IS NOT NULL AND lng IS NOT NULL
	`

	if err := r.db.SelectContext(ctx, &rows, query, models.StatusRepaired); err != nil {
		return nil, fmt.Errorf("failed to list open detections: %w", err)
	}

	records := make([]*models.DetectionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toModel())
	}
	return records, nil
}

// ClearClusterIDs removes every cluster assignment, run before each
// clustering pass so stale ids never survive a run
func (r *DetectionRepository) ClearClusterIDs(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE detections SET cluster_id = NULL WHERE cluster_id IS NOT NULL"); err != nil {
		return fmt.Errorf("failed to clear cluster ids: %w", err)
	}
	return nil
}

// AssignClusterBatch writes one bounded batch of cluster assignments in
// a single transaction. Callers retry at this granularity.
func (r *DetectionRepository) AssignClusterBatch(ctx context.Context, batch []models.ClusterAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "UPDATE detections SET cluster_id = ? WHERE id = ?")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare assignment statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range batch {
		if _, err := stmt.ExecContext(ctx, a.ClusterID, a.RecordID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to assign cluster %d to %s: %w", a.ClusterID, a.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment batch: %w", err)
	}
	return nil
}

// ListExpired returns records whose TTL has passed, oldest first
func (r *DetectionRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*models.DetectionRecord, error) {
	var rows []detectionRow
	query := `
		SELECT ` + detectionColumns + `
		FROM detections
		WHERE expires_at <= ?
		ORDER BY expires_at
		LIMIT ?
	`

	if err := r.db.SelectContext(ctx, &rows, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list expired detections: %w", err)
	}

	records := make([]*models.DetectionRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toModel())
	}
	return records, nil
}
