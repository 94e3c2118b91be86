package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

// ClusterRunRepository handles database operations for clustering runs
type ClusterRunRepository struct {
	db *sqlx.DB
}

// NewClusterRunRepository creates a new cluster run repository
func NewClusterRunRepository(db *sqlx.DB) *ClusterRunRepository {
	return &ClusterRunRepository{db: db}
}

type clusterRunRow struct {
	ID           string     `db:"id"`
	Status       string     `db:"status"`
	OpenRecords  int        `db:"open_records"`
	Clustered    int        `db:"clustered"`
	Noise        int        `db:"noise"`
	NumClusters  int        `db:"num_clusters"`
	ClustersJSON string     `db:"clusters_json"`
	StartedAt    time.Time  `db:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	ErrorMessage *string    `db:"error_message"`
}

func (row *clusterRunRow) toModel() (*models.ClusterRun, error) {
	run := &models.ClusterRun{
		ID:           row.ID,
		Status:       row.Status,
		OpenRecords:  row.OpenRecords,
		Clustered:    row.Clustered,
		Noise:        row.Noise,
		NumClusters:  row.NumClusters,
		StartedAt:    row.StartedAt,
		CompletedAt:  row.CompletedAt,
		ErrorMessage: row.ErrorMessage,
	}

	if row.ClustersJSON != "" {
		if err := json.Unmarshal([]byte(row.ClustersJSON), &run.Clusters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cluster summaries: %w", err)
		}
	}
	return run, nil
}

// Create inserts a new run in running state
func (r *ClusterRunRepository) Create(ctx context.Context, run *models.ClusterRun) error {
	query := `
		INSERT INTO cluster_runs (id, status, started_at)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Status, run.StartedAt); err != nil {
		return fmt.Errorf("failed to create cluster run: %w", err)
	}
	return nil
}

// MarkCompleted records a successful run with its result counts
func (r *ClusterRunRepository) MarkCompleted(ctx context.Context, run *models.ClusterRun) error {
	clusters, err := json.Marshal(run.Clusters)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster summaries: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE cluster_runs
		SET status = ?, open_records = ?, clustered = ?, noise = ?,
		    num_clusters = ?, clusters_json = ?, completed_at = ?
		WHERE id = ?
	`
	_, err = r.db.ExecContext(ctx, query,
		models.RunStatusCompleted,
		run.OpenRecords,
		run.Clustered,
		run.Noise,
		run.NumClusters,
		string(clusters),
		now,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}

// MarkFailed records a failed run with its error message
func (r *ClusterRunRepository) MarkFailed(ctx context.Context, id, errorMessage string) error {
	now := time.Now().UTC()
	query := `
		UPDATE cluster_runs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusFailed, errorMessage, now, id); err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// GetByID retrieves a run by ID
func (r *ClusterRunRepository) GetByID(ctx context.Context, id string) (*models.ClusterRun, error) {
	var row clusterRunRow
	query := `
		SELECT id, status, open_records, clustered, noise, num_clusters,
		       clusters_json, started_at, completed_at, error_message
		FROM cluster_runs
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster run: %w", err)
	}

	return row.toModel()
}

// List retrieves recent runs, newest first
func (r *ClusterRunRepository) List(ctx context.Context, limit int) ([]*models.ClusterRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []clusterRunRow
	query := `
		SELECT id, status, open_records, clustered, noise, num_clusters,
		       clusters_json, started_at, completed_at, error_message
		FROM cluster_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list cluster runs: %w", err)
	}

	runs := make([]*models.ClusterRun, 0, len(rows))
	for i := range rows {
		run, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
