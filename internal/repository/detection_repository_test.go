package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadsense/roadsense-backend-go/internal/database"
	"github.com/roadsense/roadsense-backend-go/internal/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:           filepath.Join(t.TempDir(), "test.db"),
		MigrationsPath: "../../migrations",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(id string) *models.DetectionRecord {
	now := time.Now().UTC().Truncate(time.Second)
	lat, lng := 43.7315, -79.7624
	street := "Queen St E"
	area := "Downtown Brampton"

	return &models.DetectionRecord{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, 90),
		Metadata: models.DetectionMetadata{
			Location: &models.GeoPoint{Lat: lat, Lng: lng},
		},
		StoragePath: "gs://test-bucket/uploads/2026-09-01/" + id + ".jpg",
		Detection: models.DetectionResult{
			BoundingBoxes: []models.BoundingBox{
				{X: 10, Y: 20, Width: 50, Height: 40, Confidence: 0.92, ClassName: "pothole"},
			},
			NumDetections: 1,
			ModelVersion:  "yolov8n-pothole-v2",
			InferenceMs:   120,
		},
		Severity:      models.SeverityHigh,
		PriorityScore: 80,
		Area:          &area,
		StreetName:    &street,
		RoadType:      models.RoadTypeArterial,
		RepairUrgency: models.UrgencyUrgent,
		Status:        models.StatusReported,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()

	record := testRecord("det-1")
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "det-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if got.ID != record.ID {
		t.Errorf("ID = %q, want %q", got.ID, record.ID)
	}
	if got.Severity != models.SeverityHigh || got.PriorityScore != 80 {
		t.Errorf("severity/score = %s/%d, want high/80", got.Severity, got.PriorityScore)
	}
	if got.StreetName == nil || *got.StreetName != "Queen St E" {
		t.Errorf("street = %v, want Queen St E", got.StreetName)
	}
	if !got.HasLocation() {
		t.Fatal("location missing after round trip")
	}
	if got.Metadata.Location.Lat != 43.7315 {
		t.Errorf("lat = %v, want 43.7315", got.Metadata.Location.Lat)
	}
	if len(got.Detection.BoundingBoxes) != 1 {
		t.Fatalf("boxes = %d, want 1", len(got.Detection.BoundingBoxes))
	}
	if got.Detection.BoundingBoxes[0].Confidence != 0.92 {
		t.Errorf("box confidence = %v, want 0.92", got.Detection.BoundingBoxes[0].Confidence)
	}
	if got.ClusterID != nil {
		t.Errorf("cluster id = %v, want nil", got.ClusterID)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testRecord("det-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, "det-1", models.StatusVerified, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := repo.GetByID(ctx, "det-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusVerified {
		t.Errorf("status = %q, want verified", got.Status)
	}
	if got.UpdatedAt == nil {
		t.Error("updated_at not set")
	}

	if err := repo.UpdateStatus(ctx, "missing", models.StatusVerified, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testRecord("det-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, "det-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "det-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "det-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestListOpenWithLocation(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()

	open := testRecord("open-located")

	repaired := testRecord("repaired")
	repaired.Status = models.StatusRepaired

	noLocation := testRecord("no-location")
	noLocation.Metadata.Location = nil

	for _, r := range []*models.DetectionRecord{open, repaired, noLocation} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	got, err := repo.ListOpenWithLocation(ctx)
	if err != nil {
		t.Fatalf("ListOpenWithLocation: %v", err)
	}
	if len(got) != 1 || got[0].ID != "open-located" {
		t.Errorf("got %d records, want only open-located", len(got))
	}
}

func TestClusterAssignments(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, testRecord(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	batch := []models.ClusterAssignment{
		{RecordID: "a", ClusterID: 0},
		{RecordID: "b", ClusterID: 0},
	}
	if err := repo.AssignClusterBatch(ctx, batch); err != nil {
		t.Fatalf("AssignClusterBatch: %v", err)
	}

	got, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ClusterID == nil || *got.ClusterID != 0 {
		t.Errorf("cluster id = %v, want 0", got.ClusterID)
	}

	unassigned, err := repo.GetByID(ctx, "c")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if unassigned.ClusterID != nil {
		t.Errorf("cluster id = %v, want nil", unassigned.ClusterID)
	}

	if err := repo.ClearClusterIDs(ctx); err != nil {
		t.Fatalf("ClearClusterIDs: %v", err)
	}
	cleared, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if cleared.ClusterID != nil {
		t.Errorf("cluster id after clear = %v, want nil", cleared.ClusterID)
	}
}

func TestListExpired(t *testing.T) {
	repo := NewDetectionRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	expired := testRecord("old")
	expired.ExpiresAt = now.Add(-time.Hour)

	fresh := testRecord("fresh")
	fresh.ExpiresAt = now.Add(24 * time.Hour)

	for _, r := range []*models.DetectionRecord{expired, fresh} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.ID, err)
		}
	}

	got, err := repo.ListExpired(ctx, now, 100)
	if err != nil {
		t.Fatalf("ListExpired: %v", err)
	}
	if len(got) != 1 || got[0].ID != "old" {
		t.Errorf("got %d expired, want only old", len(got))
	}
}
