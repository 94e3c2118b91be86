// Package service implements the detection write path and the
// analytics read path on top of the repositories and external clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/roadsense/roadsense-backend-go/internal/detect"
	"github.com/roadsense/roadsense-backend-go/internal/events"
	"github.com/roadsense/roadsense-backend-go/internal/geocode"
	"github.com/roadsense/roadsense-backend-go/internal/models"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/internal/scoring"
	"github.com/roadsense/roadsense-backend-go/internal/storage"
)

// ErrValidation marks client errors rejected before any side effect
var ErrValidation = errors.New("validation error")

// ErrPayloadTooLarge is returned when an upload exceeds the size limit
var ErrPayloadTooLarge = errors.New("payload too large")

// DetectionService handles the detection record lifecycle: creation
// (inference, storage, enrichment, scoring), status updates, deletion
type DetectionService struct {
	repo          *repository.DetectionRepository
	detector      detect.Detector
	enricher      *geocode.Enricher
	blobs         storage.BlobStore
	scorer        *scoring.Scorer
	publisher     events.Publisher
	confThreshold float64
	maxUploadSize int64
	retentionDays int
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	repo *repository.DetectionRepository,
	detector detect.Detector,
	enricher *geocode.Enricher,
	blobs storage.BlobStore,
	scorer *scoring.Scorer,
	publisher events.Publisher,
	confThreshold float64,
	maxUploadSize int64,
	retentionDays int,
) *DetectionService {
	return &DetectionService{
		repo:          repo,
		detector:      detector,
		enricher:      enricher,
		blobs:         blobs,
		scorer:        scorer,
		publisher:     publisher,
		confThreshold: confThreshold,
		maxUploadSize: maxUploadSize,
		retentionDays: retentionDays,
	}
}

// CreateInput carries one incoming detection upload
type CreateInput struct {
	Image       []byte
	ContentType string
	DeviceID    *string
	CapturedAt  *time.Time
	Location    *models.GeoPoint
}

// Create runs the full per-detection pipeline: size guard, inference,
// blob upload, geocode enrichment, severity/priority scoring, persist.
// On any failure before persistence the record is discarded whole;
// nothing partial is ever written.
func (s *DetectionService) Create(ctx context.Context, input CreateInput) (*models.DetectionRecord, error) {
	if int64(len(input.Image)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrPayloadTooLarge, s.maxUploadSize)
	}
	if input.Location != nil && !input.Location.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}

	// Inference, timed around the call boundary
	start := time.Now()
	report, err := s.detector.Detect(ctx, input.Image, s.confThreshold)
	if err != nil {
		return nil, err
	}
	result := detect.BuildResult(report, time.Since(start))

	id := uuid.NewString()
	now := time.Now().UTC()

	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectName := storage.ImageObjectName(now, id, contentType)
	locator, err := s.blobs.Put(ctx, objectName, input.Image, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	// Enrichment is best-effort and only runs with a coordinate;
	// without one the record keeps neutral defaults and never gains
	// an area, street, or non-default road type
	enrichment := geocode.Enrichment{RoadType: models.RoadTypeResidential}
	if input.Location != nil {
		enrichment = s.enricher.Enrich(ctx, *input.Location)
	}

	severity := s.scorer.Classify(result.NumDetections, result.MaxConfidence())
	score := s.scorer.Score(severity, enrichment.RoadType, result.NumDetections, 0)

	record := &models.DetectionRecord{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, s.retentionDays),
		Metadata: models.DetectionMetadata{
			DeviceID:   input.DeviceID,
			CapturedAt: input.CapturedAt,
			Location:   input.Location,
		},
		StoragePath:   locator,
		Detection:     result,
		Severity:      severity,
		PriorityScore: score,
		Area:          enrichment.Area,
		StreetName:    enrichment.StreetName,
		RoadType:      enrichment.RoadType,
		RepairUrgency: scoring.Urgency(severity),
		Status:        models.StatusReported,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// The record is discarded; the uploaded blob is removed so a
		// failed create leaves nothing behind
		if delErr := s.blobs.Delete(ctx, locator); delErr != nil {
			log.Printf("[Detection] orphan blob cleanup failed for %s: %v", locator, delErr)
		}
		return nil, err
	}

	s.publisher.RecordCreated(record)
	return record, nil
}

// UpdateStatus validates the target status and writes it with a fresh
// updated-at timestamp. The target set is checked before any store
// access; transitions themselves are unrestricted.
func (s *DetectionService) UpdateStatus(ctx context.Context, id, status string) (*models.DetectionRecord, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.publisher.StatusChanged(id, status)
	return s.repo.GetByID(ctx, id)
}

// Delete removes a record and, best-effort, its stored image
func (s *DetectionService) Delete(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if record.StoragePath != "" {
		if err := s.blobs.Delete(ctx, record.StoragePath); err != nil {
			log.Printf("[Detection] blob delete failed for %s: %v", record.StoragePath, err)
		}
	}

	s.publisher.RecordDeleted(id)
	return nil
}

// Get retrieves a single record
func (s *DetectionService) Get(ctx context.Context, id string) (*models.DetectionRecord, error) {
	return s.repo.GetByID(ctx, id)
}
