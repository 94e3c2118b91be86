package service

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/analytics"
	"github.com/roadsense/roadsense-backend-go/internal/models"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
)

// AnalyticsService computes the read-side views. Every view is derived
// from a single full scan of the detections table; the aggregations
// themselves are pure functions over the loaded slice.
type AnalyticsService struct {
	repo *repository.DetectionRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo *repository.DetectionRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Queue returns the repair priority queue, optionally filtered to one
// status. An unknown status filter is rejected before the scan.
func (s *AnalyticsService) Queue(ctx context.Context, statusFilter string, limit int) ([]models.QueueItem, error) {
	if statusFilter != "" && !models.IsValidStatus(statusFilter) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, statusFilter)
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return analytics.PriorityQueue(records, statusFilter, limit), nil
}

// Areas returns the per-area rollup, worst area first
func (s *AnalyticsService) Areas(ctx context.Context) ([]models.AreaStatistics, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return analytics.AreaRollup(records), nil
}

// Summary returns the dashboard statistics over the trailing window
func (s *AnalyticsService) Summary(ctx context.Context, days int) (models.SummaryStatistics, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return models.SummaryStatistics{}, err
	}

	return analytics.WindowStats(records, days, time.Now().UTC()), nil
}
