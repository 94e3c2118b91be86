// Package retention removes detection records whose TTL has passed.
package retention

import (
	"context"
	"log"
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/internal/service"
)

const sweepBatchSize = 200

// Sweeper periodically deletes expired records along with their stored
// images. Deletions go through the detection service so blob cleanup
// and event publishing match a manual delete.
type Sweeper struct {
	repo       *repository.DetectionRepository
	detections *service.DetectionService
	interval   time.Duration
}

// NewSweeper creates a sweeper running at the given interval
func NewSweeper(repo *repository.DetectionRepository, detections *service.DetectionService, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:       repo,
		detections: detections,
		interval:   interval,
	}
}

// Start runs the sweep loop until ctx is cancelled. One sweep runs
// immediately so a long interval never delays overdue cleanup.
func (s *Sweeper) Start(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Retention] sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep drains expired records in bounded batches
func (s *Sweeper) sweep(ctx context.Context) {
	total := 0
	for {
		expired, err := s.repo.ListExpired(ctx, time.Now().UTC(), sweepBatchSize)
		if err != nil {
			log.Printf("[Retention] listing expired records failed: %v", err)
			return
		}
		if len(expired) == 0 {
			break
		}

		deleted := 0
		for _, record := range expired {
			if err := s.detections.Delete(ctx, record.ID); err != nil {
				log.Printf("[Retention] deleting %s failed: %v", record.ID, err)
				continue
			}
			deleted++
		}
		total += deleted

		// A batch that made no progress would be re-listed forever
		if deleted == 0 || len(expired) < sweepBatchSize {
			break
		}
	}

	if total > 0 {
		log.Printf("[Retention] removed %d expired records", total)
	}
}
