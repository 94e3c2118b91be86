package main

import (
	"context"
	"log"
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/api"
	"github.com/roadsense/roadsense-backend-go/internal/cluster"
	"github.com/roadsense/roadsense-backend-go/internal/config"
	"github.com/roadsense/roadsense-backend-go/internal/database"
	"github.com/roadsense/roadsense-backend-go/internal/detect"
	"github.com/roadsense/roadsense-backend-go/internal/events"
	"github.com/roadsense/roadsense-backend-go/internal/geocode"
	"github.com/roadsense/roadsense-backend-go/internal/handler"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/internal/retention"
	"github.com/roadsense/roadsense-backend-go/internal/scoring"
	"github.com/roadsense/roadsense-backend-go/internal/service"
	"github.com/roadsense/roadsense-backend-go/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Open(database.Config{
		Path:           cfg.DBPath,
		MigrationsPath: cfg.MigrationsPath,
	})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	detectionRepo := repository.NewDetectionRepository(db)
	clusterRunRepo := repository.NewClusterRunRepository(db)

	var blobs storage.BlobStore
	if cfg.GCSBucket != "" {
		blobs, err = storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal("Failed to initialize GCS storage: ", err)
		}
		log.Printf("[Server] image storage: gs://%s", cfg.GCSBucket)
	} else {
		blobs, err = storage.NewLocalStore(cfg.BlobDir)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
		log.Printf("[Server] image storage: %s", cfg.BlobDir)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal("Failed to initialize Kafka publisher: ", err)
		}
		defer kafka.Close()
		publisher = kafka
	}

	detector := detect.NewHTTPDetector(cfg.InferenceURL, 30*time.Second)
	geocoder := geocode.NewHTTPGeocoder(cfg.GeocodingURL, cfg.GeocodingKey, 5*time.Second)
	enricher := geocode.NewEnricher(geocoder, cfg.GeocodingURL != "")
	scorer := scoring.NewScorer(cfg.ScoringEnabled)

	detectionService := service.NewDetectionService(
		detectionRepo,
		detector,
		enricher,
		blobs,
		scorer,
		publisher,
		cfg.ConfidenceThreshold,
		cfg.MaxUploadSizeBytes(),
		cfg.RetentionDays,
	)
	analyticsService := service.NewAnalyticsService(detectionRepo)
	engine := cluster.NewEngine(detectionRepo, clusterRunRepo, cfg.ClusteringEnabled, cfg.ClusterEps, cfg.ClusterMinPts)

	if cfg.SweepIntervalHours > 0 {
		sweepCtx, stopSweeper := context.WithCancel(ctx)
		defer stopSweeper()
		sweeper := retention.NewSweeper(detectionRepo, detectionService, time.Duration(cfg.SweepIntervalHours)*time.Hour)
		go sweeper.Start(sweepCtx)
	} else {
		log.Printf("[Server] retention sweep disabled")
	}

	router := api.SetupRouter(cfg, api.Handlers{
		Detections: handler.NewDetectionHandler(detectionService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		Clusters:   handler.NewClusterHandler(engine, clusterRunRepo),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
