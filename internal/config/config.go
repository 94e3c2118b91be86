// Package config loads runtime configuration from the environment,
// with a .env file honored when present.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	Port           string
	DBPath         string
	MigrationsPath string

	// Write-path auth: either list may be empty
	APIKeys   []string
	JWTSecret string

	// Blob storage: a bucket name selects GCS, otherwise images land
	// under BlobDir on local disk
	GCSBucket string
	BlobDir   string

	// Inference service
	InferenceURL        string
	ConfidenceThreshold float64
	MaxUploadSizeMB     int64

	// Reverse geocoding
	GeocodingURL string
	GeocodingKey string

	// Derived-field pipeline toggles
	ScoringEnabled    bool
	ClusteringEnabled bool
	ClusterEps        float64
	ClusterMinPts     int

	// Retention
	RetentionDays      int
	SweepIntervalHours int

	// Event publishing: empty brokers disables Kafka
	KafkaBrokers string
	KafkaTopic   string
}

// Load reads configuration from the environment
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] loaded .env file")
	}

	return &Config{
		Port:           getEnv("PORT", ":8080"),
		DBPath:         getEnv("DB_PATH", "./data/roadsense.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		APIKeys:   splitList(os.Getenv("API_KEYS")),
		JWTSecret: os.Getenv("JWT_SECRET"),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		BlobDir:   getEnv("BLOB_DIR", "./data/uploads"),

		InferenceURL:        getEnv("INFERENCE_URL", "http://localhost:8500"),
		ConfidenceThreshold: getFloat("YOLO_CONFIDENCE_THRESHOLD", 0.35),
		MaxUploadSizeMB:     int64(getInt("MAX_UPLOAD_SIZE_MB", 15)),

		GeocodingURL: os.Getenv("GEOCODING_URL"),
		GeocodingKey: os.Getenv("GEOCODING_API_KEY"),

		ScoringEnabled:    getBool("PRIORITY_SCORING_ENABLED", true),
		ClusteringEnabled: getBool("CLUSTERING_ENABLED", true),
		ClusterEps:        getFloat("CLUSTER_EPS_DEGREES", 0.0005),
		ClusterMinPts:     getInt("CLUSTER_MIN_POINTS", 2),

		RetentionDays:      getInt("DATA_RETENTION_DAYS", 90),
		SweepIntervalHours: getInt("RETENTION_SWEEP_HOURS", 24),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "roadsense.detections"),
	}
}

// MaxUploadSizeBytes returns the upload limit in bytes
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.MaxUploadSizeMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
