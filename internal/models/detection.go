package models

import "time"

// GeoPoint represents a WGS84 coordinate captured with a detection
type GeoPoint struct {
	Lat float64  `json:"lat" db:"lat"`
	Lng float64  `json:"lng" db:"lng"`
	Alt *float64 `json:"alt,omitempty" db:"alt"`
}

// Valid reports whether the point lies within WGS84 bounds
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// BoundingBox is a top-left-anchored detection box in source-image pixels
type BoundingBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	ClassName  string  `json:"class_name"`
}

// DetectionResult is the model output attached to a record
type DetectionResult struct {
	BoundingBoxes []BoundingBox `json:"boundingBoxes"`
	NumDetections int           `json:"numDetections"`
	ModelVersion  string        `json:"modelVersion"`
	InferenceMs   int64         `json:"inferenceMs"`
}

// MaxConfidence returns the highest box confidence, 0 when there are no boxes
func (r DetectionResult) MaxConfidence() float64 {
	max := 0.0
	for _, b := range r.BoundingBoxes {
		if b.Confidence > max {
			max = b.Confidence
		}
	}
	return max
}

// DetectionMetadata carries client-supplied capture context
type DetectionMetadata struct {
	DeviceID   *string    `json:"deviceId,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
	Location   *GeoPoint  `json:"location,omitempty"`
}

// Severity tiers
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Record statuses
const (
	StatusReported  = "reported"
	StatusVerified  = "verified"
	StatusScheduled = "scheduled"
	StatusRepaired  = "repaired"
)

// Road types
const (
	RoadTypeResidential = "residential"
	RoadTypeArterial    = "arterial"
	RoadTypeHighway     = "highway"
)

// Repair urgency tiers
const (
	UrgencyRoutine   = "routine"
	UrgencyUrgent    = "urgent"
	UrgencyEmergency = "emergency"
)

// IsValidStatus reports whether s is one of the four known record statuses.
// Transitions are deliberately permissive (any status may be set from any
// other); this is the single place a guarded transition table would go.
func IsValidStatus(s string) bool {
	switch s {
	case StatusReported, StatusVerified, StatusScheduled, StatusRepaired:
		return true
	}
	return false
}

// DetectionRecord is the central entity: one uploaded image, its model
// output, and the derived maintenance fields
type DetectionRecord struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	Metadata    DetectionMetadata `json:"metadata"`
	StoragePath string            `json:"storagePath"`
	Detection   DetectionResult   `json:"detection"`

	// Derived at creation (severity, score, geocode) or by the
	// clustering job (cluster_id only)
	Severity      string  `json:"severity"`
	PriorityScore int     `json:"priority_score"`
	Area          *string `json:"area"`
	StreetName    *string `json:"street_name"`
	RoadType      string  `json:"road_type"`
	RepairUrgency string  `json:"repair_urgency"`
	ClusterID     *int64  `json:"cluster_id"`
	Status        string  `json:"status"`
}

// IsOpen reports whether the record still represents outstanding work
func (r *DetectionRecord) IsOpen() bool {
	return r.Status != StatusRepaired
}

// HasLocation reports whether a valid capture coordinate is present
func (r *DetectionRecord) HasLocation() bool {
	return r.Metadata.Location != nil && r.Metadata.Location.Valid()
}

// AgeDays returns the whole days elapsed since creation, never negative
func (r *DetectionRecord) AgeDays(now time.Time) int {
	d := int(now.Sub(r.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
