package detect

import (
	"time"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

// DefaultClassName is assumed when the model reports no class label
const DefaultClassName = "pothole"

// NormalizeBox converts a center-anchored raw box into a canonical
// top-left-anchored BoundingBox. For any w,h >= 0 the center is
// recoverable exactly as (x + w/2, y + h/2).
func NormalizeBox(raw RawBox) models.BoundingBox {
	class := raw.ClassName
	if class == "" {
		class = DefaultClassName
	}
	return models.BoundingBox{
		X:          raw.CenterX - raw.Width/2,
		Y:          raw.CenterY - raw.Height/2,
		Width:      raw.Width,
		Height:     raw.Height,
		Confidence: raw.Confidence,
		ClassName:  class,
	}
}

// BuildResult aggregates a raw inference report into a DetectionResult.
// elapsed is the wall-clock duration of the inference call, measured by
// the caller around the Detect boundary.
func BuildResult(report *Report, elapsed time.Duration) models.DetectionResult {
	boxes := make([]models.BoundingBox, 0, len(report.Boxes))
	for _, raw := range report.Boxes {
		boxes = append(boxes, NormalizeBox(raw))
	}

	return models.DetectionResult{
		BoundingBoxes: boxes,
		NumDetections: len(boxes),
		ModelVersion:  report.ModelVersion,
		InferenceMs:   elapsed.Milliseconds(),
	}
}
