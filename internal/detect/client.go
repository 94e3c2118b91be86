// Package detect wraps the external pothole-inference capability and
// normalizes its raw output into canonical bounding boxes.
package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable is returned when no model is loaded behind the
// inference endpoint or the endpoint is not configured.
var ErrUnavailable = errors.New("inference model unavailable")

// ErrInference is returned on decode or processing failures inside the
// inference service.
var ErrInference = errors.New("inference error")

// RawBox is a center-anchored detection as reported by the model
type RawBox struct {
	CenterX    float64 `json:"cx"`
	CenterY    float64 `json:"cy"`
	Width      float64 `json:"w"`
	Height     float64 `json:"h"`
	Confidence float64 `json:"confidence"`
	ClassName  string  `json:"class_name"`
}

// Report is the raw inference output before normalization
type Report struct {
	Boxes        []RawBox `json:"boxes"`
	ModelVersion string   `json:"model_version"`
}

// Detector is the inference capability the pipeline consumes
type Detector interface {
	Detect(ctx context.Context, image []byte, confidenceThreshold float64) (*Report, error)
}

// HTTPDetector calls a YOLO inference sidecar over HTTP
type HTTPDetector struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDetector creates a detector client with a bounded request timeout
func NewHTTPDetector(endpoint string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type detectRequest struct {
	ImageBase64         string  `json:"image_base64"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// Detect sends the image to the sidecar and returns its raw boxes
func (d *HTTPDetector) Detect(ctx context.Context, image []byte, confidenceThreshold float64) (*Report, error) {
	if d.endpoint == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(detectRequest{
		ImageBase64:         base64.StdEncoding.EncodeToString(image),
		ConfidenceThreshold: confidenceThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrUnavailable
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrInference, resp.StatusCode, msg)
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInference, err)
	}

	if report.ModelVersion == "" {
		report.ModelVersion = "unknown"
	}

	return &report, nil
}
