// Package handler wires HTTP requests to the service layer.
package handler

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/roadsense-backend-go/internal/detect"
	"github.com/roadsense/roadsense-backend-go/internal/models"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/internal/service"
	"github.com/roadsense/roadsense-backend-go/pkg/response"
)

// DetectionHandler handles HTTP requests for detection records
type DetectionHandler struct {
	detectionService *service.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detectionService *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{
		detectionService: detectionService,
	}
}

// Create handles POST /api/v1/detections. The request is multipart:
// an image part plus optional lat, lng, alt, device_id and captured_at
// form fields. lat and lng must be given together or not at all.
func (h *DetectionHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot open uploaded image")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "cannot read uploaded image")
		return
	}

	input := service.CreateInput{
		Image:       image,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	if deviceID := c.PostForm("device_id"); deviceID != "" {
		input.DeviceID = &deviceID
	}

	if capturedAt := c.PostForm("captured_at"); capturedAt != "" {
		t, err := time.Parse(time.RFC3339, capturedAt)
		if err != nil {
			response.BadRequest(c, "captured_at must be RFC3339")
			return
		}
		input.CapturedAt = &t
	}

	location, ok := parseLocation(c)
	if !ok {
		return
	}
	input.Location = location

	record, err := h.detectionService.Create(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayloadTooLarge):
			response.TooLarge(c, err.Error())
		case errors.Is(err, service.ErrValidation):
			response.BadRequest(c, err.Error())
		case errors.Is(err, detect.ErrUnavailable):
			response.ServiceUnavailable(c, "inference service unavailable")
		case errors.Is(err, detect.ErrInference):
			response.InternalError(c, "inference failed")
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Created(c, record)
}

// parseLocation reads the lat/lng/alt form fields. It writes the error
// response itself and returns ok=false when the fields are malformed.
func parseLocation(c *gin.Context) (*models.GeoPoint, bool) {
	latStr := c.PostForm("lat")
	lngStr := c.PostForm("lng")

	if latStr == "" && lngStr == "" {
		return nil, true
	}
	if latStr == "" || lngStr == "" {
		response.BadRequest(c, "lat and lng must be provided together")
		return nil, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		response.BadRequest(c, "lat must be a number")
		return nil, false
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		response.BadRequest(c, "lng must be a number")
		return nil, false
	}

	point := &models.GeoPoint{Lat: lat, Lng: lng}
	if altStr := c.PostForm("alt"); altStr != "" {
		alt, err := strconv.ParseFloat(altStr, 64)
		if err != nil {
			response.BadRequest(c, "alt must be a number")
			return nil, false
		}
		point.Alt = &alt
	}
	return point, true
}

// Get handles GET /api/v1/detections/:id
func (h *DetectionHandler) Get(c *gin.Context) {
	record, err := h.detectionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "detection not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, record)
}

// UpdateStatus handles PATCH /api/v1/detections/:id/status
func (h *DetectionHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	record, err := h.detectionService.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			response.NotFound(c, "detection not found")
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, record)
}

// Delete handles DELETE /api/v1/detections/:id
func (h *DetectionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.detectionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "detection not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"id": id, "deleted": true})
}
