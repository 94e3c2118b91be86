package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/roadsense-backend-go/internal/analytics"
	"github.com/roadsense/roadsense-backend-go/internal/service"
	"github.com/roadsense/roadsense-backend-go/pkg/response"
)

// AnalyticsHandler handles HTTP requests for the analytics views
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Queue handles GET /api/v1/analytics/queue
func (h *AnalyticsHandler) Queue(c *gin.Context) {
	status := c.Query("status")

	limitStr := c.DefaultQuery("limit", strconv.Itoa(analytics.DefaultQueueLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.BadRequest(c, "limit must be a number")
		return
	}

	items, err := h.analyticsService.Queue(c.Request.Context(), status, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"items": items, "count": len(items)})
}

// Areas handles GET /api/v1/analytics/areas
func (h *AnalyticsHandler) Areas(c *gin.Context) {
	areas, err := h.analyticsService.Areas(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"areas": areas, "count": len(areas)})
}

// Summary handles GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	daysStr := c.DefaultQuery("days", "30")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		response.BadRequest(c, "days must be a positive number")
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), days)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, summary)
}
