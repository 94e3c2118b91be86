package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/roadsense-backend-go/internal/cluster"
	"github.com/roadsense/roadsense-backend-go/internal/repository"
	"github.com/roadsense/roadsense-backend-go/pkg/response"
)

// ClusterHandler handles HTTP requests for clustering runs
type ClusterHandler struct {
	engine *cluster.Engine
	runs   *repository.ClusterRunRepository
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(engine *cluster.Engine, runs *repository.ClusterRunRepository) *ClusterHandler {
	return &ClusterHandler{
		engine: engine,
		runs:   runs,
	}
}

// Run handles POST /api/v1/clusters/run
func (h *ClusterHandler) Run(c *gin.Context) {
	run, err := h.engine.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, cluster.ErrRunInProgress) {
			response.Conflict(c, "a clustering run is already in progress")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, run)
}

// ListRuns handles GET /api/v1/clusters/runs
func (h *ClusterHandler) ListRuns(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		response.BadRequest(c, "limit must be a positive number")
		return
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"runs": runs, "count": len(runs)})
}

// GetRun handles GET /api/v1/clusters/runs/:id
func (h *ClusterHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "clustering run not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, run)
}
