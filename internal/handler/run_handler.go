package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SAK-124/attendance-backend-go/internal/models"
	"github.com/SAK-124/attendance-backend-go/internal/service"
	"github.com/SAK-124/attendance-backend-go/pkg/response"
)

// RunHandler handles queries over stored processing runs
type RunHandler struct {
	service *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

// ListRuns handles GET /api/v1/attendance/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	runs, total, err := h.service.ListRuns(filter)
	if err != nil {
		response.InternalError(c, "Failed to list runs")
		return
	}

	// Calculate pagination info
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       runs,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetRun handles GET /api/v1/attendance/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get run")
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}

	response.Success(c, run)
}

// ListVerdicts handles GET /api/v1/attendance/runs/:id/verdicts
func (h *RunHandler) ListVerdicts(c *gin.Context) {
	var filter models.VerdictFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	runID := c.Param("id")
	run, err := h.service.GetRun(runID)
	if err != nil {
		response.InternalError(c, "Failed to get run")
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}

	verdicts, err := h.service.ListVerdicts(runID, filter)
	if err != nil {
		response.InternalError(c, "Failed to list verdicts")
		return
	}

	response.Success(c, gin.H{
		"data":  verdicts,
		"total": len(verdicts),
	})
}

// ListReconnects handles GET /api/v1/attendance/runs/:id/reconnects
func (h *RunHandler) ListReconnects(c *gin.Context) {
	runID := c.Param("id")
	run, err := h.service.GetRun(runID)
	if err != nil {
		response.InternalError(c, "Failed to get run")
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}

	events, err := h.service.ListReconnects(runID)
	if err != nil {
		response.InternalError(c, "Failed to list reconnect events")
		return
	}

	response.Success(c, gin.H{
		"data":  events,
		"total": len(events),
	})
}

// ListMerges handles GET /api/v1/attendance/runs/:id/merges
func (h *RunHandler) ListMerges(c *gin.Context) {
	runID := c.Param("id")
	run, err := h.service.GetRun(runID)
	if err != nil {
		response.InternalError(c, "Failed to get run")
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}

	merges, err := h.service.ListMerges(runID)
	if err != nil {
		response.InternalError(c, "Failed to list alias merges")
		return
	}

	response.Success(c, gin.H{
		"data":  merges,
		"total": len(merges),
	})
}
