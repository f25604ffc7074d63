package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAK-124/attendance-backend-go/internal/service"
	"github.com/SAK-124/attendance-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for attendance statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetOverview handles GET /api/v1/attendance/stats/overview
func (h *StatsHandler) GetOverview(c *gin.Context) {
	overview, err := h.statsService.GetRunOverview(c.Query("createdBy"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, overview)
}

// GetVerdictDistribution handles GET /api/v1/attendance/stats/verdicts
func (h *StatsHandler) GetVerdictDistribution(c *gin.Context) {
	distribution, err := h.statsService.GetVerdictDistribution(c.Query("runId"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, distribution)
}

// GetFlagCounts handles GET /api/v1/attendance/stats/flags
func (h *StatsHandler) GetFlagCounts(c *gin.Context) {
	counts, err := h.statsService.GetFlagCounts(c.Query("runId"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, counts)
}

// GetReconnectLeaders handles GET /api/v1/attendance/stats/reconnects
func (h *StatsHandler) GetReconnectLeaders(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	leaders, err := h.statsService.GetReconnectLeaders(c.Query("runId"), c.Query("orderBy"), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  leaders,
		"count": len(leaders),
	})
}
