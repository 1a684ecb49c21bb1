package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/service"
)

// DashboardHandler serves the management dashboard aggregates.
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetStats
// GET /api/v1/procurement/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, stats)
}
