package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// DashboardHandler 看板
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Overview 看板汇总
// GET /api/v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	stats, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stats)
}
