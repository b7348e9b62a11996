package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// SafetyHandler 安全管理
type SafetyHandler struct {
	svc *service.SafetyService
}

func NewSafetyHandler(svc *service.SafetyService) *SafetyHandler {
	return &SafetyHandler{svc: svc}
}

// ListIncidents 事故列表
// GET /api/v1/safety/incidents
func (h *SafetyHandler) ListIncidents(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "severity", "project_id")

	items, total, err := h.svc.ListIncidents(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetIncident 事故详情
// GET /api/v1/safety/incidents/:id
func (h *SafetyHandler) GetIncident(c *gin.Context) {
	incident, err := h.svc.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, incident)
}

// ReportIncident 上报事故
// POST /api/v1/safety/incidents
func (h *SafetyHandler) ReportIncident(c *gin.Context) {
	var req service.ReportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	incident, err := h.svc.ReportIncident(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, incident)
}

// UpdateIncidentStatus 推进事故状态
// PUT /api/v1/safety/incidents/:id/status
func (h *SafetyHandler) UpdateIncidentStatus(c *gin.Context) {
	var req service.UpdateIncidentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	incident, err := h.svc.UpdateIncidentStatus(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, incident)
}

// ListInspections 巡检列表
// GET /api/v1/safety/inspections
func (h *SafetyHandler) ListInspections(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "result", "project_id")

	items, total, err := h.svc.ListInspections(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// CreateInspection 记录巡检
// POST /api/v1/safety/inspections
func (h *SafetyHandler) CreateInspection(c *gin.Context) {
	var req service.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	inspection, err := h.svc.CreateInspection(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, inspection)
}

// ListTrainings 培训列表
// GET /api/v1/safety/trainings
func (h *SafetyHandler) ListTrainings(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "project_id", "search")

	items, total, err := h.svc.ListTrainings(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// CreateTraining 记录培训
// POST /api/v1/safety/trainings
func (h *SafetyHandler) CreateTraining(c *gin.Context) {
	var req service.CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	training, err := h.svc.CreateTraining(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, training)
}
