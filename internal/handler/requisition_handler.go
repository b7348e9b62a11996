package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// RequisitionHandler 领料单工作流
type RequisitionHandler struct {
	svc       *service.RequisitionService
	dashboard *service.DashboardService
}

func NewRequisitionHandler(svc *service.RequisitionService, dashboard *service.DashboardService) *RequisitionHandler {
	return &RequisitionHandler{svc: svc, dashboard: dashboard}
}

// List 领料单列表
// GET /api/v1/requisitions
func (h *RequisitionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "material_id", "project_id", "requested_by", "search")

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get 领料单详情
// GET /api/v1/requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, req)
}

// Create 创建领料单
// POST /api/v1/requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	var req service.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	requisition, stockWarning, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Created(c, gin.H{"requisition": requisition, "stock_warning": stockWarning})
}

// Activity 领料单操作日志
// GET /api/v1/requisitions/:id/activity
func (h *RequisitionHandler) Activity(c *gin.Context) {
	logs, err := h.svc.Activity(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, logs)
}

// Approve 审批通过
// POST /api/v1/requisitions/:id/approve
func (h *RequisitionHandler) Approve(c *gin.Context) {
	req, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, req)
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject 驳回
// POST /api/v1/requisitions/:id/reject
func (h *RequisitionHandler) Reject(c *gin.Context) {
	var body rejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "驳回原因不能为空")
		return
	}

	req, err := h.svc.Reject(c.Request.Context(), c.Param("id"), GetUserID(c), body.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, req)
}

// Cancel 撤销（仅申领人，仅pending）
// POST /api/v1/requisitions/:id/cancel
func (h *RequisitionHandler) Cancel(c *gin.Context) {
	req, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, req)
}

// Deliver 发放确认
// POST /api/v1/requisitions/:id/deliver
func (h *RequisitionHandler) Deliver(c *gin.Context) {
	var body service.ConfirmDeliveryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	req, err := h.svc.ConfirmDelivery(c.Request.Context(), c.Param("id"), GetUserID(c), &body)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, req)
}
