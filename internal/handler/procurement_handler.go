package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// ProcurementHandler 采购订单与物料需求计划
type ProcurementHandler struct {
	svc       *service.ProcurementService
	dashboard *service.DashboardService
}

func NewProcurementHandler(svc *service.ProcurementService, dashboard *service.DashboardService) *ProcurementHandler {
	return &ProcurementHandler{svc: svc, dashboard: dashboard}
}

// ---- 需求计划 ----

// ListRequirements 需求计划列表
// GET /api/v1/requirements
func (h *ProcurementHandler) ListRequirements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "project_id", "status", "material_id")

	items, total, err := h.svc.ListRequirements(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetRequirement 需求计划详情
// GET /api/v1/requirements/:id
func (h *ProcurementHandler) GetRequirement(c *gin.Context) {
	mr, err := h.svc.GetRequirement(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mr)
}

// CreateRequirement 创建需求计划
// POST /api/v1/requirements
func (h *ProcurementHandler) CreateRequirement(c *gin.Context) {
	var req service.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	mr, err := h.svc.CreateRequirement(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, mr)
}

// UpdateRequirement 更新需求计划
// PUT /api/v1/requirements/:id
func (h *ProcurementHandler) UpdateRequirement(c *gin.Context) {
	var req service.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	mr, err := h.svc.UpdateRequirement(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mr)
}

// ---- 采购订单 ----

// ListOrders 采购订单列表
// GET /api/v1/orders
func (h *ProcurementHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "supplier_id", "status", "material_id", "priority", "search")

	items, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetOrder 采购订单详情
// GET /api/v1/orders/:id
func (h *ProcurementHandler) GetOrder(c *gin.Context) {
	po, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// OrderActivity 采购订单操作日志
// GET /api/v1/orders/:id/activity
func (h *ProcurementHandler) OrderActivity(c *gin.Context) {
	logs, err := h.svc.OrderActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, logs)
}

// CreateOrder 创建采购订单
// POST /api/v1/orders
func (h *ProcurementHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.CreateOrder(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Created(c, po)
}

// UpdateOrder 更新采购订单（仅pending）
// PUT /api/v1/orders/:id
func (h *ProcurementHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.UpdateOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// ApproveOrder 审批通过
// POST /api/v1/orders/:id/approve
func (h *ProcurementHandler) ApproveOrder(c *gin.Context) {
	po, err := h.svc.ApproveOrder(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, po)
}

// RejectOrder 驳回
// POST /api/v1/orders/:id/reject
func (h *ProcurementHandler) RejectOrder(c *gin.Context) {
	var body rejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "驳回原因不能为空")
		return
	}

	po, err := h.svc.RejectOrder(c.Request.Context(), c.Param("id"), GetUserID(c), body.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, po)
}

// ReceiveOrder 收货
// POST /api/v1/orders/:id/receive
func (h *ProcurementHandler) ReceiveOrder(c *gin.Context) {
	var body service.ReceiveOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.ReceiveOrder(c.Request.Context(), c.Param("id"), GetUserID(c), &body)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	Success(c, po)
}
