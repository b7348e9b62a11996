package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// SupplierHandler 供应商
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// List 供应商列表
// GET /api/v1/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "category", "is_active", "search")

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get 供应商详情
// GET /api/v1/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, s)
}

// Create 创建供应商
// POST /api/v1/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, s)
}

// Update 更新供应商
// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, s)
}

type rateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// Rate 评级
// POST /api/v1/suppliers/:id/rate
func (h *SupplierHandler) Rate(c *gin.Context) {
	var body rateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.Rate(c.Request.Context(), c.Param("id"), body.Rating)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, s)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive 启停
// POST /api/v1/suppliers/:id/active
func (h *SupplierHandler) SetActive(c *gin.Context) {
	var body setActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.SetActive(c.Request.Context(), c.Param("id"), *body.Active)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, s)
}
