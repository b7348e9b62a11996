package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// StockHandler 库存查询（只读，增减只能走采购收货与领料发放）
type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// List 库存列表
// GET /api/v1/stock
func (h *StockHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "search", "location")

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Available 物料可用数量
// GET /api/v1/stock/:materialId/available
func (h *StockHandler) Available(c *gin.Context) {
	qty, err := h.svc.GetAvailable(c.Request.Context(), c.Param("materialId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"material_id": c.Param("materialId"), "available": qty})
}

// Movements 库存流水
// GET /api/v1/stock/:materialId/movements
func (h *StockHandler) Movements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListMovements(c.Request.Context(), c.Param("materialId"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Alerts 低库存预警
// GET /api/v1/stock/alerts
func (h *StockHandler) Alerts(c *gin.Context) {
	items, err := h.svc.GetAlerts(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
