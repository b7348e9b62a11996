package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hardhat/sitebase/internal/service"
)

// ProjectHandler 项目/阶段/任务与进度
type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List 项目列表
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := GetFilters(c, "status", "manager_id", "search")

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get 项目详情（含阶段任务树）
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, p)
}

// Create 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, p)
}

// Update 更新项目基本信息
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, p)
}

// CreatePhase 创建阶段
// POST /api/v1/projects/:id/phases
func (h *ProjectHandler) CreatePhase(c *gin.Context) {
	var req service.CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	ph, err := h.svc.CreatePhase(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ph)
}

// CreateTask 在阶段下创建任务
// POST /api/v1/phases/:id/tasks
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	t, err := h.svc.CreateTask(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, t)
}

type updateProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}

// UpdateTaskProgress 更新任务进度并触发逐级汇总
// PUT /api/v1/tasks/:id/progress
func (h *ProjectHandler) UpdateTaskProgress(c *gin.Context) {
	var body updateProgressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	t, err := h.svc.UpdateTaskProgress(c.Request.Context(), c.Param("id"), *body.Progress)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, t)
}
