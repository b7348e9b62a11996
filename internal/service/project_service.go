package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"go.uber.org/zap"
)

// ProjectService 项目/阶段/任务与进度汇总。
// 任务进度更新后沿 任务→阶段→项目 逐级重算，每级算完即落库：
// 阶段已写、项目写失败时返回ErrPartialCommit，留给人工对账而不是回滚已完成的一级。
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

func NewProjectService(projectRepo *repository.ProjectRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, logger: logger}
}

// List 项目列表
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	return s.projectRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 项目详情（含阶段与任务树）
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Code        string     `json:"code" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Client      string     `json:"client"`
	Location    string     `json:"location"`
	Budget      *float64   `json:"budget"`
	ManagerID   string     `json:"manager_id" binding:"required"`
	StartDate   *time.Time `json:"start_date"`
	PlannedEnd  *time.Time `json:"planned_end"`
	Description string     `json:"description"`
}

// Create 创建项目
func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	if req.Budget != nil && *req.Budget < 0 {
		return nil, fmt.Errorf("%w: 项目预算不能为负", ErrValidation)
	}

	p := &entity.Project{
		ID:          uuid.New().String()[:32],
		Code:        req.Code,
		Name:        req.Name,
		Client:      req.Client,
		Location:    req.Location,
		Status:      entity.ProgressStatusPending,
		Budget:      req.Budget,
		ManagerID:   req.ManagerID,
		StartDate:   req.StartDate,
		PlannedEnd:  req.PlannedEnd,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建项目失败: %w", err)
	}
	return p, nil
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Client      *string    `json:"client"`
	Location    *string    `json:"location"`
	Budget      *float64   `json:"budget"`
	ManagerID   *string    `json:"manager_id"`
	StartDate   *time.Time `json:"start_date"`
	PlannedEnd  *time.Time `json:"planned_end"`
	Description *string    `json:"description"`
}

// Update 更新项目基本信息（进度和状态只由汇总链改）
func (s *ProjectService) Update(ctx context.Context, id string, req *UpdateProjectRequest) (*entity.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Client != nil {
		p.Client = *req.Client
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return nil, fmt.Errorf("%w: 项目预算不能为负", ErrValidation)
		}
		p.Budget = req.Budget
	}
	if req.ManagerID != nil {
		p.ManagerID = *req.ManagerID
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.PlannedEnd != nil {
		p.PlannedEnd = req.PlannedEnd
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新项目失败: %w", err)
	}
	return p, nil
}

// CreatePhaseRequest 创建阶段请求
type CreatePhaseRequest struct {
	Name         string     `json:"name" binding:"required"`
	Sequence     int        `json:"sequence"`
	Weight       *float64   `json:"weight"`
	PlannedStart *time.Time `json:"planned_start"`
	PlannedEnd   *time.Time `json:"planned_end"`
}

// CreatePhase 创建阶段并重算项目进度（新阶段进度0会拉低项目进度）
func (s *ProjectService) CreatePhase(ctx context.Context, projectID string, req *CreatePhaseRequest) (*entity.ProjectPhase, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if req.Weight != nil && *req.Weight < 0 {
		return nil, fmt.Errorf("%w: 阶段权重不能为负", ErrValidation)
	}

	ph := &entity.ProjectPhase{
		ID:           uuid.New().String()[:32],
		ProjectID:    projectID,
		Name:         req.Name,
		Sequence:     req.Sequence,
		Status:       entity.ProgressStatusPending,
		Weight:       req.Weight,
		PlannedStart: req.PlannedStart,
		PlannedEnd:   req.PlannedEnd,
	}
	if err := s.projectRepo.CreatePhase(ctx, ph); err != nil {
		return nil, fmt.Errorf("创建阶段失败: %w", err)
	}

	if err := s.recalcProject(ctx, projectID); err != nil {
		return ph, fmt.Errorf("%w: 项目进度重算失败: %v", ErrPartialCommit, err)
	}
	return ph, nil
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Name        string     `json:"name" binding:"required"`
	Weight      *float64   `json:"weight"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	Description string     `json:"description"`
}

// CreateTask 在阶段下创建任务并触发汇总链
func (s *ProjectService) CreateTask(ctx context.Context, phaseID, userID string, req *CreateTaskRequest) (*entity.Task, error) {
	phase, err := s.projectRepo.FindPhaseByID(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	if req.Weight != nil && *req.Weight < 0 {
		return nil, fmt.Errorf("%w: 任务权重不能为负", ErrValidation)
	}

	t := &entity.Task{
		ID:          uuid.New().String()[:32],
		ProjectID:   phase.ProjectID,
		PhaseID:     phaseID,
		Name:        req.Name,
		Status:      entity.ProgressStatusPending,
		Weight:      req.Weight,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.projectRepo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}

	if err := s.recalcChain(ctx, phase); err != nil {
		return t, err
	}
	return t, nil
}

// UpdateTaskProgress 更新任务进度并沿汇总链逐级重算。
// 进度限定[0,100]，达到100记完成时间。
func (s *ProjectService) UpdateTaskProgress(ctx context.Context, taskID string, progress float64) (*entity.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: 任务进度必须在0到100之间", ErrValidation)
	}

	t, err := s.projectRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	t.Progress = progress
	t.Status = ProgressStatus(progress)
	if progress >= 100 {
		now := time.Now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	if err := s.projectRepo.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("更新任务失败: %w", err)
	}

	phase, err := s.projectRepo.FindPhaseByID(ctx, t.PhaseID)
	if err != nil {
		return t, fmt.Errorf("%w: 任务已更新但阶段读取失败: %v", ErrPartialCommit, err)
	}
	if err := s.recalcChain(ctx, phase); err != nil {
		return t, err
	}
	return t, nil
}

// recalcChain 阶段级→项目级重算，逐级落库。阶段已写成功而项目写失败时
// 返回ErrPartialCommit并记日志，调用方把差异暴露给用户。
func (s *ProjectService) recalcChain(ctx context.Context, phase *entity.ProjectPhase) error {
	tasks, err := s.projectRepo.FindTasksByPhase(ctx, phase.ID)
	if err != nil {
		return err
	}

	items := make([]ProgressItem, len(tasks))
	for i, t := range tasks {
		items[i] = ProgressItem{Progress: t.Progress, Weight: t.Weight}
	}
	phase.Progress = WeightedProgress(items)
	phase.Status = ProgressStatus(phase.Progress)
	if err := s.projectRepo.UpdatePhase(ctx, phase); err != nil {
		return fmt.Errorf("更新阶段进度失败: %w", err)
	}

	if err := s.recalcProject(ctx, phase.ProjectID); err != nil {
		s.logger.Error("project progress rollup failed after phase update",
			zap.String("project_id", phase.ProjectID),
			zap.String("phase_id", phase.ID),
			zap.Error(err))
		return fmt.Errorf("%w: 阶段进度已更新但项目进度重算失败: %v", ErrPartialCommit, err)
	}
	return nil
}

func (s *ProjectService) recalcProject(ctx context.Context, projectID string) error {
	phases, err := s.projectRepo.FindPhasesByProject(ctx, projectID)
	if err != nil {
		return err
	}

	items := make([]ProgressItem, len(phases))
	for i, ph := range phases {
		items[i] = ProgressItem{Progress: ph.Progress, Weight: ph.Weight}
	}
	progress := WeightedProgress(items)

	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	p.Progress = progress
	p.Status = ProgressStatus(progress)
	if p.Status == entity.ProgressStatusCompleted && p.ActualEnd == nil {
		now := time.Now()
		p.ActualEnd = &now
	}
	return s.projectRepo.Update(ctx, p)
}
