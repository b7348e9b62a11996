package repository

import (
	"context"
	"errors"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目/阶段/任务仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll 项目列表
func (r *ProjectRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	var items []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if managerID := filters["manager_id"]; managerID != "" {
		query = query.Where("manager_id = ?", managerID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByID 按ID查项目（含阶段与任务）
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	err := r.db.WithContext(ctx).
		Preload("Phases", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Phases.Tasks").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// FindPhaseByID 按ID查阶段
func (r *ProjectRepository) FindPhaseByID(ctx context.Context, id string) (*entity.ProjectPhase, error) {
	var ph entity.ProjectPhase
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ph).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ph, nil
}

// FindPhasesByProject 查项目下全部阶段
func (r *ProjectRepository) FindPhasesByProject(ctx context.Context, projectID string) ([]entity.ProjectPhase, error) {
	var phases []entity.ProjectPhase
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sequence ASC").
		Find(&phases).Error
	return phases, err
}

// CreatePhase 创建阶段
func (r *ProjectRepository) CreatePhase(ctx context.Context, ph *entity.ProjectPhase) error {
	return r.db.WithContext(ctx).Create(ph).Error
}

// UpdatePhase 更新阶段
func (r *ProjectRepository) UpdatePhase(ctx context.Context, ph *entity.ProjectPhase) error {
	return r.db.WithContext(ctx).Save(ph).Error
}

// FindTaskByID 按ID查任务
func (r *ProjectRepository) FindTaskByID(ctx context.Context, id string) (*entity.Task, error) {
	var t entity.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindTasksByPhase 查阶段下全部任务
func (r *ProjectRepository) FindTasksByPhase(ctx context.Context, phaseID string) ([]entity.Task, error) {
	var tasks []entity.Task
	err := r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// CreateTask 创建任务
func (r *ProjectRepository) CreateTask(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// UpdateTask 更新任务
func (r *ProjectRepository) UpdateTask(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}
