package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
)

// SafetyRepository 安全模块仓库（事故/巡检/培训）
type SafetyRepository struct {
	db *gorm.DB
}

func NewSafetyRepository(db *gorm.DB) *SafetyRepository {
	return &SafetyRepository{db: db}
}

// FindIncidents 事故列表
func (r *SafetyRepository) FindIncidents(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SafetyIncident, int64, error) {
	var items []entity.SafetyIncident
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SafetyIncident{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if severity := filters["severity"]; severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("occurred_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindIncidentByID 按ID查事故
func (r *SafetyRepository) FindIncidentByID(ctx context.Context, id string) (*entity.SafetyIncident, error) {
	var in entity.SafetyIncident
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&in).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

// CreateIncident 创建事故记录
func (r *SafetyRepository) CreateIncident(ctx context.Context, in *entity.SafetyIncident) error {
	return r.db.WithContext(ctx).Create(in).Error
}

// UpdateIncident 更新事故记录
func (r *SafetyRepository) UpdateIncident(ctx context.Context, in *entity.SafetyIncident) error {
	return r.db.WithContext(ctx).Save(in).Error
}

// FindInspections 巡检列表
func (r *SafetyRepository) FindInspections(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SafetyInspection, int64, error) {
	var items []entity.SafetyInspection
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SafetyInspection{})
	if result := filters["result"]; result != "" {
		query = query.Where("result = ?", result)
	}
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("inspected_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// CreateInspection 创建巡检记录
func (r *SafetyRepository) CreateInspection(ctx context.Context, in *entity.SafetyInspection) error {
	return r.db.WithContext(ctx).Create(in).Error
}

// FindTrainings 培训列表
func (r *SafetyRepository) FindTrainings(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.TrainingRecord, int64, error) {
	var items []entity.TrainingRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.TrainingRecord{})
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("topic ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("held_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// CreateTraining 创建培训记录
func (r *SafetyRepository) CreateTraining(ctx context.Context, t *entity.TrainingRecord) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GenerateCode 生成安全单据编码 {prefix}-{year}-{4位}
func (r *SafetyRepository) GenerateCode(ctx context.Context, prefix string, model interface{}, column string) (string, error) {
	year := time.Now().Format("2006")
	full := fmt.Sprintf("%s-%s-", prefix, year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(model).
		Select(fmt.Sprintf("COALESCE(MAX(%s), '')", column)).
		Where(column+" LIKE ?", full+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, prefix+"-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("%s-%s-%04d", prefix, year, seq), nil
}
