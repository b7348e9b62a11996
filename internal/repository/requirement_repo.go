package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
)

// RequirementRepository 物料需求计划仓库
type RequirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// FindAll 需求计划列表
func (r *RequirementRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequirement, int64, error) {
	var items []entity.MaterialRequirement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialRequirement{})
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if materialID := filters["material_id"]; materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("required_date ASC NULLS LAST, created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByID 按ID查需求计划
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*entity.MaterialRequirement, error) {
	var mr entity.MaterialRequirement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mr, nil
}

// Create 创建需求计划
func (r *RequirementRepository) Create(ctx context.Context, mr *entity.MaterialRequirement) error {
	return r.db.WithContext(ctx).Create(mr).Error
}

// Update 更新需求计划
func (r *RequirementRepository) Update(ctx context.Context, mr *entity.MaterialRequirement) error {
	return r.db.WithContext(ctx).Save(mr).Error
}

// UpdateStatus 事务内更新需求状态（采购订单状态镜像写）
func (r *RequirementRepository) UpdateStatus(tx *gorm.DB, id, status string) error {
	result := tx.Model(&entity.MaterialRequirement{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateCode 生成需求编码 MR-{year}-{4位}
func (r *RequirementRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("MR-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.MaterialRequirement{}).
		Select("COALESCE(MAX(mr_code), '')").
		Where("mr_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "MR-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("MR-%s-%04d", year, seq), nil
}
