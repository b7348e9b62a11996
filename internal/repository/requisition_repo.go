package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
)

// RequisitionRepository 领料单仓库
type RequisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

// FindAll 领料单列表
func (r *RequisitionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequisition, int64, error) {
	var items []entity.MaterialRequisition
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MaterialRequisition{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if materialID := filters["material_id"]; materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}
	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if requestedBy := filters["requested_by"]; requestedBy != "" {
		query = query.Where("requested_by = ?", requestedBy)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("req_code ILIKE ? OR material_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByID 按ID查领料单
func (r *RequisitionRepository) FindByID(ctx context.Context, id string) (*entity.MaterialRequisition, error) {
	var req entity.MaterialRequisition
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create 创建领料单
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.MaterialRequisition) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// UpdateStatusGuarded 条件状态迁移：仅当行的当前状态仍为from时写入，返回是否命中。
// 迁移校验读到的状态与落库之间可能被并发请求改掉，状态写入必须带前置状态条件。
func (r *RequisitionRepository) UpdateStatusGuarded(tx *gorm.DB, id, from string, fields map[string]interface{}) (bool, error) {
	result := tx.Model(&entity.MaterialRequisition{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GenerateCode 生成领料单编码 REQ-{year}-{4位}
func (r *RequisitionRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("REQ-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.MaterialRequisition{}).
		Select("COALESCE(MAX(req_code), '')").
		Where("req_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "REQ-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("REQ-%s-%04d", year, seq), nil
}
