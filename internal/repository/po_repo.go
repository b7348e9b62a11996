package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
)

// PORepository 采购订单仓库
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindAll 采购订单列表
func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProcurementOrder, int64, error) {
	var items []entity.ProcurementOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProcurementOrder{})
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if materialID := filters["material_id"]; materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("po_code ILIKE ? OR material_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID 按ID查采购订单
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.ProcurementOrder, error) {
	var po entity.ProcurementOrder
	err := r.db.WithContext(ctx).Preload("Supplier").Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create 创建采购订单
func (r *PORepository) Create(ctx context.Context, po *entity.ProcurementOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// Update 更新采购订单
func (r *PORepository) Update(ctx context.Context, po *entity.ProcurementOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// UpdateStatusGuarded 条件状态迁移：仅当行的当前状态仍为from时写入，返回是否命中。
// 并发的审批/收货后到的一方条件不命中，由调用方回滚并按非法迁移处理。
func (r *PORepository) UpdateStatusGuarded(tx *gorm.DB, id, from string, fields map[string]interface{}) (bool, error) {
	result := tx.Model(&entity.ProcurementOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GenerateCode 生成采购订单编码 PO-{year}-{4位}
func (r *PORepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PO-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.ProcurementOrder{}).
		Select("COALESCE(MAX(po_code), '')").
		Where("po_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PO-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("PO-%s-%04d", year, seq), nil
}
