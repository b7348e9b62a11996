package repository

import (
	"context"
	"errors"

	"github.com/hardhat/sitebase/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock 可用库存不足
var ErrInsufficientStock = errors.New("insufficient stock")

// StockRepository 库存台账仓库
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// FindAll 库存列表
func (r *StockRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.StockRecord, int64, error) {
	var items []entity.StockRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockRecord{})
	if materialID := filters["material_id"]; materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}
	if location := filters["location"]; location != "" {
		query = query.Where("location = ?", location)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("material_code ILIKE ? OR material_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByMaterial 按物料查库存记录
func (r *StockRepository) FindByMaterial(ctx context.Context, materialID string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := r.db.WithContext(ctx).Where("material_id = ?", materialID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetAvailable 查询物料当前可用数量，无记录返回0
func (r *StockRepository) GetAvailable(ctx context.Context, materialID string) (float64, error) {
	rec, err := r.FindByMaterial(ctx, materialID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return rec.Quantity, nil
}

// LockByMaterial 行锁读取库存记录（加权平均成本是读改写，收货必须按物料串行）
func (r *StockRepository) LockByMaterial(tx *gorm.DB, materialID string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_id = ?", materialID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ConsumeGuarded 带余量校验的原子扣减：0行受影响即库存不足，不产生任何写入。
// 校验与扣减在同一条UPDATE里完成，并发领料不会把数量扣成负数。
func (r *StockRepository) ConsumeGuarded(tx *gorm.DB, materialID string, quantity float64) error {
	result := tx.Model(&entity.StockRecord{}).
		Where("material_id = ? AND quantity >= ?", materialID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Create 创建库存记录
func (r *StockRepository) Create(tx *gorm.DB, rec *entity.StockRecord) error {
	return tx.Create(rec).Error
}

// Save 保存库存记录
func (r *StockRepository) Save(tx *gorm.DB, rec *entity.StockRecord) error {
	return tx.Save(rec).Error
}

// CreateMovement 写库存流水
func (r *StockRepository) CreateMovement(tx *gorm.DB, m *entity.StockMovement) error {
	return tx.Create(m).Error
}

// ListMovements 库存流水列表
func (r *StockRepository) ListMovements(ctx context.Context, materialID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	var items []entity.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockMovement{})
	if materialID != "" {
		query = query.Where("material_id = ?", materialID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindAlerts 查询低于最低库存线的物料
func (r *StockRepository) FindAlerts(ctx context.Context) ([]entity.StockRecord, error) {
	var items []entity.StockRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN materials ON materials.id = stock_records.material_id").
		Where("stock_records.quantity < materials.min_stock_level").
		Find(&items).Error
	return items, err
}
