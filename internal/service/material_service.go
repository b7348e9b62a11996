package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
)

// MaterialService 物料主数据
type MaterialService struct {
	materialRepo *repository.MaterialRepository
}

func NewMaterialService(materialRepo *repository.MaterialRepository) *MaterialService {
	return &MaterialService{materialRepo: materialRepo}
}

// List 物料列表
func (s *MaterialService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Material, int64, error) {
	return s.materialRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 物料详情
func (s *MaterialService) Get(ctx context.Context, id string) (*entity.Material, error) {
	return s.materialRepo.FindByID(ctx, id)
}

var validCategories = map[string]bool{
	entity.MaterialCategoryCement:     true,
	entity.MaterialCategorySteel:      true,
	entity.MaterialCategoryAggregate:  true,
	entity.MaterialCategoryTimber:     true,
	entity.MaterialCategoryElectrical: true,
	entity.MaterialCategoryPlumbing:   true,
	entity.MaterialCategoryOther:      true,
}

// CreateMaterialRequest 创建物料请求
type CreateMaterialRequest struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	Specification string  `json:"specification"`
	Unit          string  `json:"unit"`
	UnitCost      float64 `json:"unit_cost"`
	MinStockLevel float64 `json:"min_stock_level"`
	Notes         string  `json:"notes"`
}

// Create 创建物料
func (s *MaterialService) Create(ctx context.Context, userID string, req *CreateMaterialRequest) (*entity.Material, error) {
	if !validCategories[req.Category] {
		return nil, fmt.Errorf("%w: 无效的物料分类 %s", ErrValidation, req.Category)
	}
	if req.UnitCost < 0 || req.MinStockLevel < 0 {
		return nil, fmt.Errorf("%w: 单价和最低库存线不能为负", ErrValidation)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	m := &entity.Material{
		ID:            uuid.New().String()[:32],
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		Specification: req.Specification,
		Unit:          unit,
		UnitCost:      req.UnitCost,
		MinStockLevel: req.MinStockLevel,
		Status:        entity.MaterialStatusActive,
		CreatedBy:     userID,
		Notes:         req.Notes,
	}
	if err := s.materialRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("创建物料失败: %w", err)
	}
	return m, nil
}

// UpdateMaterialRequest 更新物料请求
type UpdateMaterialRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Specification *string  `json:"specification"`
	Unit          *string  `json:"unit"`
	UnitCost      *float64 `json:"unit_cost"`
	MinStockLevel *float64 `json:"min_stock_level"`
	Notes         *string  `json:"notes"`
}

// Update 更新物料。编码不可改，作为外部引用锚点。
func (s *MaterialService) Update(ctx context.Context, id string, req *UpdateMaterialRequest) (*entity.Material, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Category != nil {
		if !validCategories[*req.Category] {
			return nil, fmt.Errorf("%w: 无效的物料分类 %s", ErrValidation, *req.Category)
		}
		m.Category = *req.Category
	}
	if req.Specification != nil {
		m.Specification = *req.Specification
	}
	if req.Unit != nil {
		m.Unit = *req.Unit
	}
	if req.UnitCost != nil {
		if *req.UnitCost < 0 {
			return nil, fmt.Errorf("%w: 单价不能为负", ErrValidation)
		}
		m.UnitCost = *req.UnitCost
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, fmt.Errorf("%w: 最低库存线不能为负", ErrValidation)
		}
		m.MinStockLevel = *req.MinStockLevel
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}

	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("更新物料失败: %w", err)
	}
	return m, nil
}

// Deactivate 停用物料。被单据或库存引用的物料只能停用不能删除，
// 停用后不再出现在可选列表但历史单据照常展示。
func (s *MaterialService) Deactivate(ctx context.Context, id string) (*entity.Material, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Status = entity.MaterialStatusInactive
	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete 删除物料。被领料单、采购订单或库存引用的物料不可删除，只能停用，
// 保证历史单据上的物料信息可追溯。
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if _, err := s.materialRepo.FindByID(ctx, id); err != nil {
		return err
	}

	refs, err := s.materialRepo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: 物料已被%d条单据或库存引用，只能停用", ErrValidation, refs)
	}
	return s.materialRepo.Delete(ctx, id)
}

// Activate 恢复启用
func (s *MaterialService) Activate(ctx context.Context, id string) (*entity.Material, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Status = entity.MaterialStatusActive
	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
