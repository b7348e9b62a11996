package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"gorm.io/gorm"
)

// StockService 库存台账服务。
// 入库只能由采购收货触发，出库只能由领料发放触发，其余模块一律只读。
type StockService struct {
	stockRepo    *repository.StockRepository
	materialRepo *repository.MaterialRepository
	db           *gorm.DB
}

func NewStockService(stockRepo *repository.StockRepository, materialRepo *repository.MaterialRepository, db *gorm.DB) *StockService {
	return &StockService{stockRepo: stockRepo, materialRepo: materialRepo, db: db}
}

// List 库存列表
func (s *StockService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.StockRecord, int64, error) {
	return s.stockRepo.FindAll(ctx, page, pageSize, filters)
}

// GetAvailable 物料当前可用数量，无库存记录返回0
func (s *StockService) GetAvailable(ctx context.Context, materialID string) (float64, error) {
	return s.stockRepo.GetAvailable(ctx, materialID)
}

// ListMovements 库存流水
func (s *StockService) ListMovements(ctx context.Context, materialID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	return s.stockRepo.ListMovements(ctx, materialID, page, pageSize)
}

// GetAlerts 低于最低库存线的物料
func (s *StockService) GetAlerts(ctx context.Context) ([]entity.StockRecord, error) {
	return s.stockRepo.FindAlerts(ctx)
}

// ReceiveInput 入库参数
type ReceiveInput struct {
	MaterialID    string
	Quantity      float64
	UnitCost      float64
	BatchNo       string
	Location      string
	ReferenceType string
	ReferenceID   string
	ReferenceCode string
	Notes         string
	ReceivedBy    string
}

// ReceiveTx 事务内入库：首次收货建台账，再次收货累加数量并重算移动加权平均成本。
// 台账行加行锁，同一物料的并发收货串行执行。
func (s *StockService) ReceiveTx(tx *gorm.DB, in ReceiveInput) (*entity.StockRecord, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: 入库数量必须大于0", ErrValidation)
	}
	if in.UnitCost < 0 {
		return nil, fmt.Errorf("%w: 入库单价不能为负", ErrValidation)
	}

	now := time.Now()
	rec, err := s.stockRepo.LockByMaterial(tx, in.MaterialID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		material, merr := s.materialRepo.FindByID(tx.Statement.Context, in.MaterialID)
		if merr != nil {
			return nil, merr
		}
		rec = &entity.StockRecord{
			ID:           uuid.New().String()[:32],
			MaterialID:   in.MaterialID,
			MaterialCode: material.Code,
			MaterialName: material.Name,
			Quantity:     in.Quantity,
			AvgUnitCost:  in.UnitCost,
			Unit:         material.Unit,
			Location:     in.Location,
			BatchNo:      in.BatchNo,
			LastReceived: &now,
			ReceivedBy:   in.ReceivedBy,
		}
		if err := s.stockRepo.Create(tx, rec); err != nil {
			return nil, fmt.Errorf("创建库存台账失败: %w", err)
		}
	} else {
		oldQty := rec.Quantity
		rec.AvgUnitCost = (oldQty*rec.AvgUnitCost + in.Quantity*in.UnitCost) / (oldQty + in.Quantity)
		rec.Quantity = oldQty + in.Quantity
		rec.Location = in.Location
		rec.BatchNo = in.BatchNo
		rec.LastReceived = &now
		rec.ReceivedBy = in.ReceivedBy
		if err := s.stockRepo.Save(tx, rec); err != nil {
			return nil, fmt.Errorf("更新库存台账失败: %w", err)
		}
	}

	movement := &entity.StockMovement{
		ID:            uuid.New().String()[:32],
		MaterialID:    in.MaterialID,
		MaterialCode:  rec.MaterialCode,
		MaterialName:  rec.MaterialName,
		MovementType:  entity.MovementTypeReceipt,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		BatchNo:       in.BatchNo,
		Location:      in.Location,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		ReferenceCode: in.ReferenceCode,
		Notes:         in.Notes,
		CreatedBy:     in.ReceivedBy,
	}
	if err := s.stockRepo.CreateMovement(tx, movement); err != nil {
		return nil, fmt.Errorf("写库存流水失败: %w", err)
	}
	return rec, nil
}

// ConsumeInput 出库参数
type ConsumeInput struct {
	MaterialID    string
	Quantity      float64
	ReferenceType string
	ReferenceID   string
	ReferenceCode string
	Notes         string
	ConsumedBy    string
}

// ConsumeTx 事务内出库。校验与扣减在同一条UPDATE完成，余量不足返回
// repository.ErrInsufficientStock且不写任何行，由调用方回滚整个事务。
func (s *StockService) ConsumeTx(tx *gorm.DB, in ConsumeInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: 出库数量必须大于0", ErrValidation)
	}

	if err := s.stockRepo.ConsumeGuarded(tx, in.MaterialID, in.Quantity); err != nil {
		return err
	}

	rec, err := s.stockRepo.LockByMaterial(tx, in.MaterialID)
	if err != nil {
		return err
	}

	movement := &entity.StockMovement{
		ID:            uuid.New().String()[:32],
		MaterialID:    in.MaterialID,
		MaterialCode:  rec.MaterialCode,
		MaterialName:  rec.MaterialName,
		MovementType:  entity.MovementTypeDelivery,
		Quantity:      -in.Quantity,
		UnitCost:      rec.AvgUnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		ReferenceCode: in.ReferenceCode,
		Notes:         in.Notes,
		CreatedBy:     in.ConsumedBy,
	}
	if err := s.stockRepo.CreateMovement(tx, movement); err != nil {
		return fmt.Errorf("写库存流水失败: %w", err)
	}
	return nil
}
