package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"gorm.io/gorm"
)

// ProcurementService 采购订单与物料需求计划。
// 订单状态变更会在同一事务内镜像到关联的需求计划，两边永远一致。
type ProcurementService struct {
	poRepo       *repository.PORepository
	mrRepo       *repository.RequirementRepository
	materialRepo *repository.MaterialRepository
	supplierRepo *repository.SupplierRepository
	logRepo      *repository.ActivityLogRepository
	stockSvc     *StockService
	db           *gorm.DB
}

func NewProcurementService(
	poRepo *repository.PORepository,
	mrRepo *repository.RequirementRepository,
	materialRepo *repository.MaterialRepository,
	supplierRepo *repository.SupplierRepository,
	logRepo *repository.ActivityLogRepository,
	stockSvc *StockService,
	db *gorm.DB,
) *ProcurementService {
	return &ProcurementService{
		poRepo:       poRepo,
		mrRepo:       mrRepo,
		materialRepo: materialRepo,
		supplierRepo: supplierRepo,
		logRepo:      logRepo,
		stockSvc:     stockSvc,
		db:           db,
	}
}

// ---- 物料需求计划 ----

// ListRequirements 需求计划列表
func (s *ProcurementService) ListRequirements(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequirement, int64, error) {
	return s.mrRepo.FindAll(ctx, page, pageSize, filters)
}

// GetRequirement 需求计划详情
func (s *ProcurementService) GetRequirement(ctx context.Context, id string) (*entity.MaterialRequirement, error) {
	return s.mrRepo.FindByID(ctx, id)
}

// CreateRequirementRequest 创建需求计划请求
type CreateRequirementRequest struct {
	MaterialID   string     `json:"material_id" binding:"required"`
	ProjectID    string     `json:"project_id" binding:"required"`
	PhaseID      *string    `json:"phase_id"`
	Quantity     float64    `json:"quantity" binding:"required"`
	UnitCost     float64    `json:"unit_cost"`
	RequiredDate *time.Time `json:"required_date"`
	Notes        string     `json:"notes"`
}

// CreateRequirement 创建需求计划（planned状态，等待转采购订单）
func (s *ProcurementService) CreateRequirement(ctx context.Context, userID string, req *CreateRequirementRequest) (*entity.MaterialRequirement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: 需求数量必须大于0", ErrValidation)
	}
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: 预估单价不能为负", ErrValidation)
	}

	material, err := s.materialRepo.FindByID(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}

	code, err := s.mrRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成需求编码失败: %w", err)
	}

	mr := &entity.MaterialRequirement{
		ID:           uuid.New().String()[:32],
		MRCode:       code,
		MaterialID:   req.MaterialID,
		MaterialCode: material.Code,
		MaterialName: material.Name,
		ProjectID:    req.ProjectID,
		PhaseID:      req.PhaseID,
		Quantity:     req.Quantity,
		Unit:         material.Unit,
		UnitCost:     req.UnitCost,
		TotalCost:    req.Quantity * req.UnitCost,
		RequiredDate: req.RequiredDate,
		Status:       entity.MRStatusPlanned,
		CreatedBy:    userID,
		Notes:        req.Notes,
	}
	if err := s.mrRepo.Create(ctx, mr); err != nil {
		return nil, err
	}
	return mr, nil
}

// UpdateRequirementRequest 更新需求计划请求
type UpdateRequirementRequest struct {
	Quantity     *float64   `json:"quantity"`
	UnitCost     *float64   `json:"unit_cost"`
	RequiredDate *time.Time `json:"required_date"`
	Notes        *string    `json:"notes"`
}

// UpdateRequirement 更新需求计划。只有planned可改，转单后以订单为准。
func (s *ProcurementService) UpdateRequirement(ctx context.Context, id string, req *UpdateRequirementRequest) (*entity.MaterialRequirement, error) {
	mr, err := s.mrRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mr.Status != entity.MRStatusPlanned {
		return nil, fmt.Errorf("%w: 需求计划状态 %s 不允许修改", ErrInvalidTransition, mr.Status)
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: 需求数量必须大于0", ErrValidation)
		}
		mr.Quantity = *req.Quantity
	}
	if req.UnitCost != nil {
		if *req.UnitCost < 0 {
			return nil, fmt.Errorf("%w: 预估单价不能为负", ErrValidation)
		}
		mr.UnitCost = *req.UnitCost
	}
	if req.RequiredDate != nil {
		mr.RequiredDate = req.RequiredDate
	}
	if req.Notes != nil {
		mr.Notes = *req.Notes
	}
	mr.TotalCost = mr.Quantity * mr.UnitCost

	if err := s.mrRepo.Update(ctx, mr); err != nil {
		return nil, err
	}
	return mr, nil
}

// ---- 采购订单 ----

// ListOrders 采购订单列表
func (s *ProcurementService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProcurementOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// GetOrder 采购订单详情
func (s *ProcurementService) GetOrder(ctx context.Context, id string) (*entity.ProcurementOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// CreateOrderRequest 创建采购订单请求
type CreateOrderRequest struct {
	MaterialID    string     `json:"material_id" binding:"required"`
	SupplierID    string     `json:"supplier_id" binding:"required"`
	RequirementID *string    `json:"requirement_id"`
	Quantity      float64    `json:"quantity" binding:"required"`
	UnitCost      float64    `json:"unit_cost" binding:"required"`
	ExpectedDate  *time.Time `json:"expected_date"`
	Priority      string     `json:"priority"`
	Notes         string     `json:"notes"`
}

// CreateOrder 创建采购订单。关联需求计划时在同一事务内把需求置为ordered，
// 非planned的需求不允许重复转单。
func (s *ProcurementService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*entity.ProcurementOrder, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: 采购数量必须大于0", ErrValidation)
	}
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: 采购单价不能为负", ErrValidation)
	}

	material, err := s.materialRepo.FindByID(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	if _, err := s.supplierRepo.FindByID(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	if req.RequirementID != nil {
		mr, err := s.mrRepo.FindByID(ctx, *req.RequirementID)
		if err != nil {
			return nil, err
		}
		if mr.Status != entity.MRStatusPlanned {
			return nil, fmt.Errorf("%w: 需求计划状态 %s 不允许转采购订单", ErrInvalidTransition, mr.Status)
		}
	}

	code, err := s.poRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成采购订单编码失败: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	po := &entity.ProcurementOrder{
		ID:            uuid.New().String()[:32],
		POCode:        code,
		MaterialID:    req.MaterialID,
		MaterialCode:  material.Code,
		MaterialName:  material.Name,
		SupplierID:    req.SupplierID,
		RequirementID: req.RequirementID,
		Quantity:      req.Quantity,
		Unit:          material.Unit,
		UnitCost:      req.UnitCost,
		TotalCost:     req.Quantity * req.UnitCost,
		ExpectedDate:  req.ExpectedDate,
		Priority:      priority,
		Status:        entity.POStatusPending,
		CreatedBy:     userID,
		Notes:         req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		if po.RequirementID != nil {
			if err := s.mrRepo.UpdateStatus(tx, *po.RequirementID, entity.MRStatusOrdered); err != nil {
				return fmt.Errorf("同步需求计划状态失败: %w", err)
			}
		}
		return s.logRepo.CreateTx(tx, &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "order",
			EntityID:   po.ID,
			EntityCode: po.POCode,
			Action:     "create",
			ToStatus:   entity.POStatusPending,
			OperatorID: userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// UpdateOrderRequest 更新采购订单请求
type UpdateOrderRequest struct {
	Quantity     *float64   `json:"quantity"`
	UnitCost     *float64   `json:"unit_cost"`
	ExpectedDate *time.Time `json:"expected_date"`
	Priority     *string    `json:"priority"`
	Notes        *string    `json:"notes"`
}

// UpdateOrder 更新采购订单。只有pending可改，改数量或单价时重算总价。
func (s *ProcurementService) UpdateOrder(ctx context.Context, id string, req *UpdateOrderRequest) (*entity.ProcurementOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusPending {
		return nil, fmt.Errorf("%w: 采购订单状态 %s 不允许修改", ErrInvalidTransition, po.Status)
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: 采购数量必须大于0", ErrValidation)
		}
		po.Quantity = *req.Quantity
	}
	if req.UnitCost != nil {
		if *req.UnitCost < 0 {
			return nil, fmt.Errorf("%w: 采购单价不能为负", ErrValidation)
		}
		po.UnitCost = *req.UnitCost
	}
	if req.ExpectedDate != nil {
		po.ExpectedDate = req.ExpectedDate
	}
	if req.Priority != nil {
		po.Priority = *req.Priority
	}
	if req.Notes != nil {
		po.Notes = *req.Notes
	}
	po.TotalCost = po.Quantity * po.UnitCost

	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// ApproveOrder 审批通过，关联需求同步置approved
func (s *ProcurementService) ApproveOrder(ctx context.Context, id, approverID string) (*entity.ProcurementOrder, error) {
	return s.transitionOrder(ctx, id, entity.POActionApprove, approverID, "", entity.MRStatusApproved)
}

// RejectOrder 驳回，关联需求退回planned以便重新转单
func (s *ProcurementService) RejectOrder(ctx context.Context, id, approverID, reason string) (*entity.ProcurementOrder, error) {
	return s.transitionOrder(ctx, id, entity.POActionReject, approverID, reason, entity.MRStatusPlanned)
}

// transitionOrder 审批类迁移：订单状态、需求镜像、操作日志同事务提交。
// 状态写入带前置状态条件，并发审批后到的一方整体回滚。
func (s *ProcurementService) transitionOrder(ctx context.Context, id, action, operatorID, reason, mirrorStatus string) (*entity.ProcurementOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := entity.PONextStatus(po.Status, action)
	if !ok {
		return nil, fmt.Errorf("%w: 采购订单状态 %s 不允许%s", ErrInvalidTransition, po.Status, action)
	}

	from := po.Status
	now := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"status":      next,
			"approved_by": operatorID,
			"approved_at": now,
		}
		if reason != "" {
			fields["reject_reason"] = reason
		}
		hit, err := s.poRepo.UpdateStatusGuarded(tx, po.ID, from, fields)
		if err != nil {
			return err
		}
		if !hit {
			return fmt.Errorf("%w: 采购订单状态已变更，%s中止", ErrInvalidTransition, action)
		}
		if po.RequirementID != nil {
			if err := s.mrRepo.UpdateStatus(tx, *po.RequirementID, mirrorStatus); err != nil {
				return fmt.Errorf("同步需求计划状态失败: %w", err)
			}
		}
		return s.logRepo.CreateTx(tx, &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "order",
			EntityID:   po.ID,
			EntityCode: po.POCode,
			Action:     action,
			FromStatus: from,
			ToStatus:   next,
			Content:    reason,
			OperatorID: operatorID,
		})
	})
	if err != nil {
		return nil, err
	}

	po.Status = next
	po.ApprovedBy = &operatorID
	po.ApprovedAt = &now
	if reason != "" {
		po.RejectReason = reason
	}
	return po, nil
}

// ReceiveOrderRequest 收货请求。数量可选，缺省按订购数量收。
type ReceiveOrderRequest struct {
	Quantity *float64 `json:"quantity"`
	UnitCost *float64 `json:"unit_cost"`
	BatchNo  string   `json:"batch_no"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
}

// ReceiveOrder 收货：订单状态迁移、库存入库、需求镜像delivered在同一事务。
// 实收数量允许与订购数量不一致，差异记录在订单和流水上供对账。
func (s *ProcurementService) ReceiveOrder(ctx context.Context, id, userID string, req *ReceiveOrderRequest) (*entity.ProcurementOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := entity.PONextStatus(po.Status, entity.POActionReceive)
	if !ok {
		return nil, fmt.Errorf("%w: 采购订单状态 %s 不允许收货", ErrInvalidTransition, po.Status)
	}

	qty := po.Quantity
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	cost := po.UnitCost
	if req.UnitCost != nil {
		cost = *req.UnitCost
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: 收货数量必须大于0", ErrValidation)
	}
	if cost < 0 {
		return nil, fmt.Errorf("%w: 收货单价不能为负", ErrValidation)
	}

	if err := s.receiveTx(ctx, po, req, userID, next, qty, cost); err != nil {
		return nil, err
	}
	return po, nil
}

// receiveTx 收货事务。状态写入带前置状态条件，两个并发收货只有一个能命中，
// 后到的一方整体回滚，同一张订单不会入两次库。
func (s *ProcurementService) receiveTx(ctx context.Context, po *entity.ProcurementOrder, req *ReceiveOrderRequest, userID, next string, qty, cost float64) error {
	from := po.Status
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hit, err := s.poRepo.UpdateStatusGuarded(tx, po.ID, from, map[string]interface{}{
			"status":        next,
			"received_qty":  qty,
			"received_cost": cost,
			"received_at":   now,
			"received_by":   userID,
		})
		if err != nil {
			return err
		}
		if !hit {
			return fmt.Errorf("%w: 采购订单状态已变更，收货中止", ErrInvalidTransition)
		}

		if _, err := s.stockSvc.ReceiveTx(tx, ReceiveInput{
			MaterialID:    po.MaterialID,
			Quantity:      qty,
			UnitCost:      cost,
			BatchNo:       req.BatchNo,
			Location:      req.Location,
			ReferenceType: entity.MovementRefPO,
			ReferenceID:   po.ID,
			ReferenceCode: po.POCode,
			Notes:         req.Notes,
			ReceivedBy:    userID,
		}); err != nil {
			return err
		}

		if po.RequirementID != nil {
			if err := s.mrRepo.UpdateStatus(tx, *po.RequirementID, entity.MRStatusDelivered); err != nil {
				return fmt.Errorf("同步需求计划状态失败: %w", err)
			}
		}

		return s.logRepo.CreateTx(tx, &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "order",
			EntityID:   po.ID,
			EntityCode: po.POCode,
			Action:     "receive",
			FromStatus: from,
			ToStatus:   next,
			Metadata: entity.JSONB{
				"received_qty":  qty,
				"received_cost": cost,
				"ordered_qty":   po.Quantity,
			},
			OperatorID: userID,
		})
	})
	if err != nil {
		return err
	}

	po.Status = next
	po.ReceivedQty = &qty
	po.ReceivedCost = &cost
	po.ReceivedAt = &now
	po.ReceivedBy = &userID
	return nil
}

// OrderActivity 采购订单操作日志（最近50条）
func (s *ProcurementService) OrderActivity(ctx context.Context, id string) ([]entity.ActivityLog, error) {
	if _, err := s.poRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logRepo.FindByEntity(ctx, "order", id, 50)
}
