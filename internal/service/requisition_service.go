package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequisitionService 领料单工作流。
// 状态迁移由entity.ReqNextStatus的迁移表裁决，表外动作一律拒绝。
// 状态落库带前置状态条件，并发下后到的一方按非法迁移处理。
type RequisitionService struct {
	reqRepo      *repository.RequisitionRepository
	materialRepo *repository.MaterialRepository
	logRepo      *repository.ActivityLogRepository
	stockSvc     *StockService
	db           *gorm.DB
	logger       *zap.Logger
}

func NewRequisitionService(
	reqRepo *repository.RequisitionRepository,
	materialRepo *repository.MaterialRepository,
	logRepo *repository.ActivityLogRepository,
	stockSvc *StockService,
	db *gorm.DB,
	logger *zap.Logger,
) *RequisitionService {
	return &RequisitionService{
		reqRepo:      reqRepo,
		materialRepo: materialRepo,
		logRepo:      logRepo,
		stockSvc:     stockSvc,
		db:           db,
		logger:       logger,
	}
}

// List 领料单列表
func (s *RequisitionService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.MaterialRequisition, int64, error) {
	return s.reqRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 领料单详情
func (s *RequisitionService) Get(ctx context.Context, id string) (*entity.MaterialRequisition, error) {
	return s.reqRepo.FindByID(ctx, id)
}

// CreateRequisitionRequest 创建领料单请求
type CreateRequisitionRequest struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	ProjectID  *string `json:"project_id"`
	Purpose    string  `json:"purpose"`
}

// Create 创建领料单。申领数量超出当前可用量只作提示（stockWarning），
// 不拦截创建——审批前库存随时可能变化，硬校验放在发放环节。
func (s *RequisitionService) Create(ctx context.Context, userID string, req *CreateRequisitionRequest) (*entity.MaterialRequisition, bool, error) {
	if req.Quantity <= 0 {
		return nil, false, fmt.Errorf("%w: 申领数量必须大于0", ErrValidation)
	}

	material, err := s.materialRepo.FindByID(ctx, req.MaterialID)
	if err != nil {
		return nil, false, err
	}

	available, err := s.stockSvc.GetAvailable(ctx, req.MaterialID)
	if err != nil {
		return nil, false, err
	}
	stockWarning := req.Quantity > available

	code, err := s.reqRepo.GenerateCode(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("生成领料单编码失败: %w", err)
	}

	requisition := &entity.MaterialRequisition{
		ID:           uuid.New().String()[:32],
		ReqCode:      code,
		MaterialID:   req.MaterialID,
		MaterialCode: material.Code,
		MaterialName: material.Name,
		Quantity:     req.Quantity,
		Unit:         material.Unit,
		Status:       entity.ReqStatusPending,
		ProjectID:    req.ProjectID,
		Purpose:      req.Purpose,
		RequestedBy:  userID,
	}

	if err := s.reqRepo.Create(ctx, requisition); err != nil {
		return nil, false, err
	}

	s.logTransition(ctx, requisition, "create", "", entity.ReqStatusPending, userID, "")

	return requisition, stockWarning, nil
}

// Approve 审批通过
func (s *RequisitionService) Approve(ctx context.Context, id, approverID string) (*entity.MaterialRequisition, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := entity.ReqNextStatus(req.Status, entity.ReqActionApprove)
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态 %s 不允许审批", ErrInvalidTransition, req.Status)
	}

	now := time.Now()
	from := req.Status
	ok, err = s.reqRepo.UpdateStatusGuarded(s.db.WithContext(ctx), req.ID, from, map[string]interface{}{
		"status":      next,
		"approved_by": approverID,
		"approved_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态已变更，审批中止", ErrInvalidTransition)
	}

	req.Status = next
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	s.logTransition(ctx, req, "approve", from, next, approverID, "")
	return req, nil
}

// Reject 驳回（终态）
func (s *RequisitionService) Reject(ctx context.Context, id, approverID, reason string) (*entity.MaterialRequisition, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := entity.ReqNextStatus(req.Status, entity.ReqActionReject)
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态 %s 不允许驳回", ErrInvalidTransition, req.Status)
	}

	now := time.Now()
	from := req.Status
	ok, err = s.reqRepo.UpdateStatusGuarded(s.db.WithContext(ctx), req.ID, from, map[string]interface{}{
		"status":        next,
		"approved_by":   approverID,
		"approved_at":   now,
		"reject_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态已变更，驳回中止", ErrInvalidTransition)
	}

	req.Status = next
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	req.RejectReason = reason
	s.logTransition(ctx, req, "reject", from, next, approverID, reason)
	return req, nil
}

// Cancel 撤销。仅pending可撤销，且仅限申领人本人。
func (s *RequisitionService) Cancel(ctx context.Context, id, userID string) (*entity.MaterialRequisition, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RequestedBy != userID {
		return nil, fmt.Errorf("%w: 只有申领人可以撤销领料单", ErrValidation)
	}

	next, ok := entity.ReqNextStatus(req.Status, entity.ReqActionCancel)
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态 %s 不允许撤销", ErrInvalidTransition, req.Status)
	}

	from := req.Status
	ok, err = s.reqRepo.UpdateStatusGuarded(s.db.WithContext(ctx), req.ID, from, map[string]interface{}{
		"status": next,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态已变更，撤销中止", ErrInvalidTransition)
	}

	req.Status = next
	s.logTransition(ctx, req, "cancel", from, next, userID, "")
	return req, nil
}

// ConfirmDeliveryRequest 发放确认请求
type ConfirmDeliveryRequest struct {
	Signature string `json:"signature" binding:"required"`
	Notes     string `json:"notes"`
}

// ConfirmDelivery 发放确认：状态迁移和库存扣减在同一事务内完成。
// 扣减带余量校验，库存不足时整个事务回滚，领料单保持approved。
func (s *RequisitionService) ConfirmDelivery(ctx context.Context, id, userID string, req *ConfirmDeliveryRequest) (*entity.MaterialRequisition, error) {
	requisition, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := entity.ReqNextStatus(requisition.Status, entity.ReqActionDeliver)
	if !ok {
		return nil, fmt.Errorf("%w: 领料单状态 %s 不允许发放", ErrInvalidTransition, requisition.Status)
	}

	if err := s.deliverTx(ctx, requisition, req, userID, next); err != nil {
		return nil, err
	}
	return requisition, nil
}

// deliverTx 发放事务。状态写入带前置状态条件，两个并发发放只有一个能命中，
// 后到的一方整体回滚，同一张领料单不会扣两次库存。
func (s *RequisitionService) deliverTx(ctx context.Context, requisition *entity.MaterialRequisition, req *ConfirmDeliveryRequest, userID, next string) error {
	from := requisition.Status
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.reqRepo.UpdateStatusGuarded(tx, requisition.ID, from, map[string]interface{}{
			"status":             next,
			"delivered_at":       now,
			"delivery_signature": req.Signature,
			"delivery_notes":     req.Notes,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: 领料单状态已变更，发放中止", ErrInvalidTransition)
		}

		if err := s.stockSvc.ConsumeTx(tx, ConsumeInput{
			MaterialID:    requisition.MaterialID,
			Quantity:      requisition.Quantity,
			ReferenceType: entity.MovementRefReq,
			ReferenceID:   requisition.ID,
			ReferenceCode: requisition.ReqCode,
			Notes:         req.Notes,
			ConsumedBy:    userID,
		}); err != nil {
			return err
		}

		return s.logRepo.CreateTx(tx, &entity.ActivityLog{
			ID:         uuid.New().String()[:32],
			EntityType: "requisition",
			EntityID:   requisition.ID,
			EntityCode: requisition.ReqCode,
			Action:     "deliver",
			FromStatus: from,
			ToStatus:   next,
			OperatorID: userID,
		})
	})
	if err != nil {
		return err
	}

	requisition.Status = next
	requisition.DeliveredAt = &now
	requisition.DeliverySignature = req.Signature
	requisition.DeliveryNotes = req.Notes
	return nil
}

// Activity 领料单操作日志（最近50条）
func (s *RequisitionService) Activity(ctx context.Context, id string) ([]entity.ActivityLog, error) {
	if _, err := s.reqRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logRepo.FindByEntity(ctx, "requisition", id, 50)
}

// logTransition 写操作日志。日志失败不影响已完成的业务写入，但必须留痕。
func (s *RequisitionService) logTransition(ctx context.Context, req *entity.MaterialRequisition, action, from, to, operatorID, content string) {
	err := s.logRepo.Create(ctx, &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: "requisition",
		EntityID:   req.ID,
		EntityCode: req.ReqCode,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Content:    content,
		OperatorID: operatorID,
	})
	if err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("entity_type", "requisition"),
			zap.String("entity_id", req.ID),
			zap.String("action", action),
			zap.Error(err))
	}
}
