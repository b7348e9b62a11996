package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRequisitionTest(t *testing.T) (*gorm.DB, *repository.Repositories, *RequisitionService, *StockService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stockSvc := NewStockService(repos.Stock, repos.Material, db)
	svc := NewRequisitionService(repos.Requisition, repos.Material, repos.ActivityLog, stockSvc, db, zap.NewNop())
	return db, repos, svc, stockSvc
}

func TestDeliverStaleStatusRollsBack(t *testing.T) {
	db, repos, svc, stockSvc := setupRequisitionTest(t)
	testutil.SeedMaterial(t, db, "mat-101", "MAT-101", "普通硅酸盐水泥", 0)
	receive(t, db, stockSvc, "mat-101", 100, 400)

	ctx := context.Background()
	req, _, err := svc.Create(ctx, "user-worker", &CreateRequisitionRequest{
		MaterialID: "mat-101", Quantity: 30, Purpose: "三层浇筑",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, "user-manager"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// 拿到approved快照后，另一请求抢先完成发放
	stale, err := repos.Requisition.FindByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	hit, err := repos.Requisition.UpdateStatusGuarded(db, req.ID, entity.ReqStatusApproved, map[string]interface{}{
		"status": entity.ReqStatusDelivered,
	})
	if err != nil || !hit {
		t.Fatalf("Failed to simulate concurrent delivery: hit=%v err=%v", hit, err)
	}

	err = svc.deliverTx(ctx, stale, &ConfirmDeliveryRequest{Signature: "王五"}, "user-warehouse", entity.ReqStatusDelivered)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition for stale delivery, got %v", err)
	}

	// 库存没有被扣第二次，也没有多出出库流水
	available, err := stockSvc.GetAvailable(ctx, "mat-101")
	if err != nil {
		t.Fatalf("GetAvailable failed: %v", err)
	}
	if available != 100 {
		t.Errorf("Expected stock to stay 100, got %v", available)
	}
	var count int64
	db.Model(&entity.StockMovement{}).
		Where("material_id = ? AND movement_type = ?", "mat-101", entity.MovementTypeDelivery).
		Count(&count)
	if count != 0 {
		t.Errorf("Expected no delivery movements, got %d", count)
	}
}

func TestUpdateStatusGuardedMissesOnChangedStatus(t *testing.T) {
	db, repos, svc, stockSvc := setupRequisitionTest(t)
	testutil.SeedMaterial(t, db, "mat-102", "MAT-102", "螺纹钢HRB400", 0)
	receive(t, db, stockSvc, "mat-102", 50, 4200)

	ctx := context.Background()
	req, _, err := svc.Create(ctx, "user-worker", &CreateRequisitionRequest{
		MaterialID: "mat-102", Quantity: 10,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 前置状态不匹配时0行命中，不产生任何写入
	hit, err := repos.Requisition.UpdateStatusGuarded(db, req.ID, entity.ReqStatusApproved, map[string]interface{}{
		"status": entity.ReqStatusDelivered,
	})
	if err != nil {
		t.Fatalf("UpdateStatusGuarded failed: %v", err)
	}
	if hit {
		t.Fatalf("Expected guard miss for wrong prior status")
	}

	got, _ := repos.Requisition.FindByID(ctx, req.ID)
	if got.Status != entity.ReqStatusPending {
		t.Errorf("Expected status to stay pending, got %s", got.Status)
	}
}

func TestApproveWritesActivityLog(t *testing.T) {
	db, _, svc, stockSvc := setupRequisitionTest(t)
	testutil.SeedMaterial(t, db, "mat-103", "MAT-103", "中砂", 0)
	receive(t, db, stockSvc, "mat-103", 40, 120)

	ctx := context.Background()
	req, _, err := svc.Create(ctx, "user-worker", &CreateRequisitionRequest{
		MaterialID: "mat-103", Quantity: 5,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, "user-manager"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	var logs []entity.ActivityLog
	db.Where("entity_type = ? AND entity_id = ?", "requisition", req.ID).
		Order("created_at ASC").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("Expected create+approve logs, got %d", len(logs))
	}
	if logs[1].Action != "approve" || logs[1].ToStatus != entity.ReqStatusApproved {
		t.Errorf("Unexpected approve log: %+v", logs[1])
	}
}
