package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/testutil"
	"gorm.io/gorm"
)

func setupProcurementTest(t *testing.T) (*gorm.DB, *repository.Repositories, *ProcurementService, *StockService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stockSvc := NewStockService(repos.Stock, repos.Material, db)
	svc := NewProcurementService(repos.PO, repos.Requirement, repos.Material, repos.Supplier, repos.ActivityLog, stockSvc, db)
	return db, repos, svc, stockSvc
}

func TestReceiveStaleStatusRollsBack(t *testing.T) {
	db, repos, svc, stockSvc := setupProcurementTest(t)
	testutil.SeedMaterial(t, db, "mat-201", "MAT-201", "普通硅酸盐水泥", 0)
	testutil.SeedSupplier(t, db, "sup-201", "SUP-0001", "华新建材")

	ctx := context.Background()
	po, err := svc.CreateOrder(ctx, "user-proc", &CreateOrderRequest{
		MaterialID: "mat-201", SupplierID: "sup-201", Quantity: 200, UnitCost: 405,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := svc.ApproveOrder(ctx, po.ID, "user-manager"); err != nil {
		t.Fatalf("ApproveOrder failed: %v", err)
	}

	// 拿到approved快照后，另一请求抢先完成收货
	stale, err := repos.PO.FindByID(ctx, po.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	hit, err := repos.PO.UpdateStatusGuarded(db, po.ID, entity.POStatusApproved, map[string]interface{}{
		"status": entity.POStatusReceived,
	})
	if err != nil || !hit {
		t.Fatalf("Failed to simulate concurrent receipt: hit=%v err=%v", hit, err)
	}

	err = svc.receiveTx(ctx, stale, &ReceiveOrderRequest{}, "user-warehouse", entity.POStatusReceived, 200, 405)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition for stale receipt, got %v", err)
	}

	// 库存没有被入第二次
	available, err := stockSvc.GetAvailable(ctx, "mat-201")
	if err != nil {
		t.Fatalf("GetAvailable failed: %v", err)
	}
	if available != 0 {
		t.Errorf("Expected no stock posted, got %v", available)
	}
	var count int64
	db.Model(&entity.StockMovement{}).Where("material_id = ?", "mat-201").Count(&count)
	if count != 0 {
		t.Errorf("Expected no movements, got %d", count)
	}
}

func TestApproveStaleStatusRollsBackMirror(t *testing.T) {
	db, repos, svc, _ := setupProcurementTest(t)
	testutil.SeedMaterial(t, db, "mat-202", "MAT-202", "螺纹钢HRB400", 0)
	testutil.SeedSupplier(t, db, "sup-202", "SUP-0002", "宝武钢贸")

	ctx := context.Background()
	mr, err := svc.CreateRequirement(ctx, "user-proc", &CreateRequirementRequest{
		MaterialID: "mat-202", ProjectID: "prj-202", Quantity: 50, UnitCost: 4200,
	})
	if err != nil {
		t.Fatalf("CreateRequirement failed: %v", err)
	}
	po, err := svc.CreateOrder(ctx, "user-proc", &CreateOrderRequest{
		MaterialID: "mat-202", SupplierID: "sup-202", RequirementID: &mr.ID,
		Quantity: 50, UnitCost: 4200,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 另一审批人抢先驳回
	hit, err := repos.PO.UpdateStatusGuarded(db, po.ID, entity.POStatusPending, map[string]interface{}{
		"status": entity.POStatusRejected,
	})
	if err != nil || !hit {
		t.Fatalf("Failed to simulate concurrent rejection: hit=%v err=%v", hit, err)
	}

	if _, err := svc.ApproveOrder(ctx, po.ID, "user-manager"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition for stale approval, got %v", err)
	}

	// 需求镜像没有被错误推进
	got, _ := repos.Requirement.FindByID(ctx, mr.ID)
	if got.Status != entity.MRStatusOrdered {
		t.Errorf("Expected requirement to stay ordered, got %s", got.Status)
	}
}
