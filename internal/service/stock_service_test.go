package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/testutil"
	"gorm.io/gorm"
)

func setupStockTest(t *testing.T) (*gorm.DB, *StockService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewStockService(repos.Stock, repos.Material, db)
}

func receive(t *testing.T, db *gorm.DB, svc *StockService, materialID string, qty, cost float64) *entity.StockRecord {
	t.Helper()
	var rec *entity.StockRecord
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = svc.ReceiveTx(tx.WithContext(context.Background()), ReceiveInput{
			MaterialID:    materialID,
			Quantity:      qty,
			UnitCost:      cost,
			ReferenceType: entity.MovementRefPO,
			ReferenceID:   "po-test-001",
			ReferenceCode: "PO-2026-0001",
			ReceivedBy:    "test-admin-001",
		})
		return err
	})
	if err != nil {
		t.Fatalf("ReceiveTx failed: %v", err)
	}
	return rec
}

func TestReceiveCreatesRecordAndMovement(t *testing.T) {
	db, svc := setupStockTest(t)
	testutil.SeedMaterial(t, db, "mat-001", "MAT-001", "普通硅酸盐水泥", 10)

	rec := receive(t, db, svc, "mat-001", 100, 420)
	if rec.Quantity != 100 || rec.AvgUnitCost != 420 {
		t.Fatalf("Expected qty=100 cost=420, got qty=%v cost=%v", rec.Quantity, rec.AvgUnitCost)
	}

	var movements []entity.StockMovement
	db.Where("material_id = ?", "mat-001").Find(&movements)
	if len(movements) != 1 {
		t.Fatalf("Expected 1 movement, got %d", len(movements))
	}
	if movements[0].MovementType != entity.MovementTypeReceipt || movements[0].Quantity != 100 {
		t.Errorf("Unexpected movement: %+v", movements[0])
	}
}

func TestReceiveRecomputesWeightedAverageCost(t *testing.T) {
	db, svc := setupStockTest(t)
	testutil.SeedMaterial(t, db, "mat-002", "MAT-002", "螺纹钢HRB400", 5)

	receive(t, db, svc, "mat-002", 100, 400)
	rec := receive(t, db, svc, "mat-002", 50, 460)

	// (100*400 + 50*460) / 150 = 420
	if rec.Quantity != 150 {
		t.Errorf("Expected qty 150, got %v", rec.Quantity)
	}
	if math.Abs(rec.AvgUnitCost-420) > 1e-9 {
		t.Errorf("Expected avg cost 420, got %v", rec.AvgUnitCost)
	}
}

func TestConsumeDecrementsAndRecordsNegativeMovement(t *testing.T) {
	db, svc := setupStockTest(t)
	testutil.SeedMaterial(t, db, "mat-003", "MAT-003", "中砂", 0)
	receive(t, db, svc, "mat-003", 80, 120)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeTx(tx, ConsumeInput{
			MaterialID:    "mat-003",
			Quantity:      30,
			ReferenceType: entity.MovementRefReq,
			ReferenceID:   "req-test-001",
			ReferenceCode: "REQ-2026-0001",
			ConsumedBy:    "test-admin-001",
		})
	})
	if err != nil {
		t.Fatalf("ConsumeTx failed: %v", err)
	}

	available, err := svc.GetAvailable(context.Background(), "mat-003")
	if err != nil {
		t.Fatalf("GetAvailable failed: %v", err)
	}
	if available != 50 {
		t.Errorf("Expected 50 remaining, got %v", available)
	}

	var movements []entity.StockMovement
	db.Where("material_id = ? AND movement_type = ?", "mat-003", entity.MovementTypeDelivery).Find(&movements)
	if len(movements) != 1 || movements[0].Quantity != -30 {
		t.Fatalf("Expected one delivery movement of -30, got %+v", movements)
	}
}

func TestConsumeInsufficientStockRollsBack(t *testing.T) {
	db, svc := setupStockTest(t)
	testutil.SeedMaterial(t, db, "mat-004", "MAT-004", "木模板", 0)
	receive(t, db, svc, "mat-004", 10, 50)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.ConsumeTx(tx, ConsumeInput{
			MaterialID:    "mat-004",
			Quantity:      20,
			ReferenceType: entity.MovementRefReq,
			ReferenceID:   "req-test-002",
			ReferenceCode: "REQ-2026-0002",
			ConsumedBy:    "test-admin-001",
		})
	})
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	// Quantity unchanged, no delivery movement written
	available, _ := svc.GetAvailable(context.Background(), "mat-004")
	if available != 10 {
		t.Errorf("Expected quantity to stay 10, got %v", available)
	}
	var count int64
	db.Model(&entity.StockMovement{}).
		Where("material_id = ? AND movement_type = ?", "mat-004", entity.MovementTypeDelivery).
		Count(&count)
	if count != 0 {
		t.Errorf("Expected no delivery movements, got %d", count)
	}
}

func TestStockListFiltersByLocation(t *testing.T) {
	db, svc := setupStockTest(t)
	testutil.SeedMaterial(t, db, "mat-005", "MAT-005", "普通硅酸盐水泥", 0)
	testutil.SeedMaterial(t, db, "mat-006", "MAT-006", "螺纹钢HRB400", 0)

	receiveAt := func(materialID, location string) {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.ReceiveTx(tx, ReceiveInput{
				MaterialID:    materialID,
				Quantity:      10,
				UnitCost:      400,
				Location:      location,
				ReferenceType: entity.MovementRefPO,
				ReferenceID:   "po-test-loc",
				ReferenceCode: "PO-2026-0009",
				ReceivedBy:    "test-admin-001",
			})
			return err
		})
		if err != nil {
			t.Fatalf("ReceiveTx failed: %v", err)
		}
	}
	receiveAt("mat-005", "一号仓")
	receiveAt("mat-006", "二号仓")

	items, total, err := svc.List(context.Background(), 1, 20, map[string]string{"location": "一号仓"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].MaterialID != "mat-005" {
		t.Errorf("Expected only mat-005 at 一号仓, got total=%d items=%+v", total, items)
	}
}

func TestGetAvailableNoRecordReturnsZero(t *testing.T) {
	_, svc := setupStockTest(t)
	available, err := svc.GetAvailable(context.Background(), "mat-missing")
	if err != nil {
		t.Fatalf("GetAvailable failed: %v", err)
	}
	if available != 0 {
		t.Errorf("Expected 0 for unknown material, got %v", available)
	}
}
