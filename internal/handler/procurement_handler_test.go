package handler

import (
	"net/http"
	"testing"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/testutil"
)

func TestProcurementOrderLifecycleWithRequirementMirror(t *testing.T) {
	env := setupAPITest(t)
	manager := testutil.GenerateTestToken("user-manager", "lisi", entity.RoleManager)
	procurement := testutil.GenerateTestToken("user-proc", "qianqi", entity.RoleProcurement)
	warehouse := testutil.GenerateTestToken("user-wh", "wangwu", entity.RoleWarehouse)

	testutil.SeedMaterial(t, env.DB, "mat-201", "MAT-201", "普通硅酸盐水泥", 10)
	testutil.SeedSupplier(t, env.DB, "sup-201", "SUP-2026-0001", "华东建材供应")

	project := &entity.Project{
		ID: "proj-201", Code: "PRJ-201", Name: "滨江商务楼",
		Status: entity.ProgressStatusPending, ManagerID: "user-manager", CreatedBy: "user-manager",
	}
	env.DB.Create(project)

	// Manager plans a requirement
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/requirements", map[string]interface{}{
		"material_id": "mat-201",
		"project_id":  "proj-201",
		"quantity":    200,
		"unit_cost":   410,
	}, manager)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	mrID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// Procurement converts it to an order; requirement mirrors to ordered
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders", map[string]interface{}{
		"material_id":    "mat-201",
		"supplier_id":    "sup-201",
		"requirement_id": mrID,
		"quantity":       200,
		"unit_cost":      405,
	}, procurement)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on order create, got %d: %s", w.Code, w.Body.String())
	}
	order := testutil.ParseResponse(w)["data"].(map[string]interface{})
	poID := order["id"].(string)
	if order["total_cost"].(float64) != 81000 {
		t.Errorf("Expected total 81000, got %v", order["total_cost"])
	}

	var mr entity.MaterialRequirement
	env.DB.Where("id = ?", mrID).First(&mr)
	if mr.Status != entity.MRStatusOrdered {
		t.Fatalf("Expected requirement ordered, got %s", mr.Status)
	}

	// A second order against the same requirement is rejected
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders", map[string]interface{}{
		"material_id":    "mat-201",
		"supplier_id":    "sup-201",
		"requirement_id": mrID,
		"quantity":       50,
		"unit_cost":      405,
	}, procurement)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for double conversion, got %d: %s", w.Code, w.Body.String())
	}

	// Receiving before approval is rejected
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders/"+poID+"/receive",
		map[string]interface{}{}, warehouse)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on receive before approve, got %d: %s", w.Code, w.Body.String())
	}

	// Manager approves; requirement mirrors to approved
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders/"+poID+"/approve", nil, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on approve, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Where("id = ?", mrID).First(&mr)
	if mr.Status != entity.MRStatusApproved {
		t.Fatalf("Expected requirement approved, got %s", mr.Status)
	}

	// Warehouse receives: stock record appears, requirement mirrors to delivered
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders/"+poID+"/receive",
		map[string]interface{}{"batch_no": "B20260829", "location": "一号仓"}, warehouse)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on receive, got %d: %s", w.Code, w.Body.String())
	}
	received := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if received["status"] != entity.POStatusReceived {
		t.Errorf("Expected received status, got %v", received["status"])
	}

	var rec entity.StockRecord
	if err := env.DB.Where("material_id = ?", "mat-201").First(&rec).Error; err != nil {
		t.Fatalf("Expected stock record after receive: %v", err)
	}
	if rec.Quantity != 200 || rec.AvgUnitCost != 405 {
		t.Errorf("Expected qty=200 cost=405, got qty=%v cost=%v", rec.Quantity, rec.AvgUnitCost)
	}

	env.DB.Where("id = ?", mrID).First(&mr)
	if mr.Status != entity.MRStatusDelivered {
		t.Errorf("Expected requirement delivered, got %s", mr.Status)
	}

	// Activity log captured the whole chain
	var logs []entity.ActivityLog
	env.DB.Where("entity_type = ? AND entity_id = ?", "order", poID).Find(&logs)
	if len(logs) != 3 {
		t.Errorf("Expected 3 activity logs (create/approve/receive), got %d", len(logs))
	}
}

func TestProcurementOrderPartialReceive(t *testing.T) {
	env := setupAPITest(t)
	manager := testutil.GenerateTestToken("user-manager", "lisi", entity.RoleManager)
	procurement := testutil.GenerateTestToken("user-proc", "qianqi", entity.RoleProcurement)
	warehouse := testutil.GenerateTestToken("user-wh", "wangwu", entity.RoleWarehouse)

	testutil.SeedMaterial(t, env.DB, "mat-202", "MAT-202", "螺纹钢HRB400", 5)
	testutil.SeedSupplier(t, env.DB, "sup-202", "SUP-2026-0002", "北方钢铁")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/orders", map[string]interface{}{
		"material_id": "mat-202",
		"supplier_id": "sup-202",
		"quantity":    100,
		"unit_cost":   4200,
	}, procurement)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
	testutil.DoRequest(env.Router, "POST", "/api/v1/orders/"+poID+"/approve", nil, manager)

	// Actual receipt differs from ordered quantity; both are kept for reconciliation
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/orders/"+poID+"/receive",
		map[string]interface{}{"quantity": 95, "unit_cost": 4150}, warehouse)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var po entity.ProcurementOrder
	env.DB.Where("id = ?", poID).First(&po)
	if po.ReceivedQty == nil || *po.ReceivedQty != 95 {
		t.Errorf("Expected received_qty 95, got %v", po.ReceivedQty)
	}
	if po.Quantity != 100 {
		t.Errorf("Expected ordered quantity kept at 100, got %v", po.Quantity)
	}

	var rec entity.StockRecord
	env.DB.Where("material_id = ?", "mat-202").First(&rec)
	if rec.Quantity != 95 || rec.AvgUnitCost != 4150 {
		t.Errorf("Expected stock qty=95 cost=4150, got qty=%v cost=%v", rec.Quantity, rec.AvgUnitCost)
	}
}
