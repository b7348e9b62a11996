package handler

import (
	"net/http"
	"testing"

	"github.com/hardhat/sitebase/internal/config"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/middleware"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/hardhat/sitebase/internal/service"
	"github.com/hardhat/sitebase/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAPITest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	services := service.NewServices(repos, db, nil, cfg, zap.NewNop())
	handlers := NewHandlers(services)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/requisitions", handlers.Requisition.List)
	api.GET("/requisitions/:id", handlers.Requisition.Get)
	api.POST("/requisitions", handlers.Requisition.Create)
	api.POST("/requisitions/:id/approve", middleware.RequireRole(entity.RoleManager), handlers.Requisition.Approve)
	api.POST("/requisitions/:id/reject", middleware.RequireRole(entity.RoleManager), handlers.Requisition.Reject)
	api.POST("/requisitions/:id/cancel", handlers.Requisition.Cancel)
	api.POST("/requisitions/:id/deliver", middleware.RequireRole(entity.RoleWarehouse), handlers.Requisition.Deliver)
	api.GET("/stock/:materialId/available", handlers.Stock.Available)

	api.POST("/orders", middleware.RequireRole(entity.RoleProcurement), handlers.Procurement.CreateOrder)
	api.POST("/orders/:id/approve", middleware.RequireRole(entity.RoleManager), handlers.Procurement.ApproveOrder)
	api.POST("/orders/:id/receive", middleware.RequireRole(entity.RoleWarehouse), handlers.Procurement.ReceiveOrder)
	api.POST("/requirements", middleware.RequireRole(entity.RoleManager, entity.RoleProcurement), handlers.Procurement.CreateRequirement)
	api.GET("/requirements/:id", handlers.Procurement.GetRequirement)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedStock(t *testing.T, db *gorm.DB, materialID string, qty float64) {
	t.Helper()
	rec := &entity.StockRecord{
		ID:         "stk-" + materialID,
		MaterialID: materialID,
		Quantity:   qty,
		AvgUnitCost: 400,
		Unit:       "t",
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to seed stock: %v", err)
	}
}

func TestRequisitionLifecycle(t *testing.T) {
	env := setupAPITest(t)
	worker := testutil.GenerateTestToken("user-worker", "zhangsan", entity.RoleWorker)
	manager := testutil.GenerateTestToken("user-manager", "lisi", entity.RoleManager)
	warehouse := testutil.GenerateTestToken("user-wh", "wangwu", entity.RoleWarehouse)

	testutil.SeedMaterial(t, env.DB, "mat-101", "MAT-101", "普通硅酸盐水泥", 10)
	seedStock(t, env.DB, "mat-101", 100)

	// Worker creates a requisition for 30
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions", map[string]interface{}{
		"material_id": "mat-101",
		"quantity":    30,
		"purpose":     "三号楼浇筑",
	}, worker)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["stock_warning"] != false {
		t.Errorf("Expected no stock warning, got %v", data["stock_warning"])
	}
	req := data["requisition"].(map[string]interface{})
	reqID := req["id"].(string)
	if req["status"] != entity.ReqStatusPending {
		t.Fatalf("Expected pending, got %v", req["status"])
	}

	// Delivering before approval is a transition conflict
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/deliver",
		map[string]interface{}{"signature": "王五"}, warehouse)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for deliver before approve, got %d: %s", w.Code, w.Body.String())
	}

	// Manager approves
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/approve", nil, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on approve, got %d: %s", w.Code, w.Body.String())
	}

	// Worker role cannot approve
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/approve", nil, worker)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for worker approve, got %d", w.Code)
	}

	// Warehouse delivers: stock drops to 70
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/deliver",
		map[string]interface{}{"signature": "王五", "notes": "已出库"}, warehouse)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on deliver, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/stock/mat-101/available", nil, worker)
	resp = testutil.ParseResponse(w)
	if avail := resp["data"].(map[string]interface{})["available"].(float64); avail != 70 {
		t.Errorf("Expected 70 available after delivery, got %v", avail)
	}

	// Second delivery on the same requisition is rejected
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/deliver",
		map[string]interface{}{"signature": "王五"}, warehouse)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on double delivery, got %d", w.Code)
	}
}

func TestRequisitionStockWarningAndInsufficientDelivery(t *testing.T) {
	env := setupAPITest(t)
	worker := testutil.GenerateTestToken("user-worker", "zhangsan", entity.RoleWorker)
	manager := testutil.GenerateTestToken("user-manager", "lisi", entity.RoleManager)
	warehouse := testutil.GenerateTestToken("user-wh", "wangwu", entity.RoleWarehouse)

	testutil.SeedMaterial(t, env.DB, "mat-102", "MAT-102", "螺纹钢HRB400", 5)
	seedStock(t, env.DB, "mat-102", 20)

	// Requesting more than available: creation succeeds with a warning
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions", map[string]interface{}{
		"material_id": "mat-102",
		"quantity":    50,
	}, worker)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["stock_warning"] != true {
		t.Errorf("Expected stock warning, got %v", data["stock_warning"])
	}
	reqID := data["requisition"].(map[string]interface{})["id"].(string)

	testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/approve", nil, manager)

	// Delivery fails on insufficient stock and the requisition stays approved
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/deliver",
		map[string]interface{}{"signature": "王五"}, warehouse)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on insufficient stock, got %d: %s", w.Code, w.Body.String())
	}

	var req entity.MaterialRequisition
	env.DB.Where("id = ?", reqID).First(&req)
	if req.Status != entity.ReqStatusApproved {
		t.Errorf("Expected requisition to stay approved, got %s", req.Status)
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/stock/mat-102/available", nil, worker)
	resp = testutil.ParseResponse(w)
	if avail := resp["data"].(map[string]interface{})["available"].(float64); avail != 20 {
		t.Errorf("Expected stock unchanged at 20, got %v", avail)
	}
}

func TestRequisitionCancelOnlyByRequester(t *testing.T) {
	env := setupAPITest(t)
	worker := testutil.GenerateTestToken("user-worker", "zhangsan", entity.RoleWorker)
	other := testutil.GenerateTestToken("user-other", "zhaoliu", entity.RoleWorker)

	testutil.SeedMaterial(t, env.DB, "mat-103", "MAT-103", "中砂", 0)
	seedStock(t, env.DB, "mat-103", 100)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions", map[string]interface{}{
		"material_id": "mat-103",
		"quantity":    10,
	}, worker)
	resp := testutil.ParseResponse(w)
	reqID := resp["data"].(map[string]interface{})["requisition"].(map[string]interface{})["id"].(string)

	// Someone else cannot cancel
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/cancel", nil, other)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for non-requester cancel, got %d: %s", w.Code, w.Body.String())
	}

	// Requester can
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/requisitions/"+reqID+"/cancel", nil, worker)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on cancel, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.ReqStatusCanceled {
		t.Errorf("Expected canceled, got %v", data["status"])
	}
}
