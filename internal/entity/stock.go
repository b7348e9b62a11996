package entity

import "time"

// StockRecord 库存台账（每物料一行，数量与移动加权平均成本）
type StockRecord struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	MaterialID   string     `json:"material_id" gorm:"size:32;not null;uniqueIndex"`
	MaterialCode string     `json:"material_code" gorm:"size:50"`
	MaterialName string     `json:"material_name" gorm:"size:200"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	AvgUnitCost  float64    `json:"avg_unit_cost" gorm:"type:decimal(12,4);default:0"`
	Unit         string     `json:"unit" gorm:"size:20;default:pcs"`
	Location     string     `json:"location" gorm:"size:100"`
	BatchNo      string     `json:"batch_no" gorm:"size:50"`
	LastReceived *time.Time `json:"last_received"`
	ReceivedBy   string     `json:"received_by" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (StockRecord) TableName() string {
	return "stock_records"
}

// StockMovement 库存流水（正=入库，负=出库）
type StockMovement struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	MaterialID    string    `json:"material_id" gorm:"size:32;not null;index"`
	MaterialCode  string    `json:"material_code" gorm:"size:50"`
	MaterialName  string    `json:"material_name" gorm:"size:200"`
	MovementType  string    `json:"movement_type" gorm:"size:20;not null"`
	Quantity      float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UnitCost      float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	BatchNo       string    `json:"batch_no" gorm:"size:50"`
	Location      string    `json:"location" gorm:"size:100"`
	ReferenceType string    `json:"reference_type" gorm:"size:20;not null"` // PO/REQ
	ReferenceID   string    `json:"reference_id" gorm:"size:32;not null"`
	ReferenceCode string    `json:"reference_code" gorm:"size:50"`
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedBy     string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt     time.Time `json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// 库存流水类型。入库只走采购收货，出库只走领料发放。
const (
	MovementTypeReceipt  = "RECEIPT"
	MovementTypeDelivery = "DELIVERY"
)

// 流水单据类型
const (
	MovementRefPO  = "PO"
	MovementRefReq = "REQ"
)
