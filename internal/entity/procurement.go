package entity

import "time"

// ProcurementOrder 采购订单
type ProcurementOrder struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	POCode        string  `json:"po_code" gorm:"size:32;uniqueIndex;not null"`
	MaterialID    string  `json:"material_id" gorm:"size:32;not null;index"`
	MaterialCode  string  `json:"material_code" gorm:"size:50"`
	MaterialName  string  `json:"material_name" gorm:"size:200"`
	SupplierID    string  `json:"supplier_id" gorm:"size:32;not null;index"`
	RequirementID *string `json:"requirement_id" gorm:"size:32"`

	Quantity  float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit      string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitCost  float64 `json:"unit_cost" gorm:"type:decimal(12,4);not null"`
	TotalCost float64 `json:"total_cost" gorm:"type:decimal(15,2);not null"`

	ExpectedDate *time.Time `json:"expected_date"`
	Priority     string     `json:"priority" gorm:"size:20;default:normal"` // urgent/high/normal/low
	Status       string     `json:"status" gorm:"size:20;default:pending"`

	// 收货（实收可与订购数量不一致，保留订购数量以便对账）
	ReceivedQty  *float64   `json:"received_qty" gorm:"type:decimal(12,4)"`
	ReceivedCost *float64   `json:"received_cost" gorm:"type:decimal(12,4)"`
	ReceivedAt   *time.Time `json:"received_at"`
	ReceivedBy   *string    `json:"received_by" gorm:"size:32"`

	// 审批
	CreatedBy    string     `json:"created_by" gorm:"size:32;not null"`
	ApprovedBy   *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt   *time.Time `json:"approved_at"`
	RejectReason string     `json:"reject_reason" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (ProcurementOrder) TableName() string {
	return "procurement_orders"
}

// 采购订单状态
const (
	POStatusPending  = "pending"
	POStatusApproved = "approved"
	POStatusRejected = "rejected"
	POStatusReceived = "received"
)

// 采购订单动作
const (
	POActionApprove = "approve"
	POActionReject  = "reject"
	POActionReceive = "receive"
)

var poTransitions = map[string]map[string]string{
	POStatusPending: {
		POActionApprove: POStatusApproved,
		POActionReject:  POStatusRejected,
	},
	POStatusApproved: {
		POActionReceive: POStatusReceived,
	},
}

// PONextStatus 查询采购订单状态迁移表
func PONextStatus(current, action string) (string, bool) {
	next, ok := poTransitions[current][action]
	return next, ok
}

// MaterialRequirement 物料需求计划（区别于领料单：计划阶段记录，可转采购订单）
type MaterialRequirement struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	MRCode       string  `json:"mr_code" gorm:"size:32;uniqueIndex;not null"`
	MaterialID   string  `json:"material_id" gorm:"size:32;not null;index"`
	MaterialCode string  `json:"material_code" gorm:"size:50"`
	MaterialName string  `json:"material_name" gorm:"size:200"`
	ProjectID    string  `json:"project_id" gorm:"size:32;not null;index"`
	PhaseID      *string `json:"phase_id" gorm:"size:32"`

	Quantity  float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit      string  `json:"unit" gorm:"size:20;default:pcs"`
	UnitCost  float64 `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	TotalCost float64 `json:"total_cost" gorm:"type:decimal(15,2);default:0"`

	RequiredDate *time.Time `json:"required_date"`
	Status       string     `json:"status" gorm:"size:20;default:planned"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`
}

func (MaterialRequirement) TableName() string {
	return "material_requirements"
}

// 物料需求状态（由采购订单状态同步镜像）
const (
	MRStatusPlanned   = "planned"
	MRStatusOrdered   = "ordered"
	MRStatusApproved  = "approved"
	MRStatusDelivered = "delivered"
)
