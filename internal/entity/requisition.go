package entity

import "time"

// MaterialRequisition 领料单（从现有库存申领物料）
type MaterialRequisition struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	ReqCode      string  `json:"req_code" gorm:"size:32;uniqueIndex;not null"`
	MaterialID   string  `json:"material_id" gorm:"size:32;not null;index"`
	MaterialCode string  `json:"material_code" gorm:"size:50"`
	MaterialName string  `json:"material_name" gorm:"size:200"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:pcs"`
	Status       string  `json:"status" gorm:"size:20;default:pending"`

	// 关联
	ProjectID *string `json:"project_id" gorm:"size:32"`
	Purpose   string  `json:"purpose" gorm:"size:500"`

	// 审批
	RequestedBy  string     `json:"requested_by" gorm:"size:32;not null"`
	ApprovedBy   *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt   *time.Time `json:"approved_at"`
	RejectReason string     `json:"reject_reason" gorm:"size:500"`

	// 发放
	DeliveredAt       *time.Time `json:"delivered_at"`
	DeliverySignature string     `json:"delivery_signature" gorm:"size:200"`
	DeliveryNotes     string     `json:"delivery_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MaterialRequisition) TableName() string {
	return "material_requisitions"
}

// 领料单状态
const (
	ReqStatusPending   = "pending"
	ReqStatusApproved  = "approved"
	ReqStatusRejected  = "rejected"
	ReqStatusDelivered = "delivered"
	ReqStatusCanceled  = "canceled"
)

// 领料单动作
const (
	ReqActionApprove = "approve"
	ReqActionReject  = "reject"
	ReqActionCancel  = "cancel"
	ReqActionDeliver = "deliver"
)

// reqTransitions 领料单状态机：(当前状态, 动作) → 目标状态，表外一律非法
var reqTransitions = map[string]map[string]string{
	ReqStatusPending: {
		ReqActionApprove: ReqStatusApproved,
		ReqActionReject:  ReqStatusRejected,
		ReqActionCancel:  ReqStatusCanceled,
	},
	ReqStatusApproved: {
		ReqActionDeliver: ReqStatusDelivered,
	},
}

// ReqNextStatus 查询领料单状态迁移表
func ReqNextStatus(current, action string) (string, bool) {
	next, ok := reqTransitions[current][action]
	return next, ok
}
