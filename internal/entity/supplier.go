package entity

import "time"

// Supplier 供应商
type Supplier struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Code     string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:200;not null"`
	Category string `json:"category" gorm:"size:50;not null"` // cement/steel/aggregate/equipment/other

	// 联系信息
	ContactName  string `json:"contact_name" gorm:"size:100"`
	Phone        string `json:"phone" gorm:"size:50"`
	Email        string `json:"email" gorm:"size:200"`
	Address      string `json:"address" gorm:"size:500"`

	// 商务条款
	Rating        int    `json:"rating" gorm:"default:3"` // 1-5
	LeadTimeDays  int    `json:"lead_time_days" gorm:"default:7"`
	PaymentTerms  string `json:"payment_terms" gorm:"size:100"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Contacts []SupplierContact `json:"contacts,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierContact 供应商联系人
type SupplierContact struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	SupplierID string    `json:"supplier_id" gorm:"size:32;not null;index"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Title      string    `json:"title" gorm:"size:100"`
	Phone      string    `json:"phone" gorm:"size:50"`
	Email      string    `json:"email" gorm:"size:200"`
	IsPrimary  bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SupplierContact) TableName() string {
	return "supplier_contacts"
}

// 供应商分类
const (
	SupplierCategoryCement    = "cement"
	SupplierCategorySteel     = "steel"
	SupplierCategoryAggregate = "aggregate"
	SupplierCategoryEquipment = "equipment"
	SupplierCategoryOther     = "other"
)
