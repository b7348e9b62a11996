package entity

import "time"

// Material 物料主数据
type Material struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Code          string    `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"size:200;not null"`
	Category      string    `json:"category" gorm:"size:50;not null"` // cement/steel/aggregate/timber/electrical/plumbing/other
	Specification string    `json:"specification" gorm:"size:500"`
	Unit          string    `json:"unit" gorm:"size:20;default:pcs"`
	UnitCost      float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	MinStockLevel float64   `json:"min_stock_level" gorm:"type:decimal(12,4);default:0"`
	Status        string    `json:"status" gorm:"size:20;default:active"`
	CreatedBy     string    `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Notes         string    `json:"notes" gorm:"type:text"`
}

func (Material) TableName() string {
	return "materials"
}

// 物料分类
const (
	MaterialCategoryCement     = "cement"
	MaterialCategorySteel      = "steel"
	MaterialCategoryAggregate  = "aggregate"
	MaterialCategoryTimber     = "timber"
	MaterialCategoryElectrical = "electrical"
	MaterialCategoryPlumbing   = "plumbing"
	MaterialCategoryOther      = "other"
)

// 物料状态
const (
	MaterialStatusActive   = "active"
	MaterialStatusInactive = "inactive"
)
