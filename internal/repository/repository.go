package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User        *UserRepository
	Material    *MaterialRepository
	Stock       *StockRepository
	Requisition *RequisitionRepository
	PO          *PORepository
	Requirement *RequirementRepository
	Supplier    *SupplierRepository
	Project     *ProjectRepository
	Safety      *SafetyRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Material:    NewMaterialRepository(db),
		Stock:       NewStockRepository(db),
		Requisition: NewRequisitionRepository(db),
		PO:          NewPORepository(db),
		Requirement: NewRequirementRepository(db),
		Supplier:    NewSupplierRepository(db),
		Project:     NewProjectRepository(db),
		Safety:      NewSafetyRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
