package service

import (
	"github.com/hardhat/sitebase/internal/config"
	"github.com/hardhat/sitebase/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	Material    *MaterialService
	Stock       *StockService
	Requisition *RequisitionService
	Procurement *ProcurementService
	Supplier    *SupplierService
	Project     *ProjectService
	Safety      *SafetyService
	Dashboard   *DashboardService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	stockSvc := NewStockService(repos.Stock, repos.Material, db)

	return &Services{
		Auth:        NewAuthService(repos.User, cfg.JWT.Secret, cfg.JWT.AccessTokenExpire),
		Material:    NewMaterialService(repos.Material),
		Stock:       stockSvc,
		Requisition: NewRequisitionService(repos.Requisition, repos.Material, repos.ActivityLog, stockSvc, db, logger),
		Procurement: NewProcurementService(repos.PO, repos.Requirement, repos.Material, repos.Supplier, repos.ActivityLog, stockSvc, db),
		Supplier:    NewSupplierService(repos.Supplier),
		Project:     NewProjectService(repos.Project, logger),
		Safety:      NewSafetyService(repos.Safety, repos.ActivityLog, logger),
		Dashboard:   NewDashboardService(db, rdb, logger),
	}
}
