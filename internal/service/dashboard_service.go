package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hardhat/sitebase/internal/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "sitebase:dashboard:overview"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardStats 看板汇总
type DashboardStats struct {
	PendingRequisitions int64   `json:"pending_requisitions"`
	PendingOrders       int64   `json:"pending_orders"`
	StockAlerts         int64   `json:"stock_alerts"`
	OpenIncidents       int64   `json:"open_incidents"`
	ActiveProjects      int64   `json:"active_projects"`
	StockValue          float64 `json:"stock_value"`
	MonthProcurement    float64 `json:"month_procurement"`
	GeneratedAt         string  `json:"generated_at"`
}

// DashboardService 看板统计。结果缓存到Redis短TTL，缓存故障时直接查库降级。
type DashboardService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

func NewDashboardService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, rdb: rdb, logger: logger}
}

// Overview 看板汇总，优先读缓存
func (s *DashboardService) Overview(ctx context.Context) (*DashboardStats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate 工作流写操作后主动失效缓存
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().Format(time.RFC3339)}
	db := s.db.WithContext(ctx)

	if err := db.Model(&entity.MaterialRequisition{}).
		Where("status = ?", entity.ReqStatusPending).
		Count(&stats.PendingRequisitions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.ProcurementOrder{}).
		Where("status = ?", entity.POStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.StockRecord{}).
		Joins("JOIN materials ON materials.id = stock_records.material_id").
		Where("stock_records.quantity < materials.min_stock_level").
		Count(&stats.StockAlerts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.SafetyIncident{}).
		Where("status IN ?", []string{entity.IncidentStatusOpen, entity.IncidentStatusInvestigating}).
		Count(&stats.OpenIncidents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Project{}).
		Where("status = ?", entity.ProgressStatusInProgress).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&entity.StockRecord{}).
		Select("COALESCE(SUM(quantity * avg_unit_cost), 0)").
		Scan(&stats.StockValue).Error; err != nil {
		return nil, err
	}

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)
	if err := db.Model(&entity.ProcurementOrder{}).
		Select("COALESCE(SUM(total_cost), 0)").
		Where("status = ? AND received_at >= ?", entity.POStatusReceived, monthStart).
		Scan(&stats.MonthProcurement).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
