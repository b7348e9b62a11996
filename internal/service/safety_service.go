package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hardhat/sitebase/internal/entity"
	"github.com/hardhat/sitebase/internal/repository"
	"go.uber.org/zap"
)

// SafetyService 安全管理（事故/巡检/培训）
type SafetyService struct {
	safetyRepo *repository.SafetyRepository
	logRepo    *repository.ActivityLogRepository
	logger     *zap.Logger
}

func NewSafetyService(safetyRepo *repository.SafetyRepository, logRepo *repository.ActivityLogRepository, logger *zap.Logger) *SafetyService {
	return &SafetyService{safetyRepo: safetyRepo, logRepo: logRepo, logger: logger}
}

// logIncidentAction 写事故操作日志。日志失败不影响已完成的业务写入，但必须留痕。
func (s *SafetyService) logIncidentAction(ctx context.Context, incident *entity.SafetyIncident, action, from, to, operatorID, content string) {
	err := s.logRepo.Create(ctx, &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: "incident",
		EntityID:   incident.ID,
		EntityCode: incident.IncidentCode,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Content:    content,
		OperatorID: operatorID,
	})
	if err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("entity_type", "incident"),
			zap.String("entity_id", incident.ID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// ListIncidents 事故列表
func (s *SafetyService) ListIncidents(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SafetyIncident, int64, error) {
	return s.safetyRepo.FindIncidents(ctx, page, pageSize, filters)
}

// GetIncident 事故详情
func (s *SafetyService) GetIncident(ctx context.Context, id string) (*entity.SafetyIncident, error) {
	return s.safetyRepo.FindIncidentByID(ctx, id)
}

var validSeverities = map[string]bool{
	entity.SeverityCritical: true,
	entity.SeverityMajor:    true,
	entity.SeverityMinor:    true,
}

// ReportIncidentRequest 上报事故请求
type ReportIncidentRequest struct {
	ProjectID   *string   `json:"project_id"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Severity    string    `json:"severity" binding:"required"`
	Location    string    `json:"location"`
	OccurredAt  time.Time `json:"occurred_at" binding:"required"`
}

// ReportIncident 上报事故（open状态）
func (s *SafetyService) ReportIncident(ctx context.Context, userID string, req *ReportIncidentRequest) (*entity.SafetyIncident, error) {
	if !validSeverities[req.Severity] {
		return nil, fmt.Errorf("%w: 无效的事故等级 %s", ErrValidation, req.Severity)
	}

	code, err := s.safetyRepo.GenerateCode(ctx, "INC", &entity.SafetyIncident{}, "incident_code")
	if err != nil {
		return nil, fmt.Errorf("生成事故编码失败: %w", err)
	}

	incident := &entity.SafetyIncident{
		ID:           uuid.New().String()[:32],
		IncidentCode: code,
		ProjectID:    req.ProjectID,
		Title:        req.Title,
		Description:  req.Description,
		Severity:     req.Severity,
		Location:     req.Location,
		OccurredAt:   req.OccurredAt,
		Status:       entity.IncidentStatusOpen,
		ReportedBy:   userID,
	}
	if err := s.safetyRepo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("创建事故记录失败: %w", err)
	}

	s.logIncidentAction(ctx, incident, "create", "", entity.IncidentStatusOpen, userID, "")
	return incident, nil
}

// UpdateIncidentStatusRequest 事故状态推进请求
type UpdateIncidentStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution"`
}

// UpdateIncidentStatus 推进事故处理状态。只能沿处理流程单向走，
// resolved及之后必须带处理结论。
func (s *SafetyService) UpdateIncidentStatus(ctx context.Context, id, userID string, req *UpdateIncidentStatusRequest) (*entity.SafetyIncident, error) {
	incident, err := s.safetyRepo.FindIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entity.IncidentCanTransition(incident.Status, req.Status) {
		return nil, fmt.Errorf("%w: 事故状态 %s 不能迁移到 %s", ErrInvalidTransition, incident.Status, req.Status)
	}
	if req.Status == entity.IncidentStatusResolved && req.Resolution == "" {
		return nil, fmt.Errorf("%w: 处理结论不能为空", ErrValidation)
	}

	from := incident.Status
	incident.Status = req.Status
	if req.Resolution != "" {
		incident.Resolution = req.Resolution
	}
	if req.Status == entity.IncidentStatusResolved {
		now := time.Now()
		incident.ResolvedBy = &userID
		incident.ResolvedAt = &now
	}

	if err := s.safetyRepo.UpdateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("更新事故记录失败: %w", err)
	}

	s.logIncidentAction(ctx, incident, "transition", from, req.Status, userID, req.Resolution)
	return incident, nil
}

// ListInspections 巡检列表
func (s *SafetyService) ListInspections(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SafetyInspection, int64, error) {
	return s.safetyRepo.FindInspections(ctx, page, pageSize, filters)
}

// CreateInspectionRequest 创建巡检请求
type CreateInspectionRequest struct {
	ProjectID   *string   `json:"project_id"`
	Area        string    `json:"area" binding:"required"`
	InspectedAt time.Time `json:"inspected_at" binding:"required"`
	Result      string    `json:"result" binding:"required"`
	Findings    string    `json:"findings"`
}

// CreateInspection 记录巡检。不合格必须写明问题项。
func (s *SafetyService) CreateInspection(ctx context.Context, inspectorID string, req *CreateInspectionRequest) (*entity.SafetyInspection, error) {
	if req.Result != entity.InspectionResultPassed && req.Result != entity.InspectionResultFailed {
		return nil, fmt.Errorf("%w: 无效的巡检结果 %s", ErrValidation, req.Result)
	}
	if req.Result == entity.InspectionResultFailed && req.Findings == "" {
		return nil, fmt.Errorf("%w: 巡检不合格必须填写问题项", ErrValidation)
	}

	code, err := s.safetyRepo.GenerateCode(ctx, "INS", &entity.SafetyInspection{}, "inspection_code")
	if err != nil {
		return nil, fmt.Errorf("生成巡检编码失败: %w", err)
	}

	inspection := &entity.SafetyInspection{
		ID:             uuid.New().String()[:32],
		InspectionCode: code,
		ProjectID:      req.ProjectID,
		Area:           req.Area,
		InspectorID:    inspectorID,
		InspectedAt:    req.InspectedAt,
		Result:         req.Result,
		Findings:       req.Findings,
	}
	if err := s.safetyRepo.CreateInspection(ctx, inspection); err != nil {
		return nil, fmt.Errorf("创建巡检记录失败: %w", err)
	}
	return inspection, nil
}

// ListTrainings 培训列表
func (s *SafetyService) ListTrainings(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.TrainingRecord, int64, error) {
	return s.safetyRepo.FindTrainings(ctx, page, pageSize, filters)
}

// CreateTrainingRequest 创建培训记录请求
type CreateTrainingRequest struct {
	Topic         string    `json:"topic" binding:"required"`
	TrainerName   string    `json:"trainer_name"`
	ProjectID     *string   `json:"project_id"`
	HeldAt        time.Time `json:"held_at" binding:"required"`
	DurationHours float64   `json:"duration_hours"`
	AttendeeCount int       `json:"attendee_count"`
	Notes         string    `json:"notes"`
}

// CreateTraining 记录安全培训
func (s *SafetyService) CreateTraining(ctx context.Context, userID string, req *CreateTrainingRequest) (*entity.TrainingRecord, error) {
	if req.DurationHours < 0 || req.AttendeeCount < 0 {
		return nil, fmt.Errorf("%w: 培训时长和人数不能为负", ErrValidation)
	}

	code, err := s.safetyRepo.GenerateCode(ctx, "TRN", &entity.TrainingRecord{}, "training_code")
	if err != nil {
		return nil, fmt.Errorf("生成培训编码失败: %w", err)
	}

	training := &entity.TrainingRecord{
		ID:            uuid.New().String()[:32],
		TrainingCode:  code,
		Topic:         req.Topic,
		TrainerName:   req.TrainerName,
		ProjectID:     req.ProjectID,
		HeldAt:        req.HeldAt,
		DurationHours: req.DurationHours,
		AttendeeCount: req.AttendeeCount,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	if err := s.safetyRepo.CreateTraining(ctx, training); err != nil {
		return nil, fmt.Errorf("创建培训记录失败: %w", err)
	}
	return training, nil
}
