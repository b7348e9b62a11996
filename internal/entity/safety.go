package entity

import "time"

// SafetyIncident 安全事故记录
type SafetyIncident struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	IncidentCode string     `json:"incident_code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID    *string    `json:"project_id" gorm:"size:32;index"`
	Title        string     `json:"title" gorm:"size:200;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Severity     string     `json:"severity" gorm:"size:20;not null"` // critical/major/minor
	Location     string     `json:"location" gorm:"size:200"`
	OccurredAt   time.Time  `json:"occurred_at"`
	Status       string     `json:"status" gorm:"size:20;default:open"`
	Resolution   string     `json:"resolution" gorm:"type:text"`
	ReportedBy   string     `json:"reported_by" gorm:"size:32;not null"`
	ResolvedBy   *string    `json:"resolved_by" gorm:"size:32"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (SafetyIncident) TableName() string {
	return "safety_incidents"
}

// 事故严重程度
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// 事故状态
const (
	IncidentStatusOpen          = "open"
	IncidentStatusInvestigating = "investigating"
	IncidentStatusResolved      = "resolved"
	IncidentStatusClosed        = "closed"
)

// incidentTransitions 事故单状态只能沿处理流程单向推进
var incidentTransitions = map[string][]string{
	IncidentStatusOpen:          {IncidentStatusInvestigating, IncidentStatusResolved},
	IncidentStatusInvestigating: {IncidentStatusResolved},
	IncidentStatusResolved:      {IncidentStatusClosed},
}

// IncidentCanTransition 判断事故单状态迁移是否合法
func IncidentCanTransition(from, to string) bool {
	for _, s := range incidentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SafetyInspection 安全巡检
type SafetyInspection struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	InspectionCode string    `json:"inspection_code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID      *string   `json:"project_id" gorm:"size:32;index"`
	Area           string    `json:"area" gorm:"size:200;not null"`
	InspectorID    string    `json:"inspector_id" gorm:"size:32;not null"`
	InspectedAt    time.Time `json:"inspected_at"`
	Result         string    `json:"result" gorm:"size:20;not null"` // passed/failed
	Findings       string    `json:"findings" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (SafetyInspection) TableName() string {
	return "safety_inspections"
}

// 巡检结果
const (
	InspectionResultPassed = "passed"
	InspectionResultFailed = "failed"
)

// TrainingRecord 安全培训记录
type TrainingRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	TrainingCode  string    `json:"training_code" gorm:"size:32;uniqueIndex;not null"`
	Topic         string    `json:"topic" gorm:"size:200;not null"`
	TrainerName   string    `json:"trainer_name" gorm:"size:100"`
	ProjectID     *string   `json:"project_id" gorm:"size:32;index"`
	HeldAt        time.Time `json:"held_at"`
	DurationHours float64   `json:"duration_hours" gorm:"type:decimal(5,2);default:0"`
	AttendeeCount int       `json:"attendee_count" gorm:"default:0"`
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedBy     string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TrainingRecord) TableName() string {
	return "training_records"
}
