package entity

import "time"

// Project 工程项目
type Project struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Code        string     `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Name        string     `json:"name" gorm:"size:200;not null"`
	Client      string     `json:"client" gorm:"size:200"`
	Location    string     `json:"location" gorm:"size:500"`
	Status      string     `json:"status" gorm:"size:20;not null;default:pending"`
	Progress    float64    `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	Budget      *float64   `json:"budget" gorm:"type:decimal(15,2)"`
	ManagerID   string     `json:"manager_id" gorm:"size:32;not null"`
	StartDate   *time.Time `json:"start_date" gorm:"type:date"`
	PlannedEnd  *time.Time `json:"planned_end" gorm:"type:date"`
	ActualEnd   *time.Time `json:"actual_end" gorm:"type:date"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Phases []ProjectPhase `json:"phases,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectPhase 项目阶段（进度由其下任务加权汇总）
type ProjectPhase struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID    string     `json:"project_id" gorm:"size:32;not null;index"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Sequence     int        `json:"sequence" gorm:"not null;default:0"`
	Status       string     `json:"status" gorm:"size:20;not null;default:pending"`
	Progress     float64    `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	Weight       *float64   `json:"weight" gorm:"type:decimal(8,4)"` // 占项目进度的权重，可空
	PlannedStart *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedEnd   *time.Time `json:"planned_end" gorm:"type:date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:PhaseID"`
}

func (ProjectPhase) TableName() string {
	return "project_phases"
}

// Task 任务（进度树叶子）
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID   string     `json:"project_id" gorm:"size:32;not null;index"`
	PhaseID     string     `json:"phase_id" gorm:"size:32;not null;index"`
	Name        string     `json:"name" gorm:"size:256;not null"`
	Status      string     `json:"status" gorm:"size:20;not null;default:pending"`
	Progress    float64    `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	Weight      *float64   `json:"weight" gorm:"type:decimal(8,4)"` // 占阶段进度的权重，可空
	AssigneeID  *string    `json:"assignee_id" gorm:"size:32"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	CompletedAt *time.Time `json:"completed_at"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// 进度节点状态（由进度值推导：0=pending, (0,100)=in_progress, 100=completed）
const (
	ProgressStatusPending    = "pending"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)
