package entity

import "time"

// User 用户
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:200"`
	Phone        string     `json:"phone" gorm:"size:50"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:32;not null;default:worker"`
	Status       string     `json:"status" gorm:"size:20;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// 用户角色
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"      // 项目经理
	RoleWarehouse   = "warehouse"    // 仓管员
	RoleProcurement = "procurement"  // 采购
	RoleSafety      = "safety"       // 安全员
	RoleWorker      = "worker"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
