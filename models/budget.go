package models

import (
	"time"

	"gorm.io/gorm"
)

// 预算周期常量
const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"
	BudgetPeriodYearly  = "yearly"
)

// DefaultAlertThreshold 默认提醒阈值（百分比）
const DefaultAlertThreshold = 80

// Budget 预算模型
// spent/remaining/percentage_used/is_over_budget 均为读取时根据交易记录实时计算的派生值，不落库
type Budget struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"size:100;not null"`
	Amount         float64        `json:"amount" gorm:"type:decimal(12,2);not null"` // 预算上限
	Period         string         `json:"period" gorm:"size:20;not null;default:monthly;index"`
	StartDate      time.Time      `json:"start_date" gorm:"not null"`
	EndDate        *time.Time     `json:"end_date"`                 // 可为空，表示不设截止
	CategoryID     *uint          `json:"category_id" gorm:"index"` // 可为空，表示不限类别
	Rollover       bool           `json:"rollover" gorm:"default:false"` // 结余滚动标记，暂不参与计算
	AlertEnabled   bool           `json:"alert_enabled" gorm:"default:false"`
	AlertThreshold float64        `json:"alert_threshold" gorm:"default:80"` // 提醒阈值（百分比）
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	User           User           `json:"-" gorm:"foreignKey:UserID"`
	Category       *Category      `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsValidBudgetPeriod 校验预算周期是否合法
func IsValidBudgetPeriod(p string) bool {
	return p == BudgetPeriodWeekly || p == BudgetPeriodMonthly || p == BudgetPeriodYearly
}
