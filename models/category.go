package models

import (
	"time"

	"gorm.io/gorm"
)

// 类别类型常量，与交易类型一一对应
const (
	CategoryTypeIncome   = "income"
	CategoryTypeExpense  = "expense"
	CategoryTypeTransfer = "transfer"
)

// Category 收支类别
// UserID 为空表示系统内置类别（所有用户共享），非空表示用户自定义类别
// ParentID 支持一级父子结构，不允许多级嵌套
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    *uint          `json:"user_id" gorm:"index"` // NULL = 系统类别
	Name      string         `json:"name" gorm:"size:50;not null;index"`
	Type      string         `json:"type" gorm:"size:20;not null;default:expense;index"` // income/expense/transfer
	Icon      string         `json:"icon" gorm:"size:50"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	ParentID  *uint          `json:"parent_id" gorm:"index"`               // 父类别，一级结构
	Sort      int            `json:"sort" gorm:"default:0;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// IsSystem 是否为系统内置类别
func (c *Category) IsSystem() bool {
	return c.UserID == nil
}

// IsValidCategoryType 校验类别类型是否合法
func IsValidCategoryType(t string) bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense || t == CategoryTypeTransfer
}
