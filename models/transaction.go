package models

import (
	"time"

	"gorm.io/gorm"
)

// 交易类型常量
// 金额恒为非负数，收支方向由 Type 表示，不用正负号
const (
	TransactionTypeIncome   = "income"
	TransactionTypeExpense  = "expense"
	TransactionTypeTransfer = "transfer"
)

// 交易状态常量，只有 posted 状态参与余额和统计汇总
const (
	TransactionStatusPosted  = "posted"
	TransactionStatusPending = "pending"
)

// Transaction 交易记录模型
type Transaction struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	AccountID       uint           `json:"account_id" gorm:"index;not null"`
	CategoryID      *uint          `json:"category_id" gorm:"index"` // 可为空，统计时归入"未分类"
	Amount          float64        `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency        string         `json:"currency" gorm:"size:10;default:CNY"`
	Type            string         `json:"type" gorm:"size:20;not null;index"`                // income/expense/transfer
	Status          string         `json:"status" gorm:"size:20;not null;default:posted;index"` // posted/pending
	Description     string         `json:"description" gorm:"size:255"`
	Merchant        string         `json:"merchant" gorm:"size:100"`
	Notes           string         `json:"notes" gorm:"size:500"`
	Tags            string         `json:"tags" gorm:"size:255"` // 逗号分隔
	ReceiptURL      string         `json:"receipt_url" gorm:"size:255"`
	TaxDeductible   bool           `json:"tax_deductible" gorm:"default:false"`
	TransactionTime time.Time      `json:"transaction_time" gorm:"not null;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
	Account         Account        `json:"-" gorm:"foreignKey:AccountID"`
	Category        *Category      `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionType 校验交易类型是否合法
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense || t == TransactionTypeTransfer
}

// IsValidTransactionStatus 校验交易状态是否合法
func IsValidTransactionStatus(s string) bool {
	return s == TransactionStatusPosted || s == TransactionStatusPending
}
