package models

import (
	"time"

	"gorm.io/gorm"
)

// 账户类型常量
const (
	AccountTypeChecking   = "checking"   // 活期/储蓄卡
	AccountTypeSavings    = "savings"    // 储蓄账户
	AccountTypeCredit     = "credit"     // 信用卡
	AccountTypeInvestment = "investment" // 投资账户
	AccountTypeLoan       = "loan"       // 贷款
	AccountTypeMortgage   = "mortgage"   // 房贷
	AccountTypeOther      = "other"      // 其他
)

// Account 账户模型
// Balance 为派生缓存字段，由余额重算服务根据已入账交易重新计算后覆盖写入
type Account struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Type        string         `json:"type" gorm:"size:20;not null;default:checking"` // 账户类型
	Balance     float64        `json:"balance" gorm:"type:decimal(12,2);default:0"`   // 缓存余额（派生值）
	Institution string         `json:"institution" gorm:"size:100"`                   // 开户机构
	Currency    string         `json:"currency" gorm:"size:10;default:CNY"`
	IsActive    bool           `json:"is_active" gorm:"default:true;index"` // 停用账户不计入总资产
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}

// GetAccountTypes 获取所有账户类型
func GetAccountTypes() []string {
	return []string{
		AccountTypeChecking,
		AccountTypeSavings,
		AccountTypeCredit,
		AccountTypeInvestment,
		AccountTypeLoan,
		AccountTypeMortgage,
		AccountTypeOther,
	}
}

// IsValidAccountType 校验账户类型是否合法
func IsValidAccountType(t string) bool {
	for _, v := range GetAccountTypes() {
		if v == t {
			return true
		}
	}
	return false
}
