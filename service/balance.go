package service

import (
	"fmt"

	"moneybook/models"

	"gorm.io/gorm"
)

// RecalculateBalance 重算账户余额
// 余额 = Σ已入账收入 − Σ已入账支出，转账类型交易不参与计算
// 每次交易创建/更新/删除后全量重算，读取汇总与回写余额在同一个数据库事务内完成，
// 避免并发修改同一账户时丢失更新
func RecalculateBalance(db *gorm.DB, accountID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var income, expense float64

		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND type = ? AND status = ?",
				accountID, models.TransactionTypeIncome, models.TransactionStatusPosted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&income).Error; err != nil {
			return fmt.Errorf("汇总收入失败: %w", err)
		}

		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND type = ? AND status = ?",
				accountID, models.TransactionTypeExpense, models.TransactionStatusPosted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&expense).Error; err != nil {
			return fmt.Errorf("汇总支出失败: %w", err)
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			Update("balance", income-expense).Error; err != nil {
			return fmt.Errorf("更新余额失败: %w", err)
		}

		return nil
	})
}

// RecalculateBalances 批量重算多个账户余额（交易换绑账户时新旧账户都需要重算）
// 重复的账户ID只重算一次
func RecalculateBalances(db *gorm.DB, accountIDs ...uint) error {
	seen := make(map[uint]bool, len(accountIDs))
	for _, id := range accountIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		if err := RecalculateBalance(db, id); err != nil {
			return err
		}
	}
	return nil
}
