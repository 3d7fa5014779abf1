package service

import (
	"fmt"

	"moneybook/models"

	"gorm.io/gorm"
)

// BudgetProgress 带进度的预算
// 派生字段读取时实时计算，不持久化
type BudgetProgress struct {
	models.Budget
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
	IsOverBudget   bool    `json:"is_over_budget"`
}

// BudgetAlert 预算提醒
type BudgetAlert struct {
	Budget  BudgetProgress `json:"budget"`
	Message string         `json:"message"`
}

// CalculateSpending 计算预算已用金额
// 统计该用户 start_date 起（含 end_date 截止，若设置）的已入账支出交易，
// 预算限定了类别时只统计该类别
func CalculateSpending(db *gorm.DB, budget *models.Budget) (float64, error) {
	query := db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?",
			budget.UserID, models.TransactionTypeExpense, models.TransactionStatusPosted).
		Where("transaction_time >= ?", budget.StartDate)

	if budget.EndDate != nil {
		query = query.Where("transaction_time <= ?", *budget.EndDate)
	}
	if budget.CategoryID != nil {
		query = query.Where("category_id = ?", *budget.CategoryID)
	}

	var spent float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&spent).Error; err != nil {
		return 0, fmt.Errorf("汇总预算支出失败: %w", err)
	}
	return spent, nil
}

// BuildBudgetProgress 根据已用金额计算预算进度
// 预算上限为 0 时使用率记为 0（+Inf 无法编码为 JSON）
func BuildBudgetProgress(budget models.Budget, spent float64) BudgetProgress {
	progress := BudgetProgress{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Amount - spent,
	}
	if budget.Amount > 0 {
		progress.PercentageUsed = spent / budget.Amount * 100
	}
	progress.IsOverBudget = spent > budget.Amount
	return progress
}

// GetBudgetProgress 查询单个预算并计算进度
func GetBudgetProgress(db *gorm.DB, budget models.Budget) (BudgetProgress, error) {
	spent, err := CalculateSpending(db, &budget)
	if err != nil {
		return BudgetProgress{}, err
	}
	return BuildBudgetProgress(budget, spent), nil
}

// ListBudgetProgress 查询用户全部预算并逐个计算进度，可按周期过滤
func ListBudgetProgress(db *gorm.DB, userID uint, period string) ([]BudgetProgress, error) {
	query := db.Where("user_id = ?", userID)
	if period != "" {
		query = query.Where("period = ?", period)
	}

	var budgets []models.Budget
	if err := query.Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}

	result := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		progress, err := GetBudgetProgress(db, b)
		if err != nil {
			return nil, err
		}
		result = append(result, progress)
	}
	return result, nil
}

// BuildBudgetAlert 根据预算进度生成提醒消息
// 超支提醒优先于阈值提醒，每个预算至多一条；无需提醒时返回 false
func BuildBudgetAlert(progress BudgetProgress) (BudgetAlert, bool) {
	if !progress.AlertEnabled {
		return BudgetAlert{}, false
	}

	threshold := progress.AlertThreshold
	if threshold <= 0 {
		threshold = models.DefaultAlertThreshold
	}

	if progress.IsOverBudget {
		return BudgetAlert{
			Budget: progress,
			Message: fmt.Sprintf("预算「%s」已超支 %.2f 元",
				progress.Name, progress.Spent-progress.Amount),
		}, true
	}
	if progress.PercentageUsed >= threshold {
		return BudgetAlert{
			Budget: progress,
			Message: fmt.Sprintf("预算「%s」已使用 %.2f%%",
				progress.Name, progress.PercentageUsed),
		}, true
	}
	return BudgetAlert{}, false
}

// GetBudgetAlerts 获取用户所有触发条件的预算提醒
func GetBudgetAlerts(db *gorm.DB, userID uint) ([]BudgetAlert, error) {
	var budgets []models.Budget
	if err := db.Where("user_id = ? AND alert_enabled = ?", userID, true).
		Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("查询预算失败: %w", err)
	}

	alerts := make([]BudgetAlert, 0)
	for _, b := range budgets {
		progress, err := GetBudgetProgress(db, b)
		if err != nil {
			return nil, err
		}
		if alert, ok := BuildBudgetAlert(progress); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}
