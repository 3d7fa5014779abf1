package service

import (
	"fmt"
	"sort"
	"time"

	"moneybook/models"

	"gorm.io/gorm"
)

// UncategorizedName 未关联类别的交易在统计中归入的桶名
const UncategorizedName = "未分类"

// DashboardOverview 仪表盘汇总
type DashboardOverview struct {
	TotalBalance    float64             `json:"total_balance"` // 所有启用账户余额之和，与时间范围无关
	NetWorth        float64             `json:"net_worth"`
	MonthlyIncome   float64             `json:"monthly_income"`
	MonthlyExpenses float64             `json:"monthly_expenses"`
	SavingsRate     float64             `json:"savings_rate"`
	LastMonth       LastMonthComparison `json:"last_month_comparison"`
}

// LastMonthComparison 环比变化（百分比）
type LastMonthComparison struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// CategorySpending 按类别的支出统计
type CategorySpending struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

// TrendPoint 收支趋势中的一个时间桶
type TrendPoint struct {
	Date     string  `json:"date"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// MonthlySummary 单月汇总
type MonthlySummary struct {
	Month            string             `json:"month"` // 2024-01
	TotalIncome      float64            `json:"total_income"`
	TotalExpenses    float64            `json:"total_expenses"`
	Net              float64            `json:"net"`
	SavingsRate      float64            `json:"savings_rate"`
	TransactionCount int64              `json:"transaction_count"`
	TopCategories    []CategorySpending `json:"top_categories"` // 按金额取前5
}

// YearToDateSummary 年初至今汇总
type YearToDateSummary struct {
	Year               int              `json:"year"`
	TotalIncome        float64          `json:"total_income"`
	TotalExpenses      float64          `json:"total_expenses"`
	Net                float64          `json:"net"`
	AvgMonthlyIncome   float64          `json:"avg_monthly_income"`
	AvgMonthlyExpenses float64          `json:"avg_monthly_expenses"`
	SavingsRate        float64          `json:"savings_rate"`
	Months             []MonthlySummary `json:"months"`
}

// RecentTransaction 最近交易（带账户和类别名称）
type RecentTransaction struct {
	models.Transaction
	AccountName  string `json:"account_name"`
	CategoryName string `json:"category_name"`
}

// percentageChange 计算环比变化百分比
// 上期为 0 时固定返回 0，避免除零（代价是无法体现"从无到有"的增长）
func percentageChange(current, last float64) float64 {
	if last == 0 {
		return 0
	}
	return (current - last) / last * 100
}

// savingsRate 计算储蓄率 (收入−支出)/收入*100
// 支出超过收入时钳制为 0（展示层约定，负储蓄率不对外暴露），收入为 0 时为 0
func savingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	rate := (income - expenses) / income * 100
	if rate < 0 {
		return 0
	}
	return rate
}

// sumAmountInRange 汇总用户某类型已入账交易金额
func sumAmountInRange(db *gorm.DB, userID uint, txType string, start, end time.Time) (float64, error) {
	var total float64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, txType, models.TransactionStatusPosted).
		Where("transaction_time >= ? AND transaction_time <= ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("汇总交易失败: %w", err)
	}
	return total, nil
}

// monthRange 返回某月第一天 00:00:00 到最后一天 23:59:59
func monthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// GetDashboardOverview 获取仪表盘汇总
// 本月/上月收支各自独立汇总，环比上期为 0 时变化固定为 0
func GetDashboardOverview(db *gorm.DB, userID uint) (*DashboardOverview, error) {
	now := time.Now()
	thisStart, thisEnd := monthRange(now)
	lastStart, lastEnd := monthRange(thisStart.AddDate(0, -1, 0))

	thisIncome, err := sumAmountInRange(db, userID, models.TransactionTypeIncome, thisStart, thisEnd)
	if err != nil {
		return nil, err
	}
	thisExpenses, err := sumAmountInRange(db, userID, models.TransactionTypeExpense, thisStart, thisEnd)
	if err != nil {
		return nil, err
	}
	lastIncome, err := sumAmountInRange(db, userID, models.TransactionTypeIncome, lastStart, lastEnd)
	if err != nil {
		return nil, err
	}
	lastExpenses, err := sumAmountInRange(db, userID, models.TransactionTypeExpense, lastStart, lastEnd)
	if err != nil {
		return nil, err
	}

	// 总资产 = 所有启用账户余额之和
	var totalBalance float64
	if err := db.Model(&models.Account{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&totalBalance).Error; err != nil {
		return nil, fmt.Errorf("汇总账户余额失败: %w", err)
	}

	return &DashboardOverview{
		TotalBalance:    totalBalance,
		NetWorth:        totalBalance,
		MonthlyIncome:   thisIncome,
		MonthlyExpenses: thisExpenses,
		SavingsRate:     savingsRate(thisIncome, thisExpenses),
		LastMonth: LastMonthComparison{
			Income:   percentageChange(thisIncome, lastIncome),
			Expenses: percentageChange(thisExpenses, lastExpenses),
		},
	}, nil
}

// groupSpendingByCategory 对已取回的支出交易按类别名称分组
// 无类别交易归入"未分类"桶；按金额降序排列，金额相同时保持首次出现的顺序
func groupSpendingByCategory(txns []models.Transaction, categoryNames map[uint]string) []CategorySpending {
	var total float64
	index := make(map[string]int)
	result := make([]CategorySpending, 0)

	for _, tx := range txns {
		name := UncategorizedName
		if tx.CategoryID != nil {
			if n, ok := categoryNames[*tx.CategoryID]; ok {
				name = n
			}
		}
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, CategorySpending{Category: name})
		}
		result[i].Amount += tx.Amount
		result[i].Count++
		total += tx.Amount
	}

	for i := range result {
		if total > 0 {
			result[i].Percentage = result[i].Amount / total * 100
		}
	}

	// 稳定排序：金额相同的桶保持插入顺序
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result
}

// loadCategoryNames 查询交易涉及的类别名称映射
func loadCategoryNames(db *gorm.DB, txns []models.Transaction) (map[uint]string, error) {
	ids := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, tx := range txns {
		if tx.CategoryID != nil && !seen[*tx.CategoryID] {
			seen[*tx.CategoryID] = true
			ids = append(ids, *tx.CategoryID)
		}
	}
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var categories []models.Category
	if err := db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// GetSpendingByCategory 获取时间范围内按类别的支出分布
func GetSpendingByCategory(db *gorm.DB, userID uint, start, end time.Time) ([]CategorySpending, error) {
	var txns []models.Transaction
	if err := db.Where("user_id = ? AND type = ? AND status = ?",
		userID, models.TransactionTypeExpense, models.TransactionStatusPosted).
		Where("transaction_time >= ? AND transaction_time <= ?", start, end).
		Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}

	names, err := loadCategoryNames(db, txns)
	if err != nil {
		return nil, err
	}
	return groupSpendingByCategory(txns, names), nil
}

// trendInterval 趋势统计的一个时间区间 [Start, End)
type trendInterval struct {
	Label string
	Start time.Time
	End   time.Time
}

// buildTrendIntervals 构建趋势统计的完整区间列表（含空区间）
// week: 最近 7 天按日；month: 最近 30 天按日；year: 最近 12 个自然月
func buildTrendIntervals(period string, now time.Time) ([]trendInterval, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	switch period {
	case "week", "month":
		days := 7
		if period == "month" {
			days = 30
		}
		intervals := make([]trendInterval, 0, days)
		for i := days - 1; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			intervals = append(intervals, trendInterval{
				Label: day.Format("2006-01-02"),
				Start: day,
				End:   day.AddDate(0, 0, 1),
			})
		}
		return intervals, nil

	case "year":
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		intervals := make([]trendInterval, 0, 12)
		for i := 11; i >= 0; i-- {
			month := thisMonth.AddDate(0, -i, 0)
			intervals = append(intervals, trendInterval{
				Label: month.Format("2006-01"),
				Start: month,
				End:   month.AddDate(0, 1, 0),
			})
		}
		return intervals, nil

	default:
		return nil, fmt.Errorf("不支持的周期: %s", period)
	}
}

// reduceTrends 将交易归入各区间并汇总收支
// 每笔交易与每个区间做归属判断，正确性不依赖交易的排序
func reduceTrends(intervals []trendInterval, txns []models.Transaction) []TrendPoint {
	points := make([]TrendPoint, len(intervals))
	for i, iv := range intervals {
		p := TrendPoint{Date: iv.Label}
		for _, tx := range txns {
			if tx.TransactionTime.Before(iv.Start) || !tx.TransactionTime.Before(iv.End) {
				continue
			}
			switch tx.Type {
			case models.TransactionTypeIncome:
				p.Income += tx.Amount
			case models.TransactionTypeExpense:
				p.Expenses += tx.Amount
			}
		}
		p.Net = p.Income - p.Expenses
		points[i] = p
	}
	return points
}

// GetSpendingTrends 获取收支趋势
// week/month 按日分桶，year 按自然月分桶；空桶也会返回
func GetSpendingTrends(db *gorm.DB, userID uint, period string) ([]TrendPoint, error) {
	intervals, err := buildTrendIntervals(period, time.Now())
	if err != nil {
		return nil, err
	}

	start := intervals[0].Start
	end := intervals[len(intervals)-1].End

	var txns []models.Transaction
	if err := db.Where("user_id = ? AND status = ?", userID, models.TransactionStatusPosted).
		Where("transaction_time >= ? AND transaction_time < ?", start, end).
		Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}

	return reduceTrends(intervals, txns), nil
}

// GetMonthlySummary 获取单月汇总：收支合计、前5类别分布、交易笔数、储蓄率
func GetMonthlySummary(db *gorm.DB, userID uint, month time.Time) (*MonthlySummary, error) {
	start, end := monthRange(month)

	income, err := sumAmountInRange(db, userID, models.TransactionTypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := sumAmountInRange(db, userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND status = ?", userID, models.TransactionStatusPosted).
		Where("transaction_time >= ? AND transaction_time <= ?", start, end).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("统计交易笔数失败: %w", err)
	}

	breakdown, err := GetSpendingByCategory(db, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(breakdown) > 5 {
		breakdown = breakdown[:5]
	}

	return &MonthlySummary{
		Month:            start.Format("2006-01"),
		TotalIncome:      income,
		TotalExpenses:    expenses,
		Net:              income - expenses,
		SavingsRate:      savingsRate(income, expenses),
		TransactionCount: count,
		TopCategories:    breakdown,
	}, nil
}

// GetYearToDateSummary 获取年初至今汇总：逐月汇总后聚合合计与均值
func GetYearToDateSummary(db *gorm.DB, userID uint) (*YearToDateSummary, error) {
	now := time.Now()
	elapsed := int(now.Month())

	summary := &YearToDateSummary{
		Year:   now.Year(),
		Months: make([]MonthlySummary, 0, elapsed),
	}

	for m := 1; m <= elapsed; m++ {
		month := time.Date(now.Year(), time.Month(m), 1, 0, 0, 0, 0, time.Local)
		ms, err := GetMonthlySummary(db, userID, month)
		if err != nil {
			return nil, err
		}
		summary.Months = append(summary.Months, *ms)
		summary.TotalIncome += ms.TotalIncome
		summary.TotalExpenses += ms.TotalExpenses
	}

	summary.Net = summary.TotalIncome - summary.TotalExpenses
	summary.SavingsRate = savingsRate(summary.TotalIncome, summary.TotalExpenses)
	if elapsed > 0 {
		summary.AvgMonthlyIncome = summary.TotalIncome / float64(elapsed)
		summary.AvgMonthlyExpenses = summary.TotalExpenses / float64(elapsed)
	}
	return summary, nil
}

// GetRecentTransactions 获取最近的已入账交易，按时间倒序，带账户和类别名称
func GetRecentTransactions(db *gorm.DB, userID uint, limit int) ([]RecentTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var result []RecentTransaction
	err := db.Model(&models.Transaction{}).
		Select("transactions.*, accounts.name AS account_name, COALESCE(categories.name, ?) AS category_name", UncategorizedName).
		Joins("LEFT JOIN accounts ON transactions.account_id = accounts.id").
		Joins("LEFT JOIN categories ON transactions.category_id = categories.id").
		Where("transactions.user_id = ? AND transactions.status = ?", userID, models.TransactionStatusPosted).
		Order("transactions.transaction_time DESC").
		Limit(limit).
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("查询最近交易失败: %w", err)
	}
	return result, nil
}
