package service

import (
	"testing"

	"moneybook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBudgetProgress(t *testing.T) {
	budget := models.Budget{Name: "餐饮预算", Amount: 500}

	progress := BuildBudgetProgress(budget, 45.99)
	assert.InDelta(t, 45.99, progress.Spent, 0.001)
	assert.InDelta(t, 454.01, progress.Remaining, 0.001)
	assert.InDelta(t, 9.198, progress.PercentageUsed, 0.001)
	assert.False(t, progress.IsOverBudget)
}

func TestBuildBudgetProgress_OverBudget(t *testing.T) {
	budget := models.Budget{Name: "娱乐预算", Amount: 200}

	progress := BuildBudgetProgress(budget, 250)
	assert.InDelta(t, -50, progress.Remaining, 0.001)
	assert.InDelta(t, 125, progress.PercentageUsed, 0.001)
	assert.True(t, progress.IsOverBudget)
}

func TestBuildBudgetProgress_ExactlyAtLimit(t *testing.T) {
	// 正好用完不算超支
	progress := BuildBudgetProgress(models.Budget{Amount: 300}, 300)
	assert.InDelta(t, 0, progress.Remaining, 0.001)
	assert.InDelta(t, 100, progress.PercentageUsed, 0.001)
	assert.False(t, progress.IsOverBudget)
}

func TestBuildBudgetProgress_ZeroAmount(t *testing.T) {
	// 预算上限为 0 时使用率固定为 0，不产生 +Inf
	progress := BuildBudgetProgress(models.Budget{Amount: 0}, 100)
	assert.Equal(t, float64(0), progress.PercentageUsed)
	assert.True(t, progress.IsOverBudget)
}

func TestBuildBudgetAlert_ThresholdReached(t *testing.T) {
	budget := models.Budget{Name: "购物预算", Amount: 300, AlertEnabled: true, AlertThreshold: 80}
	progress := BuildBudgetProgress(budget, 260)

	alert, ok := BuildBudgetAlert(progress)
	require.True(t, ok)
	assert.Contains(t, alert.Message, "购物预算")
	assert.Contains(t, alert.Message, "86.67%")
	assert.NotContains(t, alert.Message, "超支")
}

func TestBuildBudgetAlert_OverBudgetWins(t *testing.T) {
	// 超支提醒优先于阈值提醒，只生成一条
	budget := models.Budget{Name: "餐饮预算", Amount: 300, AlertEnabled: true, AlertThreshold: 80}
	progress := BuildBudgetProgress(budget, 350.50)

	alert, ok := BuildBudgetAlert(progress)
	require.True(t, ok)
	assert.Contains(t, alert.Message, "已超支 50.50 元")
}

func TestBuildBudgetAlert_BelowThreshold(t *testing.T) {
	budget := models.Budget{Name: "交通预算", Amount: 500, AlertEnabled: true, AlertThreshold: 80}
	progress := BuildBudgetProgress(budget, 100)

	_, ok := BuildBudgetAlert(progress)
	assert.False(t, ok)
}

func TestBuildBudgetAlert_Disabled(t *testing.T) {
	budget := models.Budget{Name: "餐饮预算", Amount: 100, AlertEnabled: false}
	progress := BuildBudgetProgress(budget, 200)

	_, ok := BuildBudgetAlert(progress)
	assert.False(t, ok)
}

func TestBuildBudgetAlert_DefaultThreshold(t *testing.T) {
	// 未设置阈值时按默认 80% 触发
	budget := models.Budget{Name: "住房预算", Amount: 1000, AlertEnabled: true, AlertThreshold: 0}
	progress := BuildBudgetProgress(budget, 800)

	alert, ok := BuildBudgetAlert(progress)
	require.True(t, ok)
	assert.Contains(t, alert.Message, "80.00%")
}
