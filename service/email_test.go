package service

import (
	"testing"

	"moneybook/config"
	"moneybook/models"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateBudgetAlertEmailBody(t *testing.T) {
	s := newTestEmailService()

	warn, _ := BuildBudgetAlert(BuildBudgetProgress(models.Budget{
		Name: "餐饮预算", Amount: 500, AlertEnabled: true, AlertThreshold: 80,
	}, 420))
	over, _ := BuildBudgetAlert(BuildBudgetProgress(models.Budget{
		Name: "购物预算", Amount: 300, AlertEnabled: true, AlertThreshold: 80,
	}, 350))

	body := s.generateBudgetAlertEmailBody("张三", []BudgetAlert{warn, over})
	assert.Contains(t, body, "张三")
	assert.Contains(t, body, "餐饮预算")
	assert.Contains(t, body, "已使用 84.00%")
	assert.Contains(t, body, "已超支 50.00 元")
	assert.Contains(t, body, "alert warn")
	assert.Contains(t, body, "alert over")
	assert.Contains(t, body, "请注意控制支出")
}

func TestSendBudgetAlertEmail_Disabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendBudgetAlertEmail("to@example.com", "张三", []BudgetAlert{{}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}

func TestSendBudgetAlertEmail_NoAlerts(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{Enabled: true})
	err := s.SendBudgetAlertEmail("to@example.com", "张三", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "没有需要发送")
}
