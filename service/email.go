package service

import (
	"fmt"
	"strings"

	"moneybook/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlertEmail 发送预算提醒邮件
func (s *EmailService) SendBudgetAlertEmail(toEmail, username string, alerts []BudgetAlert) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}
	if len(alerts) == 0 {
		return fmt.Errorf("没有需要发送的预算提醒")
	}

	subject := fmt.Sprintf("【记账系统】您有 %d 条预算提醒", len(alerts))
	body := s.generateBudgetAlertEmailBody(username, alerts)

	return s.sendEmail(toEmail, subject, body)
}

// generateBudgetAlertEmailBody 生成预算提醒邮件内容
func (s *EmailService) generateBudgetAlertEmailBody(username string, alerts []BudgetAlert) string {
	var items strings.Builder
	for _, alert := range alerts {
		itemClass := "warn"
		if alert.Budget.IsOverBudget {
			itemClass = "over"
		}
		items.WriteString(fmt.Sprintf(`
            <div class="alert %s">
                <p class="msg">%s</p>
                <p class="detail">预算上限 %.2f 元，已使用 %.2f 元，剩余 %.2f 元</p>
            </div>`,
			itemClass, alert.Message,
			alert.Budget.Amount, alert.Budget.Spent, alert.Budget.Remaining))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #f59e0b, #d97706); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .alert { border-radius: 8px; padding: 15px 20px; margin: 15px 0; }
        .alert.warn { background: #fffbeb; border-left: 4px solid #f59e0b; }
        .alert.over { background: #fef2f2; border-left: 4px solid #ef4444; }
        .alert .msg { font-weight: 600; margin: 0 0 8px; }
        .alert .detail { color: #6b7280; font-size: 13px; margin: 0; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 记账系统</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>以下预算已达到提醒条件，请注意控制支出：</p>
            %s
            <p>您可以登录系统查看详细的消费分布和预算进度。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账系统 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, username, items.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【记账系统】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明邮件服务配置正确。</p>
    <p style="color: #666;">—— 记账系统</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
