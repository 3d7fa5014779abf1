package api

import (
	"strconv"
	"time"

	"moneybook/config"
	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	emailService *service.EmailService
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(cfg *config.Config) *BudgetHandler {
	return &BudgetHandler{
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// CreateBudgetRequest 创建预算请求
type CreateBudgetRequest struct {
	Name           string   `json:"name" binding:"required,max=100" example:"餐饮月度预算"`
	Amount         float64  `json:"amount" binding:"required,gt=0" example:"500"`
	Period         string   `json:"period" binding:"required" example:"monthly"`
	StartDate      string   `json:"start_date" binding:"required" example:"2024-01-01"`
	EndDate        string   `json:"end_date" example:"2024-12-31"`
	CategoryID     *uint    `json:"category_id"`
	Rollover       bool     `json:"rollover"`
	AlertEnabled   bool     `json:"alert_enabled"`
	AlertThreshold *float64 `json:"alert_threshold" example:"80"`
}

// UpdateBudgetRequest 更新预算请求
type UpdateBudgetRequest struct {
	Name           string   `json:"name" binding:"omitempty,max=100"`
	Amount         *float64 `json:"amount" binding:"omitempty,gt=0"`
	Period         string   `json:"period"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	AlertEnabled   *bool    `json:"alert_enabled"`
	AlertThreshold *float64 `json:"alert_threshold"`
}

// Create 创建预算
// @Summary 创建预算
// @Description 创建预算，限定类别时类别必须是系统类别或本人的自定义类别
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !models.IsValidBudgetPeriod(req.Period) {
		BadRequest(c, "无效的预算周期，可选值：weekly、monthly、yearly")
		return
	}

	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		// 包含结束日期当天
		t = t.Add(24*time.Hour - time.Second)
		if t.Before(startDate) {
			BadRequest(c, "结束日期不能早于开始日期")
			return
		}
		endDate = &t
	}

	// 限定类别时校验归属：不是本人类别也不是系统类别则视为不存在
	if req.CategoryID != nil {
		if _, ok := checkCategory(userID, *req.CategoryID); !ok {
			NotFound(c, "类别不存在")
			return
		}
	}

	threshold := float64(models.DefaultAlertThreshold)
	if req.AlertThreshold != nil {
		if *req.AlertThreshold <= 0 || *req.AlertThreshold > 100 {
			BadRequest(c, "提醒阈值应在 (0, 100] 之间")
			return
		}
		threshold = *req.AlertThreshold
	}

	budget := models.Budget{
		UserID:         userID,
		Name:           req.Name,
		Amount:         req.Amount,
		Period:         req.Period,
		StartDate:      startDate,
		EndDate:        endDate,
		CategoryID:     req.CategoryID,
		Rollover:       req.Rollover,
		AlertEnabled:   req.AlertEnabled,
		AlertThreshold: threshold,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取预算列表（带进度）
// @Summary 获取预算列表
// @Description 获取当前用户的预算列表并实时计算进度，可按周期过滤
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param period query string false "周期过滤：weekly/monthly/yearly"
// @Success 200 {object} Response{data=[]service.BudgetProgress} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	period := c.Query("period")
	if period != "" && !models.IsValidBudgetPeriod(period) {
		BadRequest(c, "无效的预算周期，可选值：weekly、monthly、yearly")
		return
	}

	list, err := service.ListBudgetProgress(database.DB, userID, period)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}

// Get 获取单个预算（带进度）
// @Summary 获取单个预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=service.BudgetProgress} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	progress, err := service.GetBudgetProgress(database.DB, budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算预算进度失败"))
		return
	}

	Success(c, progress)
}

// Update 更新预算
// @Summary 更新预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Period != "" {
		if !models.IsValidBudgetPeriod(req.Period) {
			BadRequest(c, "无效的预算周期，可选值：weekly、monthly、yearly")
			return
		}
		updates["period"] = req.Period
	}
	if req.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
		updates["start_date"] = t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		updates["end_date"] = t.Add(24*time.Hour - time.Second)
	}
	if req.AlertEnabled != nil {
		updates["alert_enabled"] = *req.AlertEnabled
	}
	if req.AlertThreshold != nil {
		if *req.AlertThreshold <= 0 || *req.AlertThreshold > 100 {
			BadRequest(c, "提醒阈值应在 (0, 100] 之间")
			return
		}
		updates["alert_threshold"] = *req.AlertThreshold
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&budget, budget.ID)
	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算
// @Summary 删除预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetAlerts 获取预算提醒
// @Summary 获取预算提醒
// @Description 返回已触发提醒条件的预算列表：已超支的返回超支金额，达到阈值的返回使用率，每个预算至多一条
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.BudgetAlert} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/alerts [get]
func (h *BudgetHandler) GetAlerts(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	alerts, err := service.GetBudgetAlerts(database.DB, userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, alerts)
}

// SendAlerts 将当前预算提醒发送到用户邮箱
// @Summary 发送预算提醒邮件
// @Description 将当前触发的预算提醒汇总后发送到用户邮箱，需要用户已设置邮箱且服务端启用了邮件配置
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "没有提醒或未设置邮箱"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "发送失败"
// @Router /api/v1/budgets/alerts/send [post]
func (h *BudgetHandler) SendAlerts(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}
	if user.Email == "" {
		BadRequest(c, "请先设置邮箱")
		return
	}

	alerts, err := service.GetBudgetAlerts(database.DB, userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if len(alerts) == 0 {
		BadRequest(c, "当前没有触发的预算提醒")
		return
	}

	if err := h.emailService.SendBudgetAlertEmail(user.Email, user.Username, alerts); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送邮件失败"))
		return
	}

	SuccessWithMessage(c, "发送成功", gin.H{"alert_count": len(alerts)})
}
