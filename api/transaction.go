package api

import (
	"strconv"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易请求
// 金额恒为正数，收支方向由 type 表示
type CreateTransactionRequest struct {
	AccountID       uint    `json:"account_id" binding:"required" example:"1"`
	CategoryID      *uint   `json:"category_id"`
	Amount          float64 `json:"amount" binding:"required,gt=0" example:"45.99"`
	Currency        string  `json:"currency" example:"CNY"`
	Type            string  `json:"type" binding:"required" example:"expense"`
	Status          string  `json:"status" example:"posted"`
	Description     string  `json:"description" example:"午餐"`
	Merchant        string  `json:"merchant" example:"老王面馆"`
	Notes           string  `json:"notes"`
	Tags            string  `json:"tags" example:"工作日,外卖"`
	ReceiptURL      string  `json:"receipt_url"`
	TaxDeductible   bool    `json:"tax_deductible"`
	TransactionTime string  `json:"transaction_time" binding:"required" example:"2024-01-15 12:30:00"`
}

// UpdateTransactionRequest 更新交易请求
type UpdateTransactionRequest struct {
	AccountID       *uint    `json:"account_id"`
	CategoryID      *uint    `json:"category_id"`
	Amount          *float64 `json:"amount" binding:"omitempty,gt=0" example:"45.99"`
	Type            string   `json:"type" example:"expense"`
	Status          string   `json:"status" example:"posted"`
	Description     *string  `json:"description"`
	Merchant        *string  `json:"merchant"`
	Notes           *string  `json:"notes"`
	Tags            *string  `json:"tags"`
	ReceiptURL      *string  `json:"receipt_url"`
	TaxDeductible   *bool    `json:"tax_deductible"`
	TransactionTime string   `json:"transaction_time" example:"2024-01-15 12:30:00"`
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" example:"10"`
	AccountID  uint   `form:"account_id"`
	CategoryID uint   `form:"category_id"`
	Type       string `form:"type" example:"expense"`
	Status     string `form:"status" example:"posted"`
	StartTime  string `form:"start_time" example:"2024-01-01"`
	EndTime    string `form:"end_time" example:"2024-12-31"`
}

// checkAccount 校验账户属于当前用户
func checkAccount(userID, accountID uint) (*models.Account, bool) {
	var account models.Account
	if err := database.DB.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		return nil, false
	}
	return &account, true
}

// checkCategory 校验类别对当前用户可见（系统类别或本人自定义类别）
func checkCategory(userID, categoryID uint) (*models.Category, bool) {
	var category models.Category
	if err := database.DB.
		Where("id = ? AND (user_id IS NULL OR user_id = ?)", categoryID, userID).
		First(&category).Error; err != nil {
		return nil, false
	}
	return &category, true
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一笔交易并重算所属账户余额
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "账户或类别不存在"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !models.IsValidTransactionType(req.Type) {
		BadRequest(c, "无效的交易类型")
		return
	}
	if req.Status == "" {
		req.Status = models.TransactionStatusPosted
	}
	if !models.IsValidTransactionStatus(req.Status) {
		BadRequest(c, "无效的交易状态")
		return
	}

	// 账户必须属于当前用户
	account, ok := checkAccount(userID, req.AccountID)
	if !ok {
		NotFound(c, "账户不存在")
		return
	}

	// 类别必须对当前用户可见
	if req.CategoryID != nil {
		if _, ok := checkCategory(userID, *req.CategoryID); !ok {
			NotFound(c, "类别不存在")
			return
		}
	}

	// 解析时间
	txTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = account.Currency
	}

	tx := models.Transaction{
		UserID:          userID,
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Currency:        currency,
		Type:            req.Type,
		Status:          req.Status,
		Description:     req.Description,
		Merchant:        req.Merchant,
		Notes:           req.Notes,
		Tags:            req.Tags,
		ReceiptURL:      req.ReceiptURL,
		TaxDeductible:   req.TaxDeductible,
		TransactionTime: txTime,
	}

	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易失败"))
		return
	}

	// 重算账户余额
	if err := service.RecalculateBalance(database.DB, tx.AccountID); err != nil {
		InternalError(c, SafeErrorMessage(err, "余额重算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", tx)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录列表，支持分页和筛选
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param account_id query int false "账户筛选"
// @Param category_id query int false "类别筛选"
// @Param type query string false "类型筛选：income/expense/transfer"
// @Param status query string false "状态筛选：posted/pending"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.AccountID > 0 {
		query = query.Where("account_id = ?", req.AccountID)
	}
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	// 时间范围筛选
	if req.StartTime != "" {
		startTime, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local)
		if err == nil {
			query = query.Where("transaction_time >= ?", startTime)
		}
	}
	if req.EndTime != "" {
		endTime, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local)
		if err == nil {
			// 包含结束日期当天
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("transaction_time <= ?", endTime)
		}
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var txns []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("transaction_time DESC").Offset(offset).Limit(req.PageSize).Find(&txns).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     txns,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, tx)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 更新交易后重算账户余额；交易换绑账户时新旧账户都会重算
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	oldAccountID := tx.AccountID

	updates := make(map[string]interface{})
	if req.AccountID != nil && *req.AccountID != tx.AccountID {
		if _, ok := checkAccount(userID, *req.AccountID); !ok {
			NotFound(c, "账户不存在")
			return
		}
		updates["account_id"] = *req.AccountID
	}
	if req.CategoryID != nil {
		if _, ok := checkCategory(userID, *req.CategoryID); !ok {
			NotFound(c, "类别不存在")
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Type != "" {
		if !models.IsValidTransactionType(req.Type) {
			BadRequest(c, "无效的交易类型")
			return
		}
		updates["type"] = req.Type
	}
	if req.Status != "" {
		if !models.IsValidTransactionStatus(req.Status) {
			BadRequest(c, "无效的交易状态")
			return
		}
		updates["status"] = req.Status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Merchant != nil {
		updates["merchant"] = *req.Merchant
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.ReceiptURL != nil {
		updates["receipt_url"] = *req.ReceiptURL
	}
	if req.TaxDeductible != nil {
		updates["tax_deductible"] = *req.TaxDeductible
	}
	if req.TransactionTime != "" {
		txTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["transaction_time"] = txTime
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&tx).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录
	database.DB.First(&tx, tx.ID)

	// 重算余额，换绑账户时新旧账户都要重算
	if err := service.RecalculateBalances(database.DB, oldAccountID, tx.AccountID); err != nil {
		InternalError(c, SafeErrorMessage(err, "余额重算失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", tx)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除交易并重算所属账户余额
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	// 只重算被删除交易所属的账户
	if err := service.RecalculateBalance(database.DB, tx.AccountID); err != nil {
		InternalError(c, SafeErrorMessage(err, "余额重算失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
