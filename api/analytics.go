package api

import (
	"strconv"
	"time"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 统计分析处理器
type AnalyticsHandler struct{}

// NewAnalyticsHandler 创建统计分析处理器
func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

// GetDashboard 获取仪表盘汇总
// @Summary 获取仪表盘汇总
// @Description 返回总资产、本月收支、储蓄率和环比上月的收支变化百分比
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.DashboardOverview} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	overview, err := service.GetDashboardOverview(database.DB, userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, overview)
}

// GetSpendingByCategory 获取按类别的支出分布
// @Summary 获取按类别的支出分布
// @Description 统计时间范围内已入账支出在各类别上的分布，按金额降序。未关联类别的交易归入"未分类"。
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=[]service.CategorySpending} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/spending-by-category [get]
func (h *AnalyticsHandler) GetSpendingByCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")
	if startTimeStr == "" || endTimeStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return
	}

	startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return
	}
	endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return
	}
	// 包含结束日期当天
	endTime = endTime.Add(24*time.Hour - time.Second)

	breakdown, err := service.GetSpendingByCategory(database.DB, userID, startTime, endTime)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, breakdown)
}

// GetTrends 获取收支趋势
// @Summary 获取收支趋势
// @Description week/month 按日分桶，year 按自然月分桶；没有交易的时间桶也会返回
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param period query string true "周期：week/month/year" Enums(week,month,year)
// @Success 200 {object} Response{data=[]service.TrendPoint} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	period := c.Query("period")
	if period != "week" && period != "month" && period != "year" {
		BadRequest(c, "period参数值错误，可选值：week、month、year")
		return
	}

	trends, err := service.GetSpendingTrends(database.DB, userID, period)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, trends)
}

// GetMonthlySummary 获取单月汇总
// @Summary 获取单月汇总
// @Description 返回指定月份的收支合计、净额、储蓄率、交易笔数和前5大支出类别
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份（格式：2024-01），默认当月"
// @Success 200 {object} Response{data=service.MonthlySummary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/monthly-summary [get]
func (h *AnalyticsHandler) GetMonthlySummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := time.Now()
	if monthStr := c.Query("month"); monthStr != "" {
		t, err := time.ParseInLocation("2006-01", monthStr, time.Local)
		if err != nil {
			BadRequest(c, "month格式错误，应为：2024-01")
			return
		}
		month = t
	}

	summary, err := service.GetMonthlySummary(database.DB, userID, month)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, summary)
}

// GetYearToDate 获取年初至今汇总
// @Summary 获取年初至今汇总
// @Description 对当年每个已过月份逐月汇总，并聚合全年合计与月均值
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.YearToDateSummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/year-to-date [get]
func (h *AnalyticsHandler) GetYearToDate(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	summary, err := service.GetYearToDateSummary(database.DB, userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, summary)
}

// GetRecent 获取最近交易
// @Summary 获取最近交易
// @Description 返回最近的已入账交易，按交易时间倒序，带账户和类别名称
// @Tags 统计分析
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量上限" default(10)
// @Success 200 {object} Response{data=[]service.RecentTransaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/recent [get]
func (h *AnalyticsHandler) GetRecent(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			BadRequest(c, "limit参数应为正整数")
			return
		}
		limit = n
	}

	list, err := service.GetRecentTransactions(database.DB, userID, limit)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}
