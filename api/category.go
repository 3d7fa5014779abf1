package api

import (
	"strconv"
	"strings"

	"moneybook/database"
	"moneybook/middleware"
	"moneybook/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建自定义类别请求
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,max=50" example:"宠物"`
	Type     string `json:"type" binding:"required" example:"expense"`
	Icon     string `json:"icon" example:"paw"`
	Color    string `json:"color" example:"#f59e0b"`
	ParentID *uint  `json:"parent_id"`
	Sort     int    `json:"sort" example:"10"`
}

// UpdateCategoryRequest 更新自定义类别请求
type UpdateCategoryRequest struct {
	Name  string `json:"name" binding:"omitempty,max=50" example:"宠物"`
	Icon  string `json:"icon" example:"paw"`
	Color string `json:"color" example:"#f59e0b"`
	Sort  *int   `json:"sort"`
}

// List 获取类别列表（系统类别 + 当前用户自定义类别）
// @Summary 获取类别列表
// @Description 返回系统内置类别和当前用户的自定义类别，可按类型过滤。未登录时仅返回系统类别。
// @Tags 类别
// @Produce json
// @Param type query string false "类别类型过滤：income/expense/transfer"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// 系统类别对所有人可见，自定义类别只对本人可见
	query := database.DB.Model(&models.Category{})
	if userID > 0 {
		query = query.Where("user_id IS NULL OR user_id = ?", userID)
	} else {
		query = query.Where("user_id IS NULL")
	}

	if t := c.Query("type"); t != "" {
		if !models.IsValidCategoryType(t) {
			BadRequest(c, "无效的类别类型")
			return
		}
		query = query.Where("type = ?", t)
	}

	var list []models.Category
	if err := query.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}

// Create 创建自定义类别
// @Summary 创建自定义类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "父类别不存在"
// @Failure 409 {object} Response "类别名称已存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "类别名称不能为空")
		return
	}
	if !models.IsValidCategoryType(req.Type) {
		BadRequest(c, "无效的类别类型")
		return
	}

	// 同名检查（系统类别和本人的自定义类别范围内）
	var existing models.Category
	if err := database.DB.
		Where("name = ? AND (user_id IS NULL OR user_id = ?)", req.Name, userID).
		First(&existing).Error; err == nil {
		Conflict(c, "类别名称已存在")
		return
	}

	// 父类别必须可见（系统或本人），且只允许一级结构
	if req.ParentID != nil {
		var parent models.Category
		if err := database.DB.
			Where("id = ? AND (user_id IS NULL OR user_id = ?)", *req.ParentID, userID).
			First(&parent).Error; err != nil {
			NotFound(c, "父类别不存在")
			return
		}
		if parent.ParentID != nil {
			BadRequest(c, "类别只支持一级父子结构")
			return
		}
	}

	category := models.Category{
		UserID:   &userID,
		Name:     req.Name,
		Type:     req.Type,
		Icon:     req.Icon,
		Color:    req.Color,
		ParentID: req.ParentID,
		Sort:     req.Sort,
	}

	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// Update 更新自定义类别
// @Summary 更新自定义类别
// @Description 只能修改本人的自定义类别，系统类别不可修改
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body UpdateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	// 系统类别 user_id 为 NULL，条件不会命中，对用户表现为 404
	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Icon != "" {
		updates["icon"] = req.Icon
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除自定义类别
// @Summary 删除自定义类别
// @Description 只能删除本人的自定义类别；引用该类别的交易保留，统计时归入"未分类"
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	if err := database.DB.Delete(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
