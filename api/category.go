package api

import (
	"strings"

	"hisaab/middleware"
	"hisaab/models"
	"hisaab/service"
	"hisaab/store"

	"github.com/gin-gonic/gin"
)

// MsgInvalidCategoryType 类别类型参数错误
const MsgInvalidCategoryType = "Type must be one of: income, expense, both"

// CategoryHandler 类别查询，类别只在注册时初始化
type CategoryHandler struct {
	categories store.CategoryStore
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(categories store.CategoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List 列出当前用户的类别
// @Summary 获取类别列表
// @Description 按类型、名称排序返回当前用户的类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param type query string false "income / expense / both"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 400 {object} Response "类型参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categoryType := strings.ToLower(strings.TrimSpace(c.Query("type")))
	if categoryType != "" && !models.IsValidCategoryType(categoryType) {
		RenderError(c, service.NewValidationError("type", MsgInvalidCategoryType), "")
		return
	}

	list, err := h.categories.ListByUser(c.Request.Context(), middleware.GetCurrentUserID(c), categoryType)
	if err != nil {
		RenderError(c, err, "Server error while fetching categories")
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	Success(c, list)
}
