package api

import (
	"hisaab/middleware"
	"hisaab/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get 获取仪表盘统计
// @Summary 获取仪表盘统计
// @Description 统计周期内的收入、支出与结余，未结清的借入/借出合计，支出类别前 10 及最近 5 条记录
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / year" default(month)
// @Success 200 {object} Response{data=models.Dashboard} "获取成功"
// @Failure 400 {object} Response "周期参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context(), middleware.GetCurrentUserID(c), c.Query("period"))
	if err != nil {
		RenderError(c, err, "Server error while fetching dashboard data")
		return
	}
	Success(c, d)
}
