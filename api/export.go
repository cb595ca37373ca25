package api

import (
	"fmt"
	"net/http"

	"hisaab/middleware"
	"hisaab/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	export *service.ExportService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Export 导出记账记录
// @Summary 导出记账记录
// @Description 使用与列表相同的筛选条件导出全部匹配记录为 CSV 或 Excel 文件
// @Tags 导出
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv / xlsx" default(csv)
// @Param type query string false "income / expense / borrow / lend"
// @Param category query string false "类别"
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-01-31)"
// @Param search query string false "匹配描述或联系人"
// @Param isSettled query string false "true / false"
// @Success 200 {file} file "导出文件"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var q service.ListQuery
	if err := bindQuery(c, &q); err != nil {
		RenderError(c, err, "")
		return
	}

	file, err := h.export.Export(c.Request.Context(), middleware.GetCurrentUserID(c), c.Query("format"), q)
	if err != nil {
		RenderError(c, err, "Server error while exporting transactions")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
