package api

import (
	"net/http"

	"hisaab/middleware"
	"hisaab/models"
	"hisaab/service"

	"github.com/gin-gonic/gin"
)

// 记账接口提示
const (
	MsgTransactionCreated = "Transaction created successfully"
	MsgTransactionUpdated = "Transaction updated successfully"
	MsgTransactionDeleted = "Transaction deleted successfully"
	MsgTransactionSettled = "Transaction marked as settled"
)

var transactionMessages = messageTable{
	"type.type":          models.MsgInvalidType,
	"category.type":      models.MsgCategoryRequired,
	"amount.type":        models.MsgAmountNumber,
	"description.type":   models.MsgDescriptionRequired,
	"date.type":          models.MsgInvalidDate,
	"status.type":        models.MsgInvalidStatus,
	"contactPerson.type": models.MsgContactPersonMissing,
	"dueDate.type":       models.MsgInvalidDueDate,
	"isSettled.type":     "isSettled must be a boolean",
	"tags.type":          models.MsgTagsArray,
}

// TransactionHandler 记账记录处理器
type TransactionHandler struct {
	txns *service.TransactionService
}

// NewTransactionHandler 创建记账记录处理器
func NewTransactionHandler(txns *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txns: txns}
}

// List 获取记账记录列表
// @Summary 获取记账记录列表
// @Description 按类型、类别、日期范围、关键字和结清状态筛选，按日期倒序分页
// @Tags 记账
// @Produce json
// @Security BearerAuth
// @Param type query string false "income / expense / borrow / lend"
// @Param category query string false "类别（不区分大小写的子串）"
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-01-31)"
// @Param search query string false "匹配描述或联系人"
// @Param isSettled query string false "true / false"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} Response{data=[]models.Transaction} "获取成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var q service.ListQuery
	if err := bindQuery(c, &q); err != nil {
		RenderError(c, err, "")
		return
	}

	res, err := h.txns.List(c.Request.Context(), middleware.GetCurrentUserID(c), q)
	if err != nil {
		RenderError(c, err, "Server error while fetching transactions")
		return
	}
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       res.Items,
		Pagination: &res.Pagination,
	})
}

// Get 获取单条记录
// @Summary 获取单条记录
// @Tags 记账
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录 ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 400 {object} Response "ID 格式错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.txns.Get(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		RenderError(c, err, "Server error while fetching transaction")
		return
	}
	Success(c, txn)
}

// Create 创建记录
// @Summary 创建记录
// @Description 借入/借出记录必须提供 contactPerson 与 dueDate
// @Tags 记账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TransactionInput true "记录"
// @Success 201 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var in service.TransactionInput
	if err := bindJSON(c, &in, transactionMessages); err != nil {
		RenderError(c, err, "Server error while creating transaction")
		return
	}

	txn, err := h.txns.Create(c.Request.Context(), middleware.GetCurrentUserID(c), in)
	if err != nil {
		RenderError(c, err, "Server error while creating transaction")
		return
	}
	Created(c, MsgTransactionCreated, txn)
}

// Update 更新记录
// @Summary 更新记录
// @Description 只修改提供的字段，合并后的记录需满足全部校验规则
// @Tags 记账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录 ID"
// @Param request body service.TransactionInput true "需要修改的字段"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	var in service.TransactionInput
	if err := bindJSON(c, &in, transactionMessages); err != nil {
		RenderError(c, err, "Server error while updating transaction")
		return
	}

	txn, err := h.txns.Update(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), in)
	if err != nil {
		RenderError(c, err, "Server error while updating transaction")
		return
	}
	SuccessWithMessage(c, MsgTransactionUpdated, txn)
}

// Delete 删除记录
// @Summary 删除记录
// @Tags 记账
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "ID 格式错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.txns.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		RenderError(c, err, "Server error while deleting transaction")
		return
	}
	SuccessWithMessage(c, MsgTransactionDeleted, nil)
}

// Settle 标记借入/借出记录为已结清
// @Summary 标记结清
// @Description 仅适用于 borrow / lend 记录，重复调用刷新结清时间
// @Tags 记账
// @Produce json
// @Security BearerAuth
// @Param id path string true "记录 ID"
// @Success 200 {object} Response{data=models.Transaction} "已结清"
// @Failure 400 {object} Response "ID 格式错误"
// @Failure 404 {object} Response "记录不存在或不是借贷记录"
// @Router /api/transactions/{id}/settle [patch]
func (h *TransactionHandler) Settle(c *gin.Context) {
	txn, err := h.txns.MarkSettled(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		RenderError(c, err, "Server error while marking transaction as settled")
		return
	}
	SuccessWithMessage(c, MsgTransactionSettled, txn)
}
