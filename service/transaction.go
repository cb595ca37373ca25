package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"hisaab/models"
	"hisaab/store"
)

// 列表分页参数
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery 列表查询参数，保持查询字符串原样，由服务层解析
type ListQuery struct {
	Type      string `form:"type"`
	Category  string `form:"category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Search    string `form:"search"`
	IsSettled string `form:"isSettled"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

// Pagination 分页信息
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListResult 列表结果
type ListResult struct {
	Items      []models.Transaction
	Pagination Pagination
}

// TransactionInput 创建/更新参数，nil 字段表示未提供
type TransactionInput struct {
	Type          *string  `json:"type"`
	Category      *string  `json:"category"`
	Amount        *float64 `json:"amount"`
	Description   *string  `json:"description"`
	Date          *string  `json:"date"`
	Status        *string  `json:"status"`
	ContactPerson *string  `json:"contactPerson"`
	ContactPhone  *string  `json:"contactPhone"`
	DueDate       *string  `json:"dueDate"`
	IsSettled     *bool    `json:"isSettled"`
	Tags          []string `json:"tags"`
	Location      *string  `json:"location"`
	Receipt       *string  `json:"receipt"`
}

// TransactionService 记账记录服务
type TransactionService struct {
	txns store.TransactionStore
	now  func() time.Time
}

// NewTransactionService 创建记账记录服务
func NewTransactionService(txns store.TransactionStore) *TransactionService {
	return &TransactionService{txns: txns, now: time.Now}
}

// List 按条件分页查询，按日期倒序
func (s *TransactionService) List(ctx context.Context, userID string, q ListQuery) (*ListResult, error) {
	filter, err := ParseFilter(q, true)
	if err != nil {
		return nil, err
	}

	items, total, err := s.txns.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return &ListResult{
		Items: items,
		Pagination: Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// ParseFilter 解析查询参数，paginate 为 false 时返回全部匹配记录
func ParseFilter(q ListQuery, paginate bool) (store.TransactionFilter, error) {
	filter := store.TransactionFilter{
		Type:     strings.TrimSpace(q.Type),
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
	}

	var errs []models.FieldError
	if v := strings.TrimSpace(q.StartDate); v != "" {
		t, err := models.ParseDate(v)
		if err != nil {
			errs = append(errs, models.FieldError{Path: "startDate", Msg: models.MsgInvalidDate})
		} else {
			filter.StartDate = &t
		}
	}
	if v := strings.TrimSpace(q.EndDate); v != "" {
		t, err := models.ParseDate(v)
		if err != nil {
			errs = append(errs, models.FieldError{Path: "endDate", Msg: models.MsgInvalidDate})
		} else {
			// 只有日期时包含当天全部记录
			if models.IsDateOnly(v) {
				t = models.EndOfDay(t)
			}
			filter.EndDate = &t
		}
	}
	if len(errs) > 0 {
		return filter, &ValidationError{Errors: errs}
	}

	switch strings.ToLower(strings.TrimSpace(q.IsSettled)) {
	case "true":
		settled := true
		filter.IsSettled = &settled
	case "false":
		settled := false
		filter.IsSettled = &settled
	}

	if paginate {
		filter.Page = parsePositive(q.Page, DefaultPage)
		filter.Limit = parsePositive(q.Limit, DefaultLimit)
		if filter.Limit > MaxLimit {
			filter.Limit = MaxLimit
		}
	}
	return filter, nil
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Get 查询单条记录
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if !models.IsValidID(id) {
		return nil, NewValidationError("id", MsgInvalidID)
	}
	return s.find(ctx, userID, id)
}

// Create 创建记录
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	now := s.now()
	txn := &models.Transaction{
		ID:        models.NewID(),
		UserID:    userID,
		Date:      now,
		Status:    models.StatusCompleted,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	var errs []models.FieldError
	if in.Amount == nil {
		errs = append(errs, models.FieldError{Path: "amount", Msg: models.MsgAmountNumber})
	}
	errs = append(errs, in.applyTo(txn)...)
	if in.IsSettled == nil {
		txn.IsSettled = models.DefaultSettled(txn.Type)
	}
	txn.Normalize()
	if errs = mergeFieldErrors(errs, txn.Validate()); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("创建记录失败: %w", err)
	}
	return txn, nil
}

// Update 部分更新，合并后的记录需整体满足校验规则
func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error) {
	if !models.IsValidID(id) {
		return nil, NewValidationError("id", MsgInvalidID)
	}
	txn, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wasDebt := txn.IsDebt()
	errs := in.emptyFieldErrors()
	errs = append(errs, in.applyTo(txn)...)
	// 类型跨越借贷边界时重置结清状态
	if txn.IsDebt() != wasDebt {
		if in.IsSettled == nil {
			txn.IsSettled = models.DefaultSettled(txn.Type)
		}
		txn.SettlementDate = nil
	}
	txn.Normalize()
	if errs = mergeFieldErrors(errs, txn.Validate()); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	txn.UpdatedAt = s.now()
	if err := s.txns.Update(ctx, txn); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Message: MsgTransactionMissing}
		}
		return nil, fmt.Errorf("更新记录失败: %w", err)
	}
	return txn, nil
}

// Delete 删除记录
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if !models.IsValidID(id) {
		return NewValidationError("id", MsgInvalidID)
	}
	if err := s.txns.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Message: MsgTransactionMissing}
		}
		return fmt.Errorf("删除记录失败: %w", err)
	}
	return nil
}

// MarkSettled 标记借入/借出记录为已结清，重复调用会刷新结清时间
func (s *TransactionService) MarkSettled(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if !models.IsValidID(id) {
		return nil, NewValidationError("id", MsgInvalidID)
	}
	txn, err := s.txns.Settle(ctx, userID, id, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgSettleMissing}
	}
	if err != nil {
		return nil, fmt.Errorf("结清记录失败: %w", err)
	}
	return txn, nil
}

func (s *TransactionService) find(ctx context.Context, userID, id string) (*models.Transaction, error) {
	txn, err := s.txns.Get(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgTransactionMissing}
	}
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	return txn, nil
}

// applyTo 将已提供的字段写入记录，返回日期解析错误
func (in TransactionInput) applyTo(txn *models.Transaction) []models.FieldError {
	var errs []models.FieldError
	if in.Type != nil {
		txn.Type = strings.TrimSpace(*in.Type)
	}
	if in.Category != nil {
		txn.Category = *in.Category
	}
	if in.Amount != nil {
		txn.Amount = *in.Amount
	}
	if in.Description != nil {
		txn.Description = *in.Description
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		if t, err := models.ParseDate(strings.TrimSpace(*in.Date)); err != nil {
			errs = append(errs, models.FieldError{Path: "date", Msg: models.MsgInvalidDate})
		} else {
			txn.Date = t
		}
	}
	if in.Status != nil {
		txn.Status = strings.TrimSpace(*in.Status)
	}
	if in.ContactPerson != nil {
		txn.ContactPerson = *in.ContactPerson
	}
	if in.ContactPhone != nil {
		txn.ContactPhone = *in.ContactPhone
	}
	if in.DueDate != nil {
		if v := strings.TrimSpace(*in.DueDate); v == "" {
			txn.DueDate = nil
		} else if t, err := models.ParseDate(v); err != nil {
			errs = append(errs, models.FieldError{Path: "dueDate", Msg: models.MsgInvalidDueDate})
		} else {
			txn.DueDate = &t
		}
	}
	if in.IsSettled != nil {
		txn.IsSettled = *in.IsSettled
	}
	if in.Tags != nil {
		txn.Tags = append([]string{}, in.Tags...)
	}
	if in.Location != nil {
		txn.Location = *in.Location
	}
	if in.Receipt != nil {
		txn.Receipt = *in.Receipt
	}
	return errs
}

// emptyFieldErrors 更新时显式置空的必填字段
func (in TransactionInput) emptyFieldErrors() []models.FieldError {
	var errs []models.FieldError
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		errs = append(errs, models.FieldError{Path: "category", Msg: models.MsgCategoryEmpty})
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		errs = append(errs, models.FieldError{Path: "description", Msg: models.MsgDescriptionEmpty})
	}
	return errs
}

// mergeFieldErrors 合并错误，同一字段只保留第一条
func mergeFieldErrors(first, rest []models.FieldError) []models.FieldError {
	seen := make(map[string]bool, len(first))
	for _, fe := range first {
		seen[fe.Path] = true
	}
	for _, fe := range rest {
		if !seen[fe.Path] {
			first = append(first, fe)
			seen[fe.Path] = true
		}
	}
	return first
}
