package service

import (
	"errors"
	"strings"

	"hisaab/models"
)

var (
	// ErrInvalidCredentials 邮箱或密码错误，不区分具体原因
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized 令牌无效或用户已不存在
	ErrUnauthorized = errors.New("token is not valid")
)

// 通用提示
const (
	MsgValidationFailed   = "Validation failed"
	MsgUserExists         = "User already exists with this email"
	MsgUserNotFound       = "User not found"
	MsgBadCredentials     = "Invalid email or password"
	MsgTransactionMissing = "Transaction not found"
	MsgSettleMissing      = "Transaction not found or not a borrow/lend transaction"
	MsgInvalidID          = "Invalid transaction ID"
	MsgInvalidPeriod      = "Period must be one of: week, month, year"
	MsgInvalidFormat      = "Format must be one of: csv, xlsx"
)

// ValidationError 字段级校验失败
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Path + ": " + fe.Msg
	}
	return MsgValidationFailed + ": " + strings.Join(msgs, "; ")
}

// NewValidationError 构造单字段校验错误
func NewValidationError(path, msg string) *ValidationError {
	return &ValidationError{Errors: []models.FieldError{{Path: path, Msg: msg}}}
}

// NotFoundError 记录不存在或不属于当前用户
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError 唯一约束冲突
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// BadRequestError 无法归入字段校验的非法请求
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }
