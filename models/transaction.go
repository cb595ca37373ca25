package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// 记账类型
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
	TransactionTypeBorrow  = "borrow"
	TransactionTypeLend    = "lend"
)

// 记录状态
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	// MinAmount 最小金额
	MinAmount = 0.01
	// MaxDescriptionLength 描述最大长度（字符数）
	MaxDescriptionLength = 500
)

// 校验提示，与前端展示保持一致
const (
	MsgInvalidType          = "Type must be one of: income, expense, borrow, lend"
	MsgCategoryRequired     = "Category is required"
	MsgCategoryEmpty        = "Category cannot be empty"
	MsgAmountNumber         = "Amount must be a number"
	MsgAmountPositive       = "Amount must be greater than 0"
	MsgDescriptionRequired  = "Description is required"
	MsgDescriptionEmpty     = "Description cannot be empty"
	MsgDescriptionTooLong   = "Description cannot exceed 500 characters"
	MsgInvalidDate          = "Please provide a valid date"
	MsgInvalidDueDate       = "Please provide a valid due date"
	MsgInvalidStatus        = "Status must be one of: pending, completed, cancelled"
	MsgContactPersonMissing = "Contact person is required for borrow/lend transactions"
	MsgDueDateMissing       = "Due date is required for borrow/lend transactions"
	MsgTagsArray            = "Tags must be an array"
)

// Transaction 记账记录（收入 / 支出 / 借入 / 借出）
type Transaction struct {
	ID             string     `json:"_id" gorm:"primaryKey;size:36" bson:"_id"`
	UserID         string     `json:"user" gorm:"size:36;not null;index:idx_txn_user_date,priority:1;index:idx_txn_user_type,priority:1;index:idx_txn_user_category,priority:1;index:idx_txn_user_settled,priority:1" bson:"user"`
	Type           string     `json:"type" gorm:"size:20;not null;index:idx_txn_user_type,priority:2" bson:"type"`
	Category       string     `json:"category" gorm:"size:100;not null;index:idx_txn_user_category,priority:2" bson:"category"`
	Amount         float64    `json:"amount" gorm:"type:decimal(12,2);not null" bson:"amount"`
	Description    string     `json:"description" gorm:"size:500;not null" bson:"description"`
	Date           time.Time  `json:"date" gorm:"not null;index:idx_txn_user_date,priority:2,sort:desc" bson:"date"`
	Status         string     `json:"status" gorm:"size:20;not null;default:completed" bson:"status"`
	ContactPerson  string     `json:"contactPerson,omitempty" gorm:"size:100" bson:"contactPerson,omitempty"`
	ContactPhone   string     `json:"contactPhone,omitempty" gorm:"size:30" bson:"contactPhone,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	IsSettled      bool       `json:"isSettled" gorm:"index:idx_txn_user_settled,priority:2" bson:"isSettled"`
	SettlementDate *time.Time `json:"settlementDate,omitempty" bson:"settlementDate,omitempty"`
	Tags           []string   `json:"tags" gorm:"serializer:json;type:text" bson:"tags"`
	Location       string     `json:"location,omitempty" gorm:"size:200" bson:"location,omitempty"`
	Receipt        string     `json:"receipt,omitempty" gorm:"size:500" bson:"receipt,omitempty"` // 票据图片地址
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate 写入前补全主键
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

// IsDebt 是否为借入/借出记录
func (t *Transaction) IsDebt() bool {
	return IsDebtType(t.Type)
}

// Normalize 去除文本字段首尾空白
func (t *Transaction) Normalize() {
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	t.ContactPerson = strings.TrimSpace(t.ContactPerson)
	t.ContactPhone = strings.TrimSpace(t.ContactPhone)
	t.Location = strings.TrimSpace(t.Location)
	t.Receipt = strings.TrimSpace(t.Receipt)
	for i := range t.Tags {
		t.Tags[i] = strings.TrimSpace(t.Tags[i])
	}
}

// Validate 校验整条记录，借入/借出必须有联系人和到期日
func (t *Transaction) Validate() []FieldError {
	var errs []FieldError
	if !IsValidTransactionType(t.Type) {
		errs = append(errs, FieldError{Path: "type", Msg: MsgInvalidType})
	}
	if t.Category == "" {
		errs = append(errs, FieldError{Path: "category", Msg: MsgCategoryRequired})
	}
	if t.Amount < MinAmount {
		errs = append(errs, FieldError{Path: "amount", Msg: MsgAmountPositive})
	}
	if t.Description == "" {
		errs = append(errs, FieldError{Path: "description", Msg: MsgDescriptionRequired})
	} else if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		errs = append(errs, FieldError{Path: "description", Msg: MsgDescriptionTooLong})
	}
	if !IsValidStatus(t.Status) {
		errs = append(errs, FieldError{Path: "status", Msg: MsgInvalidStatus})
	}
	if t.IsDebt() {
		if t.ContactPerson == "" {
			errs = append(errs, FieldError{Path: "contactPerson", Msg: MsgContactPersonMissing})
		}
		if t.DueDate == nil {
			errs = append(errs, FieldError{Path: "dueDate", Msg: MsgDueDateMissing})
		}
	}
	return errs
}

// IsValidTransactionType 校验记账类型
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeBorrow, TransactionTypeLend:
		return true
	}
	return false
}

// IsDebtType 借入/借出
func IsDebtType(t string) bool {
	return t == TransactionTypeBorrow || t == TransactionTypeLend
}

// DefaultSettled 新记录的结清状态：借入/借出默认未结清，其余默认已结清
func DefaultSettled(t string) bool {
	return !IsDebtType(t)
}

// IsValidStatus 校验记录状态
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
