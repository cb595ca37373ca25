// Package store 定义存储接口及其实现（gorm / MongoDB / 内存）
package store

import (
	"context"
	"errors"
	"time"

	"hisaab/models"
)

var (
	// ErrNotFound 记录不存在（或不属于当前用户）
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("store: duplicate record")
)

// 存储驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
	DriverMemory   = "memory"
)

// UserStore 用户存储
type UserStore interface {
	// CreateWithCategories 写入用户及其初始类别，两者要么都成功要么都不留下
	CreateWithCategories(ctx context.Context, user *models.User, categories []models.Category) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile 更新 name / avatar / updatedAt
	UpdateProfile(ctx context.Context, user *models.User) error
}

// CategoryStore 类别存储
type CategoryStore interface {
	// ListByUser 列出用户的类别，categoryType 为空时不过滤
	ListByUser(ctx context.Context, userID, categoryType string) ([]models.Category, error)
	// CreateMany 批量写入类别，用于演示用户初始化
	CreateMany(ctx context.Context, categories []models.Category) error
}

// TransactionFilter 记录查询条件，零值字段不参与过滤
type TransactionFilter struct {
	Type      string
	Category  string // 不区分大小写的子串匹配
	StartDate *time.Time
	EndDate   *time.Time
	Search    string // 匹配 description 或 contactPerson
	IsSettled *bool
	Page      int
	Limit     int // <= 0 表示不分页
}

// Offset 分页偏移量
func (f TransactionFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// TransactionStore 记账记录存储，所有读写都限定在 userID 范围内
type TransactionStore interface {
	Create(ctx context.Context, txn *models.Transaction) error
	Get(ctx context.Context, userID, id string) (*models.Transaction, error)
	// List 按日期倒序返回当前页及符合条件的总数
	List(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, int64, error)
	// Update 覆盖保存整条记录（必须已存在）
	Update(ctx context.Context, txn *models.Transaction) error
	Delete(ctx context.Context, userID, id string) error
	// Settle 将借入/借出记录标记为已结清，非借贷记录返回 ErrNotFound
	Settle(ctx context.Context, userID, id string, at time.Time) (*models.Transaction, error)

	TotalsByType(ctx context.Context, userID string, since time.Time) ([]models.TypeTotal, error)
	ExpensesByCategory(ctx context.Context, userID string, since time.Time, limit int) ([]models.CategoryTotal, error)
	// OutstandingDebts 未结清的借入/借出合计，不限时间
	OutstandingDebts(ctx context.Context, userID string) ([]models.TypeTotal, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
}

// Store 一组同源的存储实现
type Store struct {
	Driver       string
	Users        UserStore
	Categories   CategoryStore
	Transactions TransactionStore
}

var debtTypes = []string{models.TransactionTypeBorrow, models.TransactionTypeLend}
