package models

import (
	"time"

	"gorm.io/gorm"
)

// 类别适用的记账类型
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
	CategoryTypeBoth    = "both"
)

const (
	defaultCategoryIcon  = "📝"
	defaultCategoryColor = "#6366f1"
)

// Category 用户的记账类别，注册时批量初始化
type Category struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:36" bson:"_id"`
	UserID    string    `json:"user" gorm:"size:36;not null;uniqueIndex:idx_category_user_name" bson:"user"`
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex:idx_category_user_name" bson:"name"`
	Type      string    `json:"type" gorm:"size:20;not null" bson:"type"`
	Icon      string    `json:"icon" gorm:"size:20" bson:"icon"`
	Color     string    `json:"color" gorm:"size:20" bson:"color"`
	IsDefault bool      `json:"isDefault" gorm:"default:false" bson:"isDefault"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 写入前补全主键和展示字段
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.Icon == "" {
		c.Icon = defaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	return nil
}

// IsValidCategoryType 校验类别类型
func IsValidCategoryType(t string) bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeBoth:
		return true
	}
	return false
}

var defaultCategories = []struct {
	Name  string
	Type  string
	Icon  string
	Color string
}{
	// 收入
	{"Salary", CategoryTypeIncome, "💰", "#10b981"},
	{"Freelance", CategoryTypeIncome, "💻", "#059669"},
	{"Investment", CategoryTypeIncome, "📈", "#047857"},
	{"Bonus", CategoryTypeIncome, "🎁", "#065f46"},
	// 支出
	{"Food & Dining", CategoryTypeExpense, "🍔", "#ef4444"},
	{"Transportation", CategoryTypeExpense, "🚗", "#f97316"},
	{"Shopping", CategoryTypeExpense, "🛍️", "#eab308"},
	{"Entertainment", CategoryTypeExpense, "🎬", "#a855f7"},
	{"Bills & Utilities", CategoryTypeExpense, "🏠", "#3b82f6"},
	{"Healthcare", CategoryTypeExpense, "⚕️", "#06b6d4"},
	{"Education", CategoryTypeExpense, "📚", "#8b5cf6"},
	{"Travel", CategoryTypeExpense, "✈️", "#ec4899"},
}

// DefaultCategories 生成新用户的默认类别（4 个收入 + 8 个支出）
func DefaultCategories(userID string, now time.Time) []Category {
	cats := make([]Category, 0, len(defaultCategories))
	for _, item := range defaultCategories {
		cats = append(cats, Category{
			ID:        NewID(),
			UserID:    userID,
			Name:      item.Name,
			Type:      item.Type,
			Icon:      item.Icon,
			Color:     item.Color,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return cats
}
