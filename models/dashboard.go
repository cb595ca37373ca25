package models

import "time"

// 仪表盘统计周期
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// IsValidPeriod 校验统计周期
func IsValidPeriod(p string) bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// PeriodStart 计算统计窗口起点：week 为过去 7 天，month 为当月 1 日，year 为当年 1 月 1 日
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// Summary 金额合计与笔数
type Summary struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// TypeTotal 按记账类型分组的合计
type TypeTotal struct {
	Type  string  `json:"type" bson:"_id"`
	Total float64 `json:"total" bson:"totalAmount"`
	Count int64   `json:"count" bson:"count"`
}

// CategoryTotal 按类别分组的支出合计
type CategoryTotal struct {
	Category    string  `json:"_id" gorm:"column:category" bson:"_id"`
	TotalAmount float64 `json:"totalAmount" gorm:"column:total_amount" bson:"totalAmount"`
	Count       int64   `json:"count" gorm:"column:count" bson:"count"`
}

// RecentTransaction 最近记录的精简视图
type RecentTransaction struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Dashboard 仪表盘数据
type Dashboard struct {
	Period             string              `json:"period"`
	Income             Summary             `json:"income"`
	Expenses           Summary             `json:"expenses"`
	Balance            float64             `json:"balance"`
	Borrowing          Summary             `json:"borrowing"`
	Lending            Summary             `json:"lending"`
	ExpensesByCategory []CategoryTotal     `json:"expensesByCategory"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
}

// SummariesByType 将分组结果转为按类型索引，缺失的类型视为 0
func SummariesByType(rows []TypeTotal) map[string]Summary {
	m := make(map[string]Summary, len(rows))
	for _, r := range rows {
		m[r.Type] = Summary{Total: r.Total, Count: r.Count}
	}
	return m
}
