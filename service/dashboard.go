package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hisaab/models"
	"hisaab/store"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardCategoryLimit = 10
	dashboardRecentLimit   = 5
)

// DashboardService 仪表盘统计
type DashboardService struct {
	txns store.TransactionStore
	now  func() time.Time
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(txns store.TransactionStore) *DashboardService {
	return &DashboardService{txns: txns, now: time.Now}
}

// Get 计算指定周期的收支统计，借贷余额与最近记录不受周期限制
func (s *DashboardService) Get(ctx context.Context, userID, period string) (*models.Dashboard, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = models.PeriodMonth
	}
	if !models.IsValidPeriod(period) {
		return nil, NewValidationError("period", MsgInvalidPeriod)
	}
	since := models.PeriodStart(period, s.now())

	var (
		totals      []models.TypeTotal
		categories  []models.CategoryTotal
		outstanding []models.TypeTotal
		recent      []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.txns.TotalsByType(gctx, userID, since)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.txns.ExpensesByCategory(gctx, userID, since, dashboardCategoryLimit)
		return err
	})
	g.Go(func() (err error) {
		outstanding, err = s.txns.OutstandingDebts(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.txns.Recent(gctx, userID, dashboardRecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("统计仪表盘失败: %w", err)
	}

	byType := models.SummariesByType(totals)
	debts := models.SummariesByType(outstanding)
	income := byType[models.TransactionTypeIncome]
	expenses := byType[models.TransactionTypeExpense]

	if categories == nil {
		categories = []models.CategoryTotal{}
	}
	recentViews := make([]models.RecentTransaction, 0, len(recent))
	for _, t := range recent {
		recentViews = append(recentViews, models.RecentTransaction{
			ID:          t.ID,
			Type:        t.Type,
			Category:    t.Category,
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.Date,
		})
	}

	return &models.Dashboard{
		Period:             period,
		Income:             income,
		Expenses:           expenses,
		Balance:            income.Total - expenses.Total,
		Borrowing:          debts[models.TransactionTypeBorrow],
		Lending:            debts[models.TransactionTypeLend],
		ExpensesByCategory: categories,
		RecentTransactions: recentViews,
	}, nil
}
