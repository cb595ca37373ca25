package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hisaab/models"
	"hisaab/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTxn(t *testing.T, st *store.Store, typ, category string, amount float64, date time.Time) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		UserID:      "u1",
		Type:        typ,
		Category:    category,
		Amount:      amount,
		Description: category + " entry",
		Date:        date,
		Status:      models.StatusCompleted,
		IsSettled:   models.DefaultSettled(typ),
		Tags:        []string{},
	}
	if txn.IsDebt() {
		due := date.AddDate(0, 1, 0)
		txn.DueDate = &due
		txn.ContactPerson = "John Doe"
	}
	require.NoError(t, st.Transactions.Create(context.Background(), txn))
	return txn
}

func TestDashboardService_Month(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := NewDashboardService(st.Transactions)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }

	seedTxn(t, st, models.TransactionTypeIncome, "Salary", 5000, now.AddDate(0, 0, -10))
	seedTxn(t, st, models.TransactionTypeExpense, "Food & Dining", 50, now.AddDate(0, 0, -1))
	seedTxn(t, st, models.TransactionTypeExpense, "Transportation", 25, now.AddDate(0, 0, -2))
	// 上月支出不计入本月
	seedTxn(t, st, models.TransactionTypeExpense, "Shopping", 300, now.AddDate(0, -1, 0))
	// 去年的未结清借入仍计入借贷余额
	seedTxn(t, st, models.TransactionTypeBorrow, "Personal Loan", 500, now.AddDate(-1, 0, 0))
	settled := seedTxn(t, st, models.TransactionTypeLend, "Personal Loan", 200, now.AddDate(0, 0, -3))
	_, err := st.Transactions.Settle(ctx, "u1", settled.ID, now)
	require.NoError(t, err)

	d, err := s.Get(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, models.PeriodMonth, d.Period)
	assert.Equal(t, models.Summary{Total: 5000, Count: 1}, d.Income)
	assert.Equal(t, models.Summary{Total: 75, Count: 2}, d.Expenses)
	assert.Equal(t, 4925.0, d.Balance)
	assert.Equal(t, models.Summary{Total: 500, Count: 1}, d.Borrowing)
	assert.Equal(t, models.Summary{}, d.Lending)

	require.Len(t, d.ExpensesByCategory, 2)
	assert.Equal(t, "Food & Dining", d.ExpensesByCategory[0].Category)
	assert.Equal(t, 50.0, d.ExpensesByCategory[0].TotalAmount)

	require.Len(t, d.RecentTransactions, 5)
	assert.Equal(t, "Food & Dining", d.RecentTransactions[0].Category)
}

func TestDashboardService_Periods(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := NewDashboardService(st.Transactions)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }

	seedTxn(t, st, models.TransactionTypeExpense, "Food & Dining", 10, now.AddDate(0, 0, -3))
	seedTxn(t, st, models.TransactionTypeExpense, "Food & Dining", 20, now.AddDate(0, 0, -10))
	seedTxn(t, st, models.TransactionTypeExpense, "Food & Dining", 40, now.AddDate(0, -2, 0))
	seedTxn(t, st, models.TransactionTypeExpense, "Food & Dining", 80, now.AddDate(-1, 0, 0))

	week, err := s.Get(ctx, "u1", "week")
	require.NoError(t, err)
	assert.Equal(t, 10.0, week.Expenses.Total)

	month, err := s.Get(ctx, "u1", "MONTH")
	require.NoError(t, err)
	assert.Equal(t, 30.0, month.Expenses.Total)

	year, err := s.Get(ctx, "u1", "year")
	require.NoError(t, err)
	assert.Equal(t, 70.0, year.Expenses.Total)
	assert.Equal(t, -70.0, year.Balance)

	_, err = s.Get(ctx, "u1", "decade")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []models.FieldError{{Path: "period", Msg: MsgInvalidPeriod}}, verr.Errors)
}

func TestDashboardService_Empty(t *testing.T) {
	s := NewDashboardService(store.NewMemoryStore().Transactions)
	d, err := s.Get(context.Background(), "nobody", "month")
	require.NoError(t, err)
	assert.Zero(t, d.Balance)
	assert.NotNil(t, d.ExpensesByCategory)
	assert.NotNil(t, d.RecentTransactions)
}

// brokenTotals 聚合失败
type brokenTotals struct {
	store.TransactionStore
}

func (brokenTotals) TotalsByType(context.Context, string, time.Time) ([]models.TypeTotal, error) {
	return nil, errors.New("aggregate failed")
}

func TestDashboardService_AggregationFailure(t *testing.T) {
	s := NewDashboardService(brokenTotals{TransactionStore: store.NewMemoryStore().Transactions})
	_, err := s.Get(context.Background(), "u1", "month")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate failed")
}
