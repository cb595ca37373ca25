package service

import (
	"context"
	"testing"
	"time"

	"hisaab/middleware"
	"hisaab/models"
	"hisaab/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDemoAuth(t *testing.T) (*DemoAuthService, *store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewDemoAuthService(NewDemoRegistry(), st.Transactions, st.Categories, testJWTConfig()), st
}

func TestDemoAuth_LoginAnyPassword(t *testing.T) {
	ctx := context.Background()
	s, st := newTestDemoAuth(t)

	res, err := s.Login(ctx, LoginInput{Email: "Demo.User@Example.com", Password: "whatever"})
	require.NoError(t, err)
	assert.Equal(t, "demo.user", res.User.Name)
	assert.Equal(t, "demo.user@example.com", res.User.Email)

	claims, err := middleware.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "demo.user@example.com", claims.Email)
	assert.Equal(t, "demo.user", claims.Name)
	assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	// 首次登录写入示例记录
	items, total, err := st.Transactions.List(ctx, res.User.ID, store.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, items, 5)
	cats, err := st.Categories.ListByUser(ctx, res.User.ID, "")
	require.NoError(t, err)
	assert.Len(t, cats, 12)

	// 再次登录复用同一身份，不重复写入
	again, err := s.Login(ctx, LoginInput{Email: "demo.user@example.com", Password: "other"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)
	_, total, err = st.Transactions.List(ctx, res.User.ID, store.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	cats, err = st.Categories.ListByUser(ctx, res.User.ID, "")
	require.NoError(t, err)
	assert.Len(t, cats, 12)
}

func TestDemoAuth_Register(t *testing.T) {
	ctx := context.Background()
	s, st := newTestDemoAuth(t)

	first, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", first.User.Name)
	income, err := st.Categories.ListByUser(ctx, first.User.ID, models.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Len(t, income, 4)

	// 同邮箱重新注册覆盖姓名但保留 id
	second, err := s.Register(ctx, RegisterInput{Name: "Asha Rao", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Asha Rao", second.User.Name)

	_, err = s.Register(ctx, RegisterInput{Name: "A", Email: "asha@example.com", Password: "secret1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDemoAuth_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestDemoAuth(t)

	a, err := s.Login(ctx, LoginInput{Email: "a@example.com", Password: "x"})
	require.NoError(t, err)
	b, err := s.Login(ctx, LoginInput{Email: "b@example.com", Password: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, a.User.ID, b.User.ID)
}

func TestDemoAuth_Authenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestDemoAuth(t)

	res, err := s.Login(ctx, LoginInput{Email: "asha@example.com", Password: "x"})
	require.NoError(t, err)
	p, err := s.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.ID)

	// 登记表丢失后（进程重启）按令牌载荷重建身份
	fresh := NewDemoAuthService(NewDemoRegistry(), nil, nil, testJWTConfig())
	p, err = fresh.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.ID)
	assert.Equal(t, "asha", p.Name)
	assert.Equal(t, "asha@example.com", p.Email)

	// 只含 userId 的令牌使用兜底资料
	bare, err := middleware.GenerateToken(models.NewID(), time.Hour)
	require.NoError(t, err)
	p, err = fresh.Authenticate(ctx, bare)
	require.NoError(t, err)
	assert.Equal(t, demoFallbackName, p.Name)
	assert.Equal(t, demoFallbackEmail, p.Email)

	_, err = fresh.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDemoAuth_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestDemoAuth(t)

	res, err := s.Login(ctx, LoginInput{Email: "asha@example.com", Password: "x"})
	require.NoError(t, err)

	name := "Asha Rao"
	p, err := s.UpdateProfile(ctx, res.User, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p.Name)
	assert.Equal(t, res.User.ID, p.ID)

	got, err := s.Profile(ctx, res.User)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, ModeDemo, s.Mode())
}

func TestSampleTransactions(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	txns := SampleTransactions("u1", now)
	require.Len(t, txns, 5)

	for _, txn := range txns {
		txn.Normalize()
		assert.Empty(t, txn.Validate(), txn.Description)
		assert.Equal(t, "u1", txn.UserID)
	}
	assert.Equal(t, 5000.0, txns[0].Amount)
	assert.False(t, txns[3].IsSettled)
	assert.Equal(t, models.TransactionTypeLend, txns[4].Type)
}
