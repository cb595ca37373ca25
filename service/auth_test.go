package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hisaab/config"
	"hisaab/middleware"
	"hisaab/models"
	"hisaab/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT: config.JWTConfig{
			Secret:         "service-test-secret",
			ExpireTime:     30 * 24 * time.Hour,
			DemoExpireTime: 365 * 24 * time.Hour,
		},
	}
	middleware.InitJWT(cfg)
	return cfg.JWT
}

// recordingMailer 记录欢迎邮件收件人
type recordingMailer struct {
	sent chan string
}

func (m *recordingMailer) SendWelcomeEmail(toEmail, _ string) error {
	m.sent <- toEmail
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewAuthService(st.Users, testJWTConfig(), nil), st
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	s, st := newTestAuthService(t)

	res, err := s.Register(ctx, RegisterInput{Name: "  Asha  ", Email: " Asha@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", res.User.Name)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.True(t, models.IsValidID(res.User.ID))

	claims, err := middleware.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	cats, err := st.Categories.ListByUser(ctx, res.User.ID, "")
	require.NoError(t, err)
	assert.Len(t, cats, 12)
	income, err := st.Categories.ListByUser(ctx, res.User.ID, models.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Len(t, income, 4)

	// 密码以哈希保存
	user, err := st.Users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.Password)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService(t)

	_, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterInput{Name: "Other", Email: "ASHA@example.com", Password: "secret2"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, MsgUserExists, conflict.Message)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	s, _ := newTestAuthService(t)

	_, err := s.Register(context.Background(), RegisterInput{Name: "A", Email: "not-an-email", Password: "12345"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []models.FieldError{
		{Path: "name", Msg: MsgNameTooShort},
		{Path: "email", Msg: MsgEmailInvalid},
		{Path: "password", Msg: MsgPasswordTooShort},
	}, verr.Errors)
}

func TestAuthService_RegisterPasswordTooLong(t *testing.T) {
	s, st := newTestAuthService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: strings.Repeat("p", 80)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []models.FieldError{{Path: "password", Msg: MsgPasswordTooLong}}, verr.Errors)

	// 按字节计，多字节字符同样受限
	_, err = s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: strings.Repeat("密", 30)})
	require.ErrorAs(t, err, &verr)

	_, err = st.Users.FindByEmail(ctx, "asha@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	res, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: strings.Repeat("p", 72)})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuthService_RegisterSendsWelcome(t *testing.T) {
	st := store.NewMemoryStore()
	mailer := &recordingMailer{sent: make(chan string, 1)}
	s := NewAuthService(st.Users, testJWTConfig(), mailer)

	_, err := s.Register(context.Background(), RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "asha@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService(t)
	reg, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := s.Login(ctx, LoginInput{Email: "ASHA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	// 密码错误与邮箱不存在返回同一错误
	_, err = s.Login(ctx, LoginInput{Email: "asha@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, LoginInput{Email: "asha@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Errors[0].Path)
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService(t)
	reg, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	p, err := s.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, p.ID)
	assert.Equal(t, "Asha", p.Name)

	_, err = s.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// 合法令牌但用户不存在
	orphan, err := middleware.GenerateToken(models.NewID(), time.Hour)
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService(t)
	reg, err := s.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	name := "  Asha Rao "
	avatar := "https://example.com/a.png"
	p, err := s.UpdateProfile(ctx, reg.User, ProfileUpdate{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p.Name)
	assert.Equal(t, avatar, p.Avatar)

	got, err := s.Profile(ctx, reg.User)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)

	// 仅更新头像时保留姓名
	other := ""
	p, err = s.UpdateProfile(ctx, reg.User, ProfileUpdate{Avatar: &other})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p.Name)
	assert.Empty(t, p.Avatar)

	empty := "   "
	_, err = s.UpdateProfile(ctx, reg.User, ProfileUpdate{Name: &empty})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgNameEmpty, verr.Errors[0].Msg)

	_, err = s.Profile(ctx, &models.Profile{ID: models.NewID()})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, MsgUserNotFound, nf.Message)
}

// failingUserStore 模拟存储故障
type failingUserStore struct {
	store.UserStore
}

func (failingUserStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection reset")
}

func TestAuthService_StorageFailure(t *testing.T) {
	s := NewAuthService(failingUserStore{}, testJWTConfig(), nil)
	_, err := s.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection reset")
}
