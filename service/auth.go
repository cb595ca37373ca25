package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"hisaab/config"
	"hisaab/middleware"
	"hisaab/models"
	"hisaab/store"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// 认证模式
const (
	ModePersistent = "persistent"
	ModeDemo       = "demo"
)

// 注册/资料校验提示
const (
	MsgNameRequired     = "Name is required"
	MsgNameEmpty        = "Name cannot be empty"
	MsgNameTooShort     = "Name must be at least 2 characters long"
	MsgNameTooLong      = "Name cannot exceed 50 characters"
	MsgEmailInvalid     = "Please provide a valid email"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgPasswordTooLong  = "Password cannot exceed 72 characters"
	MsgPasswordRequired = "Password is required"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	minPasswordLength = 6
	// bcrypt 只接受 72 字节以内的密码
	maxPasswordLength = 72
)

var validate = validator.New()

// Authenticator 认证服务，持久化与演示模式两种实现可互换
type Authenticator interface {
	middleware.IdentityResolver
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, identity *models.Profile) (*models.Profile, error)
	UpdateProfile(ctx context.Context, identity *models.Profile, in ProfileUpdate) (*models.Profile, error)
	Mode() string
}

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput 登录参数
type LoginInput struct {
	Email    string
	Password string
}

// ProfileUpdate 资料更新，nil 字段不修改
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

// AuthResult 注册/登录结果
type AuthResult struct {
	Token string
	User  *models.Profile
}

// AuthService 基于持久化存储的认证服务
type AuthService struct {
	users  store.UserStore
	jwt    config.JWTConfig
	mailer WelcomeMailer
	now    func() time.Time
}

// NewAuthService 创建认证服务，mailer 可为 nil
func NewAuthService(users store.UserStore, jwtCfg config.JWTConfig, mailer WelcomeMailer) *AuthService {
	return &AuthService{users: users, jwt: jwtCfg, mailer: mailer, now: time.Now}
}

// Mode 认证模式
func (s *AuthService) Mode() string { return ModePersistent }

// Register 注册用户并初始化默认类别
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in = normalizeRegister(in)
	if errs := validateRegister(in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, &ConflictError{Message: MsgUserExists}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:        models.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateWithCategories(ctx, user, models.DefaultCategories(user.ID, now)); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: MsgUserExists}
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	token, err := middleware.GenerateToken(user.ID, s.jwt.ExpireTime)
	if err != nil {
		return nil, fmt.Errorf("生成 token 失败: %w", err)
	}

	s.sendWelcome(user)
	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// sendWelcome 后台发送欢迎邮件，失败只记录日志
func (s *AuthService) sendWelcome(user *models.User) {
	if s.mailer == nil {
		return
	}
	go func(email, name string) {
		if err := s.mailer.SendWelcomeEmail(email, name); err != nil && !errors.Is(err, ErrEmailDisabled) {
			logrus.WithField("email", email).Warnf("发送欢迎邮件失败: %v", err)
		}
	}(user.Email, user.Name)
}

// Login 校验邮箱和密码，两种失败返回同一错误
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := validateLogin(in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(user.ID, s.jwt.ExpireTime)
	if err != nil {
		return nil, fmt.Errorf("生成 token 失败: %w", err)
	}
	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// Profile 返回当前用户资料
func (s *AuthService) Profile(ctx context.Context, identity *models.Profile) (*models.Profile, error) {
	user, err := s.findUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// UpdateProfile 部分更新 name / avatar
func (s *AuthService) UpdateProfile(ctx context.Context, identity *models.Profile, in ProfileUpdate) (*models.Profile, error) {
	if errs := validateProfileUpdate(&in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	user, err := s.findUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	user.UpdatedAt = s.now()
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Message: MsgUserNotFound}
		}
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user.Profile(), nil
}

// Authenticate 解析令牌并加载用户，用户不存在视为令牌无效
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return user.Profile(), nil
}

func (s *AuthService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgUserNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRegister(in RegisterInput) RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return in
}

func validateRegister(in RegisterInput) []models.FieldError {
	var errs []models.FieldError
	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameRequired})
	case n < minNameLength:
		errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameTooShort})
	case n > maxNameLength:
		errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameTooLong})
	}
	if validate.Var(in.Email, "required,email") != nil {
		errs = append(errs, models.FieldError{Path: "email", Msg: MsgEmailInvalid})
	}
	switch n := len(in.Password); {
	case n < minPasswordLength:
		errs = append(errs, models.FieldError{Path: "password", Msg: MsgPasswordTooShort})
	case n > maxPasswordLength:
		errs = append(errs, models.FieldError{Path: "password", Msg: MsgPasswordTooLong})
	}
	return errs
}

func validateLogin(in LoginInput) []models.FieldError {
	var errs []models.FieldError
	if validate.Var(in.Email, "required,email") != nil {
		errs = append(errs, models.FieldError{Path: "email", Msg: MsgEmailInvalid})
	}
	if in.Password == "" {
		errs = append(errs, models.FieldError{Path: "password", Msg: MsgPasswordRequired})
	}
	return errs
}

// validateProfileUpdate 校验并规整资料更新参数
func validateProfileUpdate(in *ProfileUpdate) []models.FieldError {
	var errs []models.FieldError
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
		switch n := utf8.RuneCountInString(name); {
		case n == 0:
			errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameEmpty})
		case n < minNameLength:
			errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameTooShort})
		case n > maxNameLength:
			errs = append(errs, models.FieldError{Path: "name", Msg: MsgNameTooLong})
		}
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		in.Avatar = &avatar
	}
	return errs
}
