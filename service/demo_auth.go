package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hisaab/config"
	"hisaab/middleware"
	"hisaab/models"
	"hisaab/store"

	"github.com/sirupsen/logrus"
)

// 演示令牌缺少资料时的兜底值
const (
	demoFallbackName  = "Demo User"
	demoFallbackEmail = "demo@example.com"
)

// DemoRegistry 演示用户表，进程内有效，重启即清空
type DemoRegistry struct {
	mu    sync.RWMutex
	users map[string]models.Profile // email -> profile
}

// NewDemoRegistry 创建演示用户表
func NewDemoRegistry() *DemoRegistry {
	return &DemoRegistry{users: make(map[string]models.Profile)}
}

// Get 按邮箱查找
func (r *DemoRegistry) Get(email string) (*models.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.users[email]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetOrCreate 查找用户，不存在时用 build 创建，created 表示是否新建
func (r *DemoRegistry) GetOrCreate(email string, build func() models.Profile) (p *models.Profile, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[email]; ok {
		return &existing, false
	}
	np := build()
	r.users[email] = np
	return &np, true
}

// Upsert 写入用户，已存在时保留原 id 与创建时间
func (r *DemoRegistry) Upsert(p models.Profile) (stored *models.Profile, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[p.Email]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		r.users[p.Email] = p
		return &p, false
	}
	r.users[p.Email] = p
	return &p, true
}

// Len 用户数
func (r *DemoRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// DemoAuthService 演示模式认证：任意密码可登录，身份写入令牌
type DemoAuthService struct {
	registry   *DemoRegistry
	txns       store.TransactionStore
	categories store.CategoryStore
	jwt        config.JWTConfig
	now        func() time.Time
}

// NewDemoAuthService 创建演示认证服务，txns 和 categories 用于初始化新用户数据，均可为 nil
func NewDemoAuthService(registry *DemoRegistry, txns store.TransactionStore, categories store.CategoryStore, jwtCfg config.JWTConfig) *DemoAuthService {
	return &DemoAuthService{registry: registry, txns: txns, categories: categories, jwt: jwtCfg, now: time.Now}
}

// Mode 认证模式
func (s *DemoAuthService) Mode() string { return ModeDemo }

// Register 写入演示用户，同邮箱重复注册覆盖姓名
func (s *DemoAuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in = normalizeRegister(in)
	if errs := validateRegister(in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	profile, created := s.registry.Upsert(models.Profile{
		ID:        models.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: s.now(),
	})
	if created {
		s.seed(ctx, profile.ID)
	}
	return s.issue(profile)
}

// Login 任意密码均可登录，未注册的邮箱以邮箱前缀为姓名自动创建
func (s *DemoAuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := validateLogin(in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	profile, created := s.registry.GetOrCreate(in.Email, func() models.Profile {
		return models.Profile{
			ID:        models.NewID(),
			Name:      strings.SplitN(in.Email, "@", 2)[0],
			Email:     in.Email,
			CreatedAt: s.now(),
		}
	})
	if created {
		s.seed(ctx, profile.ID)
	}
	return s.issue(profile)
}

// Profile 优先返回登记表中的资料
func (s *DemoAuthService) Profile(_ context.Context, identity *models.Profile) (*models.Profile, error) {
	if p, ok := s.registry.Get(identity.Email); ok {
		return p, nil
	}
	p := *identity
	return &p, nil
}

// UpdateProfile 更新登记表中的资料，进程重启后按令牌身份重建
func (s *DemoAuthService) UpdateProfile(_ context.Context, identity *models.Profile, in ProfileUpdate) (*models.Profile, error) {
	if errs := validateProfileUpdate(&in); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	current := *identity
	if p, ok := s.registry.Get(identity.Email); ok {
		current = *p
	}
	if in.Name != nil {
		current.Name = *in.Name
	}
	if in.Avatar != nil {
		current.Avatar = *in.Avatar
	}
	stored, _ := s.registry.Upsert(current)
	return stored, nil
}

// Authenticate 仅校验签名，身份取自令牌载荷
func (s *DemoAuthService) Authenticate(_ context.Context, token string) (*models.Profile, error) {
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Email != "" {
		if p, ok := s.registry.Get(claims.Email); ok && p.ID == claims.UserID {
			return p, nil
		}
	}

	p := &models.Profile{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
	}
	if p.Name == "" {
		p.Name = demoFallbackName
	}
	if p.Email == "" {
		p.Email = demoFallbackEmail
	}
	if claims.IssuedAt != nil {
		p.CreatedAt = claims.IssuedAt.Time
	}
	return p, nil
}

func (s *DemoAuthService) issue(p *models.Profile) (*AuthResult, error) {
	token, err := middleware.GenerateDemoToken(p, s.jwt.DemoExpireTime)
	if err != nil {
		return nil, fmt.Errorf("生成 token 失败: %w", err)
	}
	return &AuthResult{Token: token, User: p}, nil
}

// seed 为新演示用户写入默认类别和示例记录，失败只记录日志
func (s *DemoAuthService) seed(ctx context.Context, userID string) {
	if s.categories != nil {
		if err := s.categories.CreateMany(ctx, models.DefaultCategories(userID, s.now())); err != nil {
			logrus.WithField("user_id", userID).Warnf("写入默认类别失败: %v", err)
		}
	}
	if s.txns == nil {
		return
	}
	for _, txn := range SampleTransactions(userID, s.now()) {
		if err := s.txns.Create(ctx, &txn); err != nil {
			logrus.WithField("user_id", userID).Warnf("写入示例记录失败: %v", err)
			return
		}
	}
}

// SampleTransactions 演示用户的示例记录：一笔收入、两笔支出、一笔借入和一笔借出
func SampleTransactions(userID string, now time.Time) []models.Transaction {
	day := 24 * time.Hour
	due := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	base := func(typ, category, desc string, amount float64, date time.Time) models.Transaction {
		return models.Transaction{
			ID:          models.NewID(),
			UserID:      userID,
			Type:        typ,
			Category:    category,
			Amount:      amount,
			Description: desc,
			Date:        date,
			Status:      models.StatusCompleted,
			IsSettled:   models.DefaultSettled(typ),
			Tags:        []string{},
		}
	}

	salary := base(models.TransactionTypeIncome, "Salary", "Monthly salary", 5000, now)
	lunch := base(models.TransactionTypeExpense, "Food & Dining", "Lunch at restaurant", 50, now.Add(-day))
	gas := base(models.TransactionTypeExpense, "Transportation", "Gas for car", 25, now.Add(-2*day))

	borrow := base(models.TransactionTypeBorrow, "Personal Loan", "Borrowed from John", 500, now.Add(-3*day))
	borrow.ContactPerson = "John Doe"
	borrow.ContactPhone = "+1234567890"
	borrow.DueDate = due(30 * day)

	lend := base(models.TransactionTypeLend, "Personal Loan", "Lent to Sarah", 200, now.Add(-4*day))
	lend.ContactPerson = "Sarah Smith"
	lend.ContactPhone = "+0987654321"
	lend.DueDate = due(15 * day)

	return []models.Transaction{salary, lunch, gas, borrow, lend}
}
