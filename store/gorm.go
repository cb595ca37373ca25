package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"hisaab/models"

	"gorm.io/gorm"
)

// NewGormStore 基于 gorm 的存储（MySQL / PostgreSQL）
func NewGormStore(db *gorm.DB, driver string) *Store {
	return &Store{
		Driver:       driver,
		Users:        &gormUserStore{db: db},
		Categories:   &gormCategoryStore{db: db},
		Transactions: &gormTransactionStore{db: db},
	}
}

type gormUserStore struct {
	db *gorm.DB
}

func (s *gormUserStore) CreateWithCategories(ctx context.Context, user *models.User, categories []models.Category) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if len(categories) > 0 {
			if err := tx.Create(&categories).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *gormUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *gormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *gormUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"avatar":     user.Avatar,
			"updated_at": user.UpdatedAt,
		}).Error
}

type gormCategoryStore struct {
	db *gorm.DB
}

func (s *gormCategoryStore) ListByUser(ctx context.Context, userID, categoryType string) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if categoryType != "" {
		query = query.Where("type = ?", categoryType)
	}
	var list []models.Category
	if err := query.Order("type ASC, name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *gormCategoryStore) CreateMany(ctx context.Context, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Create(&categories).Error
	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

type gormTransactionStore struct {
	db *gorm.DB
}

func (s *gormTransactionStore) Create(ctx context.Context, txn *models.Transaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *gormTransactionStore) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		return nil, translateError(err)
	}
	return &txn, nil
}

func (s *gormTransactionStore) List(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := applyFilter(s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit)
	}
	var list []models.Transaction
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func applyFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) LIKE ?", containsPattern(filter.Category))
	}
	if filter.IsSettled != nil {
		query = query.Where("is_settled = ?", *filter.IsSettled)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where("(LOWER(description) LIKE ? OR LOWER(contact_person) LIKE ?)", like, like)
	}
	return query
}

func (s *gormTransactionStore) Update(ctx context.Context, txn *models.Transaction) error {
	return s.db.WithContext(ctx).Model(txn).
		Where("user_id = ?", txn.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(txn).Error
}

func (s *gormTransactionStore) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormTransactionStore) Settle(ctx context.Context, userID, id string, at time.Time) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ? AND type IN ?", id, userID, debtTypes).
		Updates(map[string]interface{}{
			"is_settled":      true,
			"settlement_date": at,
			"status":          models.StatusCompleted,
		}).Error; err != nil {
		return nil, err
	}

	// 重新获取，同时过滤非借贷记录
	var txn models.Transaction
	if err := db.Where("id = ? AND user_id = ? AND type IN ?", id, userID, debtTypes).First(&txn).Error; err != nil {
		return nil, translateError(err)
	}
	return &txn, nil
}

func (s *gormTransactionStore) TotalsByType(ctx context.Context, userID string, since time.Time) ([]models.TypeTotal, error) {
	var rows []models.TypeTotal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date >= ?", userID, since).
		Group("type").
		Scan(&rows).Error
	return rows, err
}

func (s *gormTransactionStore) ExpensesByCategory(ctx context.Context, userID string, since time.Time, limit int) ([]models.CategoryTotal, error) {
	var rows []models.CategoryTotal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("category, COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS count").
		Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, since).
		Group("category").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (s *gormTransactionStore) OutstandingDebts(ctx context.Context, userID string) ([]models.TypeTotal, error) {
	var rows []models.TypeTotal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND type IN ? AND is_settled = ?", userID, debtTypes, false).
		Group("type").
		Scan(&rows).Error
	return rows, err
}

func (s *gormTransactionStore) Recent(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := s.db.WithContext(ctx).
		Select("id", "type", "category", "amount", "description", "date").
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isUniqueConstraintError 兼容未开启 TranslateError 的驱动错误文本
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "unique constraint")
}

// containsPattern 生成不区分大小写的 LIKE 子串匹配
func containsPattern(s string) string {
	return "%" + escapeLikeValue(strings.ToLower(s)) + "%"
}

// escapeLikeValue 转义 LIKE 查询中的通配符 % 和 _，防止用户输入改变匹配语义
func escapeLikeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
