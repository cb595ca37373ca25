package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hisaab/models"
)

// memoryDB 进程内存储，进程退出即丢失
type memoryDB struct {
	mu           sync.RWMutex
	users        map[string]models.User
	emails       map[string]string // email -> user id
	categories   map[string][]models.Category
	transactions map[string]models.Transaction
}

// NewMemoryStore 创建内存存储，用于演示模式和测试
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:        make(map[string]models.User),
		emails:       make(map[string]string),
		categories:   make(map[string][]models.Category),
		transactions: make(map[string]models.Transaction),
	}
	return &Store{
		Driver:       DriverMemory,
		Users:        &memoryUserStore{db: db},
		Categories:   &memoryCategoryStore{db: db},
		Transactions: &memoryTransactionStore{db: db},
	}
}

type memoryUserStore struct {
	db *memoryDB
}

func (s *memoryUserStore) CreateWithCategories(_ context.Context, user *models.User, categories []models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.emails[user.Email]; ok {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	s.db.users[user.ID] = *user
	s.db.emails[user.Email] = user.ID
	if len(categories) > 0 {
		s.db.categories[user.ID] = append(s.db.categories[user.ID], categories...)
	}
	return nil
}

func (s *memoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.db.users[id]
	return &user, nil
}

func (s *memoryUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = user.Name
	existing.Avatar = user.Avatar
	existing.UpdatedAt = user.UpdatedAt
	s.db.users[user.ID] = existing
	return nil
}

type memoryCategoryStore struct {
	db *memoryDB
}

func (s *memoryCategoryStore) ListByUser(_ context.Context, userID, categoryType string) ([]models.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var list []models.Category
	for _, c := range s.db.categories[userID] {
		if categoryType == "" || c.Type == categoryType {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Type != list[j].Type {
			return list[i].Type < list[j].Type
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (s *memoryCategoryStore) CreateMany(_ context.Context, categories []models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, c := range categories {
		s.db.categories[c.UserID] = append(s.db.categories[c.UserID], c)
	}
	return nil
}

type memoryTransactionStore struct {
	db *memoryDB
}

func (s *memoryTransactionStore) Create(_ context.Context, txn *models.Transaction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if txn.ID == "" {
		txn.ID = models.NewID()
	}
	if _, ok := s.db.transactions[txn.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now
	s.db.transactions[txn.ID] = copyTransaction(*txn)
	return nil
}

func (s *memoryTransactionStore) Get(_ context.Context, userID, id string) (*models.Transaction, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	txn, ok := s.db.transactions[id]
	if !ok || txn.UserID != userID {
		return nil, ErrNotFound
	}
	out := copyTransaction(txn)
	return &out, nil
}

func (s *memoryTransactionStore) List(_ context.Context, userID string, filter TransactionFilter) ([]models.Transaction, int64, error) {
	matched := s.collect(func(t *models.Transaction) bool {
		return t.UserID == userID && matchFilter(t, filter)
	})
	total := int64(len(matched))

	if filter.Limit > 0 {
		offset := filter.Offset()
		if offset >= len(matched) {
			return []models.Transaction{}, total, nil
		}
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

// collect 返回按日期倒序排列的匹配记录副本
func (s *memoryTransactionStore) collect(match func(t *models.Transaction) bool) []models.Transaction {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	list := make([]models.Transaction, 0)
	for _, txn := range s.db.transactions {
		if match(&txn) {
			list = append(list, copyTransaction(txn))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Date.After(list[j].Date)
	})
	return list
}

func matchFilter(t *models.Transaction, f TransactionFilter) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && !containsFold(t.Category, f.Category) {
		return false
	}
	if f.IsSettled != nil && t.IsSettled != *f.IsSettled {
		return false
	}
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}
	if f.Search != "" && !containsFold(t.Description, f.Search) && !containsFold(t.ContactPerson, f.Search) {
		return false
	}
	return true
}

func (s *memoryTransactionStore) Update(_ context.Context, txn *models.Transaction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.transactions[txn.ID]
	if !ok || existing.UserID != txn.UserID {
		return ErrNotFound
	}
	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now()
	s.db.transactions[txn.ID] = copyTransaction(*txn)
	return nil
}

func (s *memoryTransactionStore) Delete(_ context.Context, userID, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	txn, ok := s.db.transactions[id]
	if !ok || txn.UserID != userID {
		return ErrNotFound
	}
	delete(s.db.transactions, id)
	return nil
}

func (s *memoryTransactionStore) Settle(_ context.Context, userID, id string, at time.Time) (*models.Transaction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	txn, ok := s.db.transactions[id]
	if !ok || txn.UserID != userID || !txn.IsDebt() {
		return nil, ErrNotFound
	}
	settledAt := at
	txn.IsSettled = true
	txn.SettlementDate = &settledAt
	txn.Status = models.StatusCompleted
	txn.UpdatedAt = time.Now()
	s.db.transactions[id] = txn
	out := copyTransaction(txn)
	return &out, nil
}

func (s *memoryTransactionStore) TotalsByType(_ context.Context, userID string, since time.Time) ([]models.TypeTotal, error) {
	list := s.collect(func(t *models.Transaction) bool {
		return t.UserID == userID && !t.Date.Before(since)
	})
	return sumByType(list), nil
}

func (s *memoryTransactionStore) ExpensesByCategory(_ context.Context, userID string, since time.Time, limit int) ([]models.CategoryTotal, error) {
	list := s.collect(func(t *models.Transaction) bool {
		return t.UserID == userID && t.Type == models.TransactionTypeExpense && !t.Date.Before(since)
	})

	index := make(map[string]int)
	rows := make([]models.CategoryTotal, 0)
	for _, t := range list {
		i, ok := index[t.Category]
		if !ok {
			i = len(rows)
			index[t.Category] = i
			rows = append(rows, models.CategoryTotal{Category: t.Category})
		}
		rows[i].TotalAmount += t.Amount
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalAmount > rows[j].TotalAmount })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *memoryTransactionStore) OutstandingDebts(_ context.Context, userID string) ([]models.TypeTotal, error) {
	list := s.collect(func(t *models.Transaction) bool {
		return t.UserID == userID && t.IsDebt() && !t.IsSettled
	})
	return sumByType(list), nil
}

func (s *memoryTransactionStore) Recent(_ context.Context, userID string, limit int) ([]models.Transaction, error) {
	list := s.collect(func(t *models.Transaction) bool { return t.UserID == userID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func sumByType(list []models.Transaction) []models.TypeTotal {
	index := make(map[string]int)
	rows := make([]models.TypeTotal, 0)
	for _, t := range list {
		i, ok := index[t.Type]
		if !ok {
			i = len(rows)
			index[t.Type] = i
			rows = append(rows, models.TypeTotal{Type: t.Type})
		}
		rows[i].Total += t.Amount
		rows[i].Count++
	}
	return rows
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func copyTransaction(t models.Transaction) models.Transaction {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.SettlementDate != nil {
		d := *t.SettlementDate
		t.SettlementDate = &d
	}
	return t
}
