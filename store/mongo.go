package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"hisaab/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 集合名称
const (
	usersCollection        = "users"
	categoriesCollection   = "categories"
	transactionsCollection = "transactions"
)

// NewMongoStore 基于 MongoDB 的存储
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Driver:       DriverMongo,
		Users:        &mongoUserStore{db: db},
		Categories:   &mongoCategoryStore{db: db},
		Transactions: &mongoTransactionStore{coll: db.Collection(transactionsCollection)},
	}
}

// EnsureIndexes 创建唯一约束与常用查询索引
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "isSettled", Value: 1}}},
		},
	}
	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongo couldn't create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type mongoUserStore struct {
	db *mongo.Database
}

func (s *mongoUserStore) CreateWithCategories(ctx context.Context, user *models.User, categories []models.Category) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return translateMongoError(err)
	}
	if len(categories) == 0 {
		return nil
	}

	docs := make([]interface{}, len(categories))
	for i := range categories {
		docs[i] = categories[i]
	}
	if _, err := s.db.Collection(categoriesCollection).InsertMany(ctx, docs); err != nil {
		// 单机部署没有多文档事务，失败时回滚已写入的用户和类别
		s.rollbackUser(ctx, user.ID)
		return translateMongoError(err)
	}
	return nil
}

func (s *mongoUserStore) rollbackUser(ctx context.Context, userID string) {
	if _, err := s.db.Collection(categoriesCollection).DeleteMany(ctx, bson.D{{Key: "user", Value: userID}}); err != nil {
		logrus.Errorf("mongo couldn't rollback categories of user %s: %v", userID, err)
	}
	if _, err := s.db.Collection(usersCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}}); err != nil {
		logrus.Errorf("mongo couldn't rollback user %s: %v", userID, err)
	}
}

func (s *mongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *mongoUserStore) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (s *mongoUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	res, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: user.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: user.Name},
			{Key: "avatar", Value: user.Avatar},
			{Key: "updatedAt", Value: user.UpdatedAt},
		}}})
	if err != nil {
		return fmt.Errorf("mongo couldn't UpdateOne in UpdateProfile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoCategoryStore struct {
	db *mongo.Database
}

func (s *mongoCategoryStore) ListByUser(ctx context.Context, userID, categoryType string) ([]models.Category, error) {
	filter := bson.D{{Key: "user", Value: userID}}
	if categoryType != "" {
		filter = append(filter, bson.E{Key: "type", Value: categoryType})
	}
	opts := options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := s.db.Collection(categoriesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Find in ListByUser: %w", err)
	}
	var list []models.Category
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("mongo couldn't decode categories: %w", err)
	}
	return list, nil
}

func (s *mongoCategoryStore) CreateMany(ctx context.Context, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	docs := make([]interface{}, len(categories))
	for i := range categories {
		docs[i] = categories[i]
	}
	if _, err := s.db.Collection(categoriesCollection).InsertMany(ctx, docs); err != nil {
		return translateMongoError(err)
	}
	return nil
}

type mongoTransactionStore struct {
	coll *mongo.Collection
}

func (s *mongoTransactionStore) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = models.NewID()
	}
	now := time.Now()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, txn); err != nil {
		return translateMongoError(err)
	}
	return nil
}

func (s *mongoTransactionStore) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.coll.FindOne(ctx, ownedBy(userID, id)).Decode(&txn); err != nil {
		return nil, translateMongoError(err)
	}
	return &txn, nil
}

func (s *mongoTransactionStore) List(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := transactionQuery(userID, filter)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo couldn't CountDocuments in List: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.Limit))
	}
	list, err := s.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *mongoTransactionStore) find(ctx context.Context, query bson.D, opts *options.FindOptions) ([]models.Transaction, error) {
	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo couldn't Find transactions: %w", err)
	}
	list := make([]models.Transaction, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("mongo couldn't decode transactions: %w", err)
	}
	return list, nil
}

func (s *mongoTransactionStore) Update(ctx context.Context, txn *models.Transaction) error {
	txn.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, ownedBy(txn.UserID, txn.ID), txn)
	if err != nil {
		return fmt.Errorf("mongo couldn't ReplaceOne in Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoTransactionStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return fmt.Errorf("mongo couldn't DeleteOne in Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoTransactionStore) Settle(ctx context.Context, userID, id string, at time.Time) (*models.Transaction, error) {
	filter := append(ownedBy(userID, id), bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: debtTypes}}})
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "isSettled", Value: true},
		{Key: "settlementDate", Value: at},
		{Key: "status", Value: models.StatusCompleted},
		{Key: "updatedAt", Value: time.Now()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var txn models.Transaction
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&txn); err != nil {
		return nil, translateMongoError(err)
	}
	return &txn, nil
}

func (s *mongoTransactionStore) TotalsByType(ctx context.Context, userID string, since time.Time) ([]models.TypeTotal, error) {
	var rows []models.TypeTotal
	err := s.aggregate(ctx, totalsByTypePipeline(userID, since), &rows)
	return rows, err
}

func (s *mongoTransactionStore) ExpensesByCategory(ctx context.Context, userID string, since time.Time, limit int) ([]models.CategoryTotal, error) {
	rows := make([]models.CategoryTotal, 0)
	err := s.aggregate(ctx, expensesByCategoryPipeline(userID, since, limit), &rows)
	return rows, err
}

func (s *mongoTransactionStore) OutstandingDebts(ctx context.Context, userID string) ([]models.TypeTotal, error) {
	var rows []models.TypeTotal
	err := s.aggregate(ctx, outstandingDebtsPipeline(userID), &rows)
	return rows, err
}

func (s *mongoTransactionStore) Recent(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{
			{Key: "type", Value: 1},
			{Key: "category", Value: 1},
			{Key: "amount", Value: 1},
			{Key: "description", Value: 1},
			{Key: "date", Value: 1},
		})
	return s.find(ctx, bson.D{{Key: "user", Value: userID}}, opts)
}

func (s *mongoTransactionStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("mongo couldn't Aggregate: %w", err)
	}
	if err = cursor.All(ctx, out); err != nil {
		return fmt.Errorf("mongo couldn't decode aggregate result: %w", err)
	}
	return nil
}

func ownedBy(userID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user", Value: userID}}
}

// transactionQuery 将查询条件转换为 MongoDB 过滤文档
func transactionQuery(userID string, f TransactionFilter) bson.D {
	query := bson.D{{Key: "user", Value: userID}}
	if f.Type != "" {
		query = append(query, bson.E{Key: "type", Value: f.Type})
	}
	if f.Category != "" {
		query = append(query, bson.E{Key: "category", Value: containsRegex(f.Category)})
	}
	if f.IsSettled != nil {
		query = append(query, bson.E{Key: "isSettled", Value: *f.IsSettled})
	}
	if f.StartDate != nil || f.EndDate != nil {
		dateRange := bson.D{}
		if f.StartDate != nil {
			dateRange = append(dateRange, bson.E{Key: "$gte", Value: *f.StartDate})
		}
		if f.EndDate != nil {
			dateRange = append(dateRange, bson.E{Key: "$lte", Value: *f.EndDate})
		}
		query = append(query, bson.E{Key: "date", Value: dateRange})
	}
	if f.Search != "" {
		re := containsRegex(f.Search)
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "contactPerson", Value: re}},
		}})
	}
	return query
}

// containsRegex 不区分大小写的字面子串匹配
func containsRegex(s string) bson.D {
	return bson.D{{Key: "$regex", Value: regexp.QuoteMeta(s)}, {Key: "$options", Value: "i"}}
}

func groupByType() bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$type"},
		{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}
}

func totalsByTypePipeline(userID string, since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "user", Value: userID},
			{Key: "date", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		groupByType(),
	}
}

func expensesByCategoryPipeline(userID string, since time.Time, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "user", Value: userID},
			{Key: "type", Value: models.TransactionTypeExpense},
			{Key: "date", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalAmount", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}

func outstandingDebtsPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "user", Value: userID},
			{Key: "type", Value: bson.D{{Key: "$in", Value: debtTypes}}},
			{Key: "isSettled", Value: false},
		}}},
		groupByType(),
	}
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
