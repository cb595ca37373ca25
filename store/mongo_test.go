package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTransactionQuery(t *testing.T) {
	// 仅限定用户
	assert.Equal(t, bson.D{{Key: "user", Value: "u1"}}, transactionQuery("u1", TransactionFilter{}))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	settled := false
	q := transactionQuery("u1", TransactionFilter{
		Type:      "lend",
		Category:  "a.b",
		StartDate: &start,
		EndDate:   &end,
		Search:    "sarah",
		IsSettled: &settled,
	})

	m := q.Map()
	assert.Equal(t, "u1", m["user"])
	assert.Equal(t, "lend", m["type"])
	assert.Equal(t, false, m["isSettled"])
	// 正则元字符按字面匹配
	assert.Equal(t, bson.D{{Key: "$regex", Value: `a\.b`}, {Key: "$options", Value: "i"}}, m["category"])
	assert.Equal(t, bson.D{{Key: "$gte", Value: start}, {Key: "$lte", Value: end}}, m["date"])

	or, ok := m["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
}

func TestExpensesByCategoryPipeline(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := expensesByCategoryPipeline("u1", since, 5)
	require.Len(t, p, 4)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, "$group", p[1][0].Key)
	assert.Equal(t, bson.D{{Key: "totalAmount", Value: -1}}, p[2][0].Value)
	assert.Equal(t, bson.E{Key: "$limit", Value: 5}, p[3][0])

	// 不限制条数时不追加 $limit
	assert.Len(t, expensesByCategoryPipeline("u1", since, 0), 3)
}

func TestOutstandingDebtsPipeline(t *testing.T) {
	p := outstandingDebtsPipeline("u1")
	require.Len(t, p, 2)
	match := p[0][0].Value.(bson.D).Map()
	assert.Equal(t, false, match["isSettled"])
	assert.Equal(t, bson.D{{Key: "$in", Value: debtTypes}}, match["type"])
	// 不带时间条件
	_, hasDate := match["date"]
	assert.False(t, hasDate)
}

func TestTranslateMongoError(t *testing.T) {
	assert.NoError(t, translateMongoError(nil))
	assert.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
	assert.ErrorIs(t, translateMongoError(dup), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translateMongoError(other))
}
