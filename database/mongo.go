package database

import (
	"context"
	"fmt"

	"hisaab/config"
	"hisaab/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo 连接 MongoDB 并创建索引
func ConnectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetTimeout(cfg.Timeout)
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}
	if err = cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB 不可用: %w", err)
	}

	db := cli.Database(cfg.Database)
	if err = store.EnsureIndexes(ctx, db); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}
	logrus.Infof("MongoDB 连接成功: %s", cfg.Database)
	return db, nil
}

// DisconnectMongo 关闭 MongoDB 客户端
func DisconnectMongo(db *mongo.Database) {
	if err := db.Client().Disconnect(context.Background()); err != nil {
		logrus.Errorf("mongo couldn't disconnect: %v", err)
	}
}
