package database

import (
	"context"
	"fmt"

	"hisaab/config"
	"hisaab/models"
	"hisaab/store"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector 根据存储驱动构建 gorm 方言
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	db := cfg.Database
	switch cfg.Storage.Driver {
	case store.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			db.Username, db.Password, db.Host, db.Port, db.DBName, db.Charset)
		return mysql.Open(dsn), nil
	case store.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			db.Host, db.Username, db.Password, db.DBName, db.Port, db.SSLMode)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("不支持的关系型数据库驱动: %s", cfg.Storage.Driver)
}

// Init 初始化数据库连接
func Init(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Info
	if cfg.IsRelease() {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("迁移数据表失败: %w", err)
		}
	}

	logrus.Info("数据库初始化成功")
	return db, nil
}

// Migrate 自动迁移数据表及索引
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
	)
}

// OpenStore 按配置打开存储，返回的 close 用于释放连接
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	switch cfg.Storage.Driver {
	case store.DriverMemory:
		return store.NewMemoryStore(), func() {}, nil
	case store.DriverMongo:
		db, err := ConnectMongo(ctx, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoStore(db), func() { DisconnectMongo(db) }, nil
	case store.DriverMySQL, store.DriverPostgres:
		db, err := Init(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return store.NewGormStore(db, cfg.Storage.Driver), closeFn, nil
	}
	return nil, nil, fmt.Errorf("未知的存储驱动: %s", cfg.Storage.Driver)
}
