package db

import (
	"fmt"

	"foodplaza/internal/config"
	"foodplaza/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return gormDB, nil
}

// Models はこのサービスが扱うテーブル。カタログ側（locales/products/users）も含む。
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Local{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	}
}

// Migrate はテーブルを作成・更新する。
// order_items に外部キーは張らない（明細の削除はアプリ側で明示的に行う）。
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(Models()...)
}
