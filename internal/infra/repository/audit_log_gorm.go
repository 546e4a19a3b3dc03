package repository

import (
	"context"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// List は削除済みの注文でも履歴を返す（注文テーブルとは join しない）。
func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", f.ResourceType, f.ResourceID).
		Order("id ASC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	logs := []model.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, storeErr(err)
	}
	return logs, nil
}
