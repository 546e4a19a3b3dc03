package repository

import (
	"context"
	"errors"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, storeErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, storeErr(err)
	}
	return order, nil
}

func (r *OrderGormRepository) Apply(ctx context.Context, orderID int64, changes repo.OrderChanges) error {
	updates := map[string]interface{}{}
	if changes.Status != nil {
		updates["status"] = *changes.Status
	}
	if changes.Instructions != nil {
		updates["instructions"] = *changes.Instructions
	}
	if changes.EstimatedMinutes != nil {
		updates["estimated_minutes"] = *changes.EstimatedMinutes
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//local_id 絞り込み
	if f.LocalID != nil {
		q = q.Where("local_id = ?", *f.LocalID)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}

	var orders []model.Order
	if err := q.Order("id asc").Limit(f.Limit).Offset(f.Offset).Find(&orders).Error; err != nil {
		return []model.Order{}, storeErr(err)
	}
	return orders, nil
}
