package repository

import (
	"context"
	"errors"

	"foodplaza/internal/domain/model"
	repo "foodplaza/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, storeErr(err)
	}
	return p, nil
}

type LocalGormRepository struct {
	db *gorm.DB
}

func NewLocalGormRepository(db *gorm.DB) *LocalGormRepository {
	return &LocalGormRepository{db: db}
}

// IDで店舗を取得
func (r *LocalGormRepository) FindByID(ctx context.Context, id int64) (model.Local, error) {
	var l model.Local
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Local{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Local{}, storeErr(err)
	}
	return l, nil
}
