package repository

import (
	"context"

	"foodplaza/internal/domain/model"
)

// カタログの商品を読むだけの窓口。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
}

// カタログの店舗を読むだけの窓口。
type LocalRepository interface {
	FindByID(ctx context.Context, id int64) (model.Local, error)
}
