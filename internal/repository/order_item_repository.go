package repository

import (
	"context"

	"foodplaza/internal/domain/model"
)

// 明細は注文と同じトランザクションでしか作成・削除しない。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) ([]model.OrderItem, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	//一覧表示用。order_id ごとにまとめて返す
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
