package repository

import (
	"context"

	"foodplaza/internal/domain/model"
)

// 注文一覧の絞り込み条件。nil/空の項目は無視する（AND条件）。
type OrderListFilter struct {
	Status  model.OrderStatus
	LocalID *int64
	UserID  *int64
	Offset  int
	Limit   int
}

// 更新できるのはこの3項目だけ。nilは「変更なし」。
type OrderChanges struct {
	Status           *model.OrderStatus
	Instructions     *string
	EstimatedMinutes *int
}

func (c OrderChanges) Empty() bool {
	return c.Status == nil && c.Instructions == nil && c.EstimatedMinutes == nil
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//作成後のorder（ID・作成時刻が埋まったもの）を返す
	Create(ctx context.Context, order model.Order) (model.Order, error)
	Apply(ctx context.Context, orderID int64, changes OrderChanges) error
	Delete(ctx context.Context, orderID int64) error
	//id昇順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
}
