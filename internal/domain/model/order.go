package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusInPreparation  OrderStatus = "in_preparation"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// 現在のステータスから遷移できる次のステータス。
// 前進は1段ずつ、cancelledは終端以外からならどこからでも。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusInPreparation, OrderStatusCancelled},
	OrderStatusInPreparation:  {OrderStatusReadyForPickup, OrderStatusCancelled},
	OrderStatusReadyForPickup: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// 定義済みのステータスか
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// 終端（completed / cancelled）か
func (s OrderStatus) Terminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo は s から next への遷移が許されるかを返す。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// 注文（pedido）。明細は OrderItem 側に持つ。
// Total は作成時に確定し、以後は再計算しない。
type Order struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64           `gorm:"not null;index" json:"user_id"`
	LocalID          int64           `gorm:"not null;index" json:"local_id"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Total            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Instructions     string          `gorm:"type:text" json:"instructions"`
	EstimatedMinutes int             `gorm:"not null" json:"estimated_minutes"`
	CreatedAt        time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
