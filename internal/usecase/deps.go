package usecase

import (
	"context"
	"time"

	"foodplaza/internal/domain/model"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// 注文イベントの種類
const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
	OrderEventDeleted       = "order.deleted"
)

// コミット後に外部へ流す注文イベント。
type OrderEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	OrderID        int64     `json:"order_id"`
	UserID         int64     `json:"user_id"`
	LocalID        int64     `json:"local_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Total          string    `json:"total"`
	ActorUserID    int64     `json:"actor_user_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// 送信に失敗しても注文処理は失敗にしない（ログだけ残す）。
type OrderEventPublisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

type OrderMetrics interface {
	OrderCreated()
	OrderCreateFailed(reason string)
	StatusChanged(from, to model.OrderStatus)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, OrderEvent) error { return nil }

type nopMetrics struct{}

func (nopMetrics) OrderCreated()                                      {}
func (nopMetrics) OrderCreateFailed(string)                           {}
func (nopMetrics) StatusChanged(model.OrderStatus, model.OrderStatus) {}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }
