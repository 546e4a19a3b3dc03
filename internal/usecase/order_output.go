package usecase

import (
	"encoding/json"
	"time"

	"foodplaza/internal/domain/model"
)

type OrderItemOutput struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	Instructions string `json:"instructions,omitempty"`
}

type OrderOutput struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	LocalID          int64             `json:"local_id"`
	Status           string            `json:"status"`
	Total            string            `json:"total"`
	Instructions     string            `json:"instructions,omitempty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Items            []OrderItemOutput `json:"items"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Name:         it.ProductNameSnapshot,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.StringFixed(2),
			Instructions: it.Instructions,
		})
	}

	return OrderOutput{
		ID:               o.ID,
		UserID:           o.UserID,
		LocalID:          o.LocalID,
		Status:           string(o.Status),
		Total:            o.Total.StringFixed(2),
		Instructions:     o.Instructions,
		EstimatedMinutes: o.EstimatedMinutes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            outItems,
	}
}

// 監査ログ1件。before/after は保存した JSON をそのまま返す。
type AuditEntryOutput struct {
	ID          int64           `json:"id"`
	ActorUserID int64           `json:"actor_user_id"`
	Action      string          `json:"action"`
	Before      json.RawMessage `json:"before"`
	After       json.RawMessage `json:"after"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toAuditEntryOutput(l model.AuditLog) AuditEntryOutput {
	return AuditEntryOutput{
		ID:          l.ID,
		ActorUserID: l.ActorUserID,
		Action:      string(l.Action),
		Before:      rawJSON(l.BeforeJSON),
		After:       rawJSON(l.AfterJSON),
		CreatedAt:   l.CreatedAt,
	}
}

// 空文字は不正な JSON になるので null にする
func rawJSON(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}
