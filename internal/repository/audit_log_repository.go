package repository

import (
	"context"

	"foodplaza/internal/domain/model"
)

// 1つの対象の監査ログを引く条件。古い順。
type AuditLogFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   int64
	Offset       int
	Limit        int
}

type AuditLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log model.AuditLog) error

	//対象ごとの履歴を id 昇順で返す
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
