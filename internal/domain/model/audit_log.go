package model

import "time"

// 注文に対する操作の種類。
type AuditAction string

const (
	//ステータスを変えた更新。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//指示・予定時間だけの更新。
	AuditActionUpdateOrder AuditAction = "UPDATE_ORDER"
	//注文の削除（明細ごと）。
	AuditActionDeleteOrder AuditAction = "DELETE_ORDER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
