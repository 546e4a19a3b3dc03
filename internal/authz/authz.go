// Package authz は注文に対する操作の権限を判定する。
// handler が usecase を呼ぶ前に使う。
package authz

import (
	"errors"

	"foodplaza/internal/domain/model"
)

// 403
var ErrForbidden = errors.New("forbidden")

// 認証済みの呼び出し元
type Principal struct {
	UserID int64
	Role   model.Role
}

func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// 判定に必要な注文の情報
type OrderRef struct {
	UserID  int64
	LocalID int64
	Status  model.OrderStatus
}

// 更新内容のうち権限に関わる部分
type Change struct {
	Status      *model.OrderStatus
	OtherFields bool // instructions / estimated_minutes を含むか
}

// manages は p が店舗 l のgerenteかを返す。
func (p Principal) manages(l *model.Local) bool {
	return p.Role == model.RoleManager && l != nil && l.ManagedBy(p.UserID)
}

// CanView: 本人・admin・店舗のgerente
func CanView(p Principal, o OrderRef, l *model.Local) error {
	if p.IsAdmin() || o.UserID == p.UserID || p.manages(l) {
		return nil
	}
	return ErrForbidden
}

// CanUpdate: admin・店舗のgerente。本人は pending の注文をキャンセルすることだけできる。
func CanUpdate(p Principal, o OrderRef, l *model.Local, ch Change) error {
	if p.IsAdmin() || p.manages(l) {
		return nil
	}
	if o.UserID == p.UserID &&
		o.Status == model.OrderStatusPending &&
		!ch.OtherFields &&
		ch.Status != nil && *ch.Status == model.OrderStatusCancelled {
		return nil
	}
	return ErrForbidden
}

// UpdatePrecondition は CanUpdate の許可が注文のステータスに依存するとき（本人のキャンセル）、
// そのステータスを返す。更新時にステータスが変わっていれば許可は無効。admin・gerente は nil。
func UpdatePrecondition(p Principal, o OrderRef, l *model.Local) *model.OrderStatus {
	if p.IsAdmin() || p.manages(l) {
		return nil
	}
	s := o.Status
	return &s
}

func CanDelete(p Principal) error {
	if p.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// 一覧の絞り込み範囲
type ListScope struct {
	LocalID *int64
	UserID  *int64
}

// ScopeList は p が見てよい範囲に絞り込み条件を直す。
// local は LocalID が指定されたときに解決済みの店舗（なければ nil）。
//   - admin: そのまま
//   - gerente + 自分の店舗: その店舗の注文
//   - gerente + 他人の店舗: 403
//   - それ以外: user_id を自分に固定。他人の user_id を指定したら 403
func ScopeList(p Principal, s ListScope, local *model.Local) (ListScope, error) {
	if p.IsAdmin() {
		return s, nil
	}

	if p.Role == model.RoleManager && s.LocalID != nil {
		if local == nil || local.ID != *s.LocalID || !local.ManagedBy(p.UserID) {
			return ListScope{}, ErrForbidden
		}
		return s, nil
	}

	if s.UserID != nil && *s.UserID != p.UserID {
		return ListScope{}, ErrForbidden
	}
	self := p.UserID
	s.UserID = &self
	return s, nil
}
