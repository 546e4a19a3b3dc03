package repository

import (
	"context"
	"time"

	"foodplaza/internal/domain/model"
)

type UserRepository interface {
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//最終ログイン時刻を更新
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
}
