package repository

import "errors"

// 対象が存在しない
var ErrNotFound = errors.New("not found")

// 一時的なストア障害（接続断・タイムアウト・直列化失敗など）。
// トランザクションは何もコミットしていないので呼び出し側で再試行してよい。
var ErrTransient = errors.New("transient store error")
