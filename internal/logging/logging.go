// Package logging は JSON の構造化ログを作る。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New は level（debug/info/warn/error）の JSON ロガーを返す。
// 全行に service を付ける。
func New(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h).With(slog.String("service", "foodplaza"))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
