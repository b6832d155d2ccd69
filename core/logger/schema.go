package logger

import (
	"log/slog"
	"strings"
)

// outcomes is the closed vocabulary of the "outcome" key; other values are dropped.
var outcomes = map[string]bool{
	"ok": true, "fail": true, "cancelled": true, "rate_limited": true,
	"approved": true, "rejected": true, "submitted": true,
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// defaultKeyOrder puts correlation first, then the workflow fields, then
// transport details. Keys not listed follow in alphabetical order.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler",
	"cb_key", "action", "step", "next_step",
	"target_id", "service", "index", "links", "admins", "pending",
	"outcome", "duration_ms",
	"messages", "kb", "count", "payload", "username",
	"mode", "listen", "public_url",
	"err", "err_code", "cause", "attempts",
}
