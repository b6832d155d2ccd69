package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	metaKey
)

// meta carries the identifiers every log line of an update inherits.
type meta struct {
	rid      string
	updateID int
	userID   int64
	chatID   int64
	handler  string
	step     string
	action   string
}

func metaFrom(ctx context.Context) meta {
	if ctx == nil {
		return meta{}
	}
	m, _ := ctx.Value(metaKey).(meta)
	return m
}

func withMeta(ctx context.Context, set func(*meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	set(&m)
	return context.WithValue(ctx, metaKey, m)
}

// WithLogger stores log in ctx; a nil logger leaves ctx untouched.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored by WithLogger or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the update correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *meta) { m.rid = rid })
}

// RIDFrom returns the correlation id or "".
func RIDFrom(ctx context.Context) string { return metaFrom(ctx).rid }

// WithUpdateMeta attaches the update, sender and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *meta) {
		m.updateID = updateID
		m.userID = userID
		m.chatID = chatID
	})
}

func UpdateIDFrom(ctx context.Context) int { return metaFrom(ctx).updateID }
func UserIDFrom(ctx context.Context) int64 { return metaFrom(ctx).userID }
func ChatIDFrom(ctx context.Context) int64 { return metaFrom(ctx).chatID }

// WithHandler names the route serving the update, e.g. "callback.approve".
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.handler = handler })
}

func HandlerFrom(ctx context.Context) string { return metaFrom(ctx).handler }

// WithStep records the dialog step the user was in when the update arrived.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.step = step })
}

func StepFrom(ctx context.Context) string { return metaFrom(ctx).step }

// WithAction records the callback action being handled.
func WithAction(ctx context.Context, action string) context.Context {
	if action == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.action = action })
}

func ActionFrom(ctx context.Context) string { return metaFrom(ctx).action }

// fillFromContext copies context identifiers into rec without overriding
// values passed explicitly as attributes.
func fillFromContext(ctx context.Context, rec map[string]any) {
	m := metaFrom(ctx)
	put := func(key string, val any, zero bool) {
		if zero {
			return
		}
		if _, ok := rec[key]; !ok {
			rec[key] = val
		}
	}
	put("rid", m.rid, m.rid == "")
	put("update_id", m.updateID, m.updateID == 0)
	put("user_id", m.userID, m.userID == 0)
	put("chat_id", m.chatID, m.chatID == 0)
	put("handler", m.handler, m.handler == "")
	put("step", m.step, m.step == "")
	put("action", m.action, m.action == "")
}
