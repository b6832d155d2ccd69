// Package helpers carries per-update context and the outbound send helpers
// shared by the routers and the bot adapter.
package helpers

import (
	"context"

	"github.com/m3rciful/applybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxKey = "log_ctx"

// BuildContext returns the update's logging context, creating and caching it
// on first use. It carries the rid and the update, sender and chat ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok {
		return ctx
	}
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	updateID := c.Update().ID

	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler tags the cached context with the route serving the update.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(ctxKey, ctx)
	return ctx
}
