package middleware

import (
	"log/slog"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/applybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware seeds the update's logging context and writes a sampled
// update.received debug line carrying what the user sent.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if logger.ShouldSampleDebug() {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}
	if cb := c.Callback(); cb != nil {
		key, payload := callbacks.ParseCallbackData(cb)
		return append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
			slog.String("payload", logger.SanitizeLimit(payload, 64)),
		)
	}
	if t := c.Text(); t != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
	}
	return attrs
}
