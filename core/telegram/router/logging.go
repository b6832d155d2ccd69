package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/applybot/core/logger"
	tghelpers "github.com/m3rciful/applybot/core/telegram/helpers"
	"github.com/m3rciful/applybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summarize runs fn as the named handler and writes one handler.handled line.
// A nil fn means the update was deliberately ignored and is logged as skipped.
func summarize(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)

	var err error
	status, outcome := "skip", "ok"
	if fn != nil {
		err = fn(c)
		status = "ok"
	}
	if err != nil {
		status, outcome = "fail", "fail"
	}

	k := middleware.CountersOf(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", k.Sent),
		slog.Int("edits", k.Edited),
		slog.Bool("kb", k.Keyboard),
		slog.Duration("duration", time.Since(start)),
	}
	if c.Callback() != nil {
		attrs = append(attrs, slog.Bool("answered", k.Answered))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", append(attrs, extras...)...)
	return err
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		code := strings.TrimSpace(c.Code())
		if code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	// wrapped errors are named after the innermost cause
	for u := errors.Unwrap(err); u != nil; u = errors.Unwrap(u) {
		err = u
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
	}
	return "UNKNOWN_ERROR"
}

// withCommandSummary logs the handler summary line for endpoint-bound commands.
func withCommandSummary(name string, next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return summarize(c, name, next)
	}
}

// commandToken returns "/cmd" from "/cmd@bot args" and "" for plain text.
func commandToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}
