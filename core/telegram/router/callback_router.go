package router

import (
	"log/slog"

	tg "github.com/m3rciful/applybot/core/telegram"
	"github.com/m3rciful/applybot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry
// by the action key of "action:param" data. Handlers own the callback answer;
// the route only responds itself when no handler or fallback exists.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, payload := callbacks.ParseCallbackData(c.Callback())
		extras := []slog.Attr{slog.String("cb_key", key)}
		if payload != "" {
			extras = append(extras, slog.String("payload", payload))
		}

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			h = opts.NotFound
			if h == nil {
				h = reg.CallbackNotFound()
			}
			if h == nil {
				h = func(c tele.Context) error { return c.Respond() }
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return summarize(c, "callback."+normalizeHandlerName(key), h, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
