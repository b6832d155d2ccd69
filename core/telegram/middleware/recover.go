package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/applybot/core/logger"
	tghelpers "github.com/m3rciful/applybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware drops an update whose handler panicked. The panic is
// logged with its stack; a pending callback is answered so the client's
// spinner stops.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
				slog.String("err", logger.SanitizeLimit(fmt.Sprint(r), 256)),
				slog.String("stack", string(debug.Stack())),
			)
			if c.Callback() != nil && !CountersOf(c).Answered {
				err = c.Respond()
			}
		}()
		return next(c)
	}
}
