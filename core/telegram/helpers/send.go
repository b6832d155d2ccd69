package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// sendAsync queues j, or runs it inline when no dispatcher is wired or the
// queue cannot take it.
func sendAsync(c tele.Context, j sender.Job) error {
	disp := currentDispatcher()
	if disp == nil {
		return j.Run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, j); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", j.Action),
				slog.String("endpoint", j.Endpoint),
				slog.String("err", err.Error()),
			)
			return j.Run()
		}
		return err
	}
	return nil
}

// HTML returns send options with HTML parse mode and optional reply markup.
func HTML(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
}

// Outgoing is one message addressed to an arbitrary chat.
type Outgoing struct {
	To   tele.Recipient
	What interface{}
	Opts *tele.SendOptions
}

// SendSequence delivers msgs in order as a single dispatcher job keyed by the
// first recipient. A retried job resumes at the first message that has not
// been delivered yet.
func SendSequence(c tele.Context, msgs []Outgoing) error {
	if len(msgs) == 0 {
		return nil
	}
	bot := c.Bot()
	next := 0
	return sendAsync(c, sender.Job{
		Key:      msgs[0].To.Recipient(),
		Action:   "send.sequence",
		Endpoint: endpointFor(msgs[0].What),
		Run: func() error {
			for next < len(msgs) {
				m := msgs[next]
				opts := m.Opts
				if opts == nil {
					opts = HTML(nil)
				}
				if _, err := bot.Send(m.To, m.What, opts); err != nil {
					return err
				}
				next++
			}
			return nil
		},
	})
}

func endpointFor(what interface{}) string {
	switch what.(type) {
	case *tele.Photo:
		return "sendPhoto"
	default:
		return "sendMessage"
	}
}
