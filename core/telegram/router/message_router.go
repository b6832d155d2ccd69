package router

import (
	tg "github.com/m3rciful/applybot/core/telegram"
	"github.com/m3rciful/applybot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
// Nil handlers drop the update with a "skip" summary.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing. Recovery and
// update logging come from the bot-wide middleware chain. A user inside a
// dialog has every text routed to the FSM, commands included; otherwise the
// registry is consulted.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return summarize(c, "fsm", fsmMgr.ManagerHandler)
		}
		if reg == nil {
			return summarize(c, "unknown_text", opts.UnknownText)
		}
		if token := commandToken(c.Text()); token != "" {
			if key, cmd, ok := reg.LookupCommand(token); ok && cmd.Handler != nil {
				return summarize(c, normalizeHandlerName(key), cmd.Handler)
			}
		}
		return summarize(c, "unknown_text", opts.UnknownText)
	}

	// documents never answer a dialog question
	document := func(c tele.Context) error {
		return summarize(c, "unexpected_document", opts.UnknownDocument)
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnDocument, Handler: document},
	}
}

// FallbackOptions reads the unmatched-update handlers from p.
func FallbackOptions(p ui.FallbackProvider) (TextOptions, CallbackOptions) {
	if p == nil {
		return TextOptions{}, CallbackOptions{}
	}
	return TextOptions{UnknownText: p.UnknownText(), UnknownDocument: p.UnknownDocument()},
		CallbackOptions{NotFound: p.UnknownCallback()}
}
