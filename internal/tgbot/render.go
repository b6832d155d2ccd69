package tgbot

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m3rciful/applybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/applybot/core/telegram/helpers"
	"github.com/m3rciful/applybot/core/telegram/keyboard"
	"github.com/m3rciful/applybot/core/telegram/middleware"
	"github.com/m3rciful/applybot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

func contextOf(c tele.Context) context.Context {
	return tghelpers.BuildContext(c)
}

func userOf(c tele.Context) workflow.User {
	u := c.Sender()
	if u == nil {
		return workflow.User{}
	}
	return workflow.User{ID: u.ID, FirstName: u.FirstName, Username: u.Username}
}

func chatOf(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func textEvent(c tele.Context) workflow.Event {
	return workflow.Event{
		Kind:   workflow.EventText,
		From:   userOf(c),
		ChatID: chatOf(c),
		Text:   c.Text(),
	}
}

func callbackEvent(c tele.Context) workflow.Event {
	ev := workflow.Event{
		Kind:   workflow.EventCallback,
		From:   userOf(c),
		ChatID: chatOf(c),
	}
	if cb := c.Callback(); cb != nil {
		ev.Data = cb.Data
		if cb.Unique != "" {
			key, payload := callbacks.ParseCallbackData(cb)
			ev.Data = key
			if payload != "" {
				ev.Data += ":" + payload
			}
		}
	}
	return ev
}

// markup converts a workflow keyboard into raw-data inline buttons.
func markup(kb workflow.Keyboard) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, len(kb))
	for i, row := range kb {
		rows[i] = make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			rows[i][j] = keyboard.InlineBtn{Text: b.Text, Data: b.Data}
		}
	}
	return keyboard.InlineButtonsRows(rows...)
}

func photo(fileID, caption string) *tele.Photo {
	return &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
}

// renderPlan splits responses into per-chat send batches, kept in order of
// first appearance, and the calls bound to the current callback message.
type renderPlan struct {
	chats   []int64
	batches map[int64][]tghelpers.Outgoing
	inline  []workflow.Response
}

func plan(out []workflow.Response) renderPlan {
	p := renderPlan{batches: make(map[int64][]tghelpers.Outgoing)}
	for _, r := range out {
		var msg tghelpers.Outgoing
		switch r.Kind {
		case workflow.SendText:
			msg = tghelpers.Outgoing{What: r.Text}
		case workflow.SendPhoto:
			msg = tghelpers.Outgoing{What: photo(r.Photo, r.Text)}
		default:
			p.inline = append(p.inline, r)
			continue
		}
		msg.To = tele.ChatID(r.ChatID)
		msg.Opts = tghelpers.HTML(markup(r.Keyboard))
		if _, seen := p.batches[r.ChatID]; !seen {
			p.chats = append(p.chats, r.ChatID)
		}
		p.batches[r.ChatID] = append(p.batches[r.ChatID], msg)
	}
	return p
}

// render performs edits and the callback answer synchronously, then queues
// one ordered batch per recipient chat.
func render(c tele.Context, out []workflow.Response) error {
	if len(out) == 0 {
		return nil
	}
	p := plan(out)

	var errs []error
	for _, r := range p.inline {
		if err := renderInline(c, r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Kind, err))
		}
	}
	counters := middleware.CountersOf(c)
	for _, chatID := range p.chats {
		batch := p.batches[chatID]
		if err := tghelpers.SendSequence(c, batch); err != nil {
			errs = append(errs, fmt.Errorf("send to %d: %w", chatID, err))
			continue
		}
		counters.Record(len(batch), slices.ContainsFunc(batch, func(m tghelpers.Outgoing) bool {
			return m.Opts != nil && m.Opts.ReplyMarkup != nil
		}))
	}
	return errors.Join(errs...)
}

func renderInline(c tele.Context, r workflow.Response) error {
	switch r.Kind {
	case workflow.Answer:
		if c.Callback() == nil {
			return nil
		}
		return c.Respond(&tele.CallbackResponse{Text: r.Text, ShowAlert: r.Alert})
	case workflow.EditCaption:
		return c.EditCaption(r.Text, tghelpers.HTML(markup(r.Keyboard)))
	case workflow.EditMedia:
		return c.Edit(photo(r.Photo, r.Text), tghelpers.HTML(markup(r.Keyboard)))
	}
	return fmt.Errorf("unsupported response kind %d", r.Kind)
}
