package middleware

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return bot.NewContext(upd)
}

func textUpdate(from int64) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		Sender: &tele.User{ID: from},
		Chat:   &tele.Chat{ID: from},
		Text:   "/applications",
	}}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var ran, rejected int
	next := func(tele.Context) error { ran++; return nil }
	mw := AdminOnlyMiddleware(AdminOptions{
		IsAdmin:  func(id int64) bool { return id == 1 },
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(next)

	_ = mw(newContext(t, textUpdate(1)))
	_ = mw(newContext(t, textUpdate(2)))
	if ran != 1 || rejected != 1 {
		t.Fatalf("ran = %d rejected = %d", ran, rejected)
	}

	open := AdminOnlyMiddleware(AdminOptions{})(next)
	_ = open(newContext(t, textUpdate(2)))
	if ran != 2 {
		t.Fatal("nil IsAdmin must not block")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newContext(t, textUpdate(3))); err != nil {
		t.Fatalf("err = %v", err)
	}

	want := errors.New("handler failed")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newContext(t, textUpdate(3))); !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}

func TestMessageMetricsCounters(t *testing.T) {
	c := newContext(t, textUpdate(4))
	if k := CountersOf(c); k == nil || k.Sent != 0 {
		t.Fatalf("detached counters = %+v", k)
	}
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		k := CountersOf(c)
		if k.Sent != 0 || k.Answered || k.Keyboard {
			t.Fatalf("initial counters = %+v", k)
		}
		k.Record(2, false)
		k.Record(1, true)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if k := CountersOf(c); k.Sent != 3 || !k.Keyboard {
		t.Fatalf("counters after handler = %+v", k)
	}
}

func TestHasKeyboard(t *testing.T) {
	if hasKeyboard([]interface{}{&tele.SendOptions{ParseMode: tele.ModeHTML}}) {
		t.Fatal("options without markup")
	}
	if !hasKeyboard([]interface{}{"x", &tele.ReplyMarkup{}}) {
		t.Fatal("markup not detected")
	}
}
