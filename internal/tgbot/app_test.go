package tgbot

import (
	"testing"

	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/internal/store"
	"github.com/m3rciful/applybot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

func testConfig() *coreconfig.Config {
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AdminIDs = []int64{1}
	cfg.Bot.PhotoID = "photo"
	cfg.Bot.LinkBaseURL = "https://links.test/"
	return cfg
}

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return bot.NewContext(upd)
}

func TestNewRegistersEveryAction(t *testing.T) {
	app, err := New(testConfig(), store.NewMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg := app.Registry()
	for _, a := range workflow.Actions() {
		if _, ok := reg.GetCallback(string(a)); !ok {
			t.Fatalf("action %q not registered", a)
		}
	}
	if n := len(reg.Commands()); n != 3 {
		t.Fatalf("commands = %d, want 3", n)
	}
	if _, cmd, ok := reg.LookupCommand("/cancel"); !ok || !cmd.Global {
		t.Fatal("/cancel must be global")
	}
	if _, cmd, ok := reg.LookupCommand("/start"); !ok || cmd.Global {
		t.Fatal("/start must be resolved after dialog routing")
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	if _, err := New(nil, store.NewMemory()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(testConfig(), nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestTelegramRunOptions(t *testing.T) {
	app, err := New(testConfig(), store.NewMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	opts, err := app.TelegramRunOptions()
	if err != nil {
		t.Fatalf("TelegramRunOptions: %v", err)
	}
	// two global commands, text + document, callbacks
	if n := len(opts.Routes); n != 5 {
		t.Fatalf("routes = %d, want 5", n)
	}
	if opts.Config == nil || opts.Registry != app.Registry() || len(opts.Middlewares) == 0 {
		t.Fatalf("options = %+v", opts)
	}
}

func TestCommandOptionsUseEngineAllowList(t *testing.T) {
	cfg := testConfig()
	cfg.Telegram.AdminIDs = []int64{1, 2}
	app, err := New(cfg, store.NewMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	opts := app.commandOptions()
	if opts.IsAdmin == nil || opts.OnAdminReject == nil {
		t.Fatalf("options = %+v", opts)
	}
	for id, want := range map[int64]bool{1: true, 2: true, 3: false, 0: false} {
		if got := opts.IsAdmin(id); got != want || got != app.engine.IsAdmin(id) {
			t.Fatalf("IsAdmin(%d) = %v, want %v", id, got, want)
		}
	}
}

func TestTextEvent(t *testing.T) {
	c := newContext(t, tele.Update{ID: 7, Message: &tele.Message{
		Sender: &tele.User{ID: 42, FirstName: "Ann", Username: "ann"},
		Chat:   &tele.Chat{ID: 42},
		Text:   "friend",
	}})
	ev := textEvent(c)
	if ev.Kind != workflow.EventText || ev.From.ID != 42 || ev.ChatID != 42 || ev.Text != "friend" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.From.FirstName != "Ann" || ev.From.Username != "ann" {
		t.Fatalf("user = %+v", ev.From)
	}
}

func TestCallbackEvent(t *testing.T) {
	c := newContext(t, tele.Update{ID: 8, Callback: &tele.Callback{
		Sender: &tele.User{ID: 1},
		Data:   "approve:42",
	}})
	ev := callbackEvent(c)
	if ev.Kind != workflow.EventCallback || ev.Data != "approve:42" || ev.From.ID != 1 {
		t.Fatalf("event = %+v", ev)
	}

	c = newContext(t, tele.Update{ID: 9, Callback: &tele.Callback{
		Sender: &tele.User{ID: 1},
		Unique: "del",
		Data:   "2",
	}})
	if ev := callbackEvent(c); ev.Data != "del:2" {
		t.Fatalf("unique form = %q", ev.Data)
	}
}

func TestPlanGroupsSendsPerChat(t *testing.T) {
	out := []workflow.Response{
		{Kind: workflow.SendText, ChatID: 100, Text: "approved"},
		{Kind: workflow.SendText, ChatID: 1, Text: "card"},
		{Kind: workflow.SendPhoto, ChatID: 100, Photo: "photo", Text: "menu",
			Keyboard: workflow.Keyboard{{{Text: "go", Data: "create_link"}}}},
		{Kind: workflow.Answer, Text: "ok"},
		{Kind: workflow.EditCaption, Text: "list"},
	}
	p := plan(out)
	if len(p.chats) != 2 || p.chats[0] != 100 || p.chats[1] != 1 {
		t.Fatalf("chats = %v", p.chats)
	}
	batch := p.batches[100]
	if len(batch) != 2 {
		t.Fatalf("batch = %+v", batch)
	}
	if s, ok := batch[0].What.(string); !ok || s != "approved" {
		t.Fatalf("first = %#v", batch[0].What)
	}
	ph, ok := batch[1].What.(*tele.Photo)
	if !ok || ph.FileID != "photo" || ph.Caption != "menu" {
		t.Fatalf("second = %#v", batch[1].What)
	}
	if batch[1].Opts.ParseMode != tele.ModeHTML || batch[1].Opts.ReplyMarkup == nil {
		t.Fatalf("opts = %+v", batch[1].Opts)
	}
	if batch[0].Opts.ReplyMarkup != nil {
		t.Fatal("text without keyboard got a markup")
	}
	if len(p.inline) != 2 || p.inline[0].Kind != workflow.Answer {
		t.Fatalf("inline = %+v", p.inline)
	}
}

func TestMarkupKeepsRawData(t *testing.T) {
	m := markup(workflow.Keyboard{
		{{Text: "A", Data: "approve:5"}, {Text: "R", Data: "reject:5"}},
		{{Text: "back", Data: "back_menu"}},
	})
	if m == nil || len(m.InlineKeyboard) != 2 {
		t.Fatalf("markup = %+v", m)
	}
	if b := m.InlineKeyboard[0][1]; b.Data != "reject:5" || b.Unique != "" {
		t.Fatalf("button = %+v", b)
	}
	if markup(nil) != nil {
		t.Fatal("empty keyboard must render without markup")
	}
}
