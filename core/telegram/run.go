package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/core/logger"
	tghelpers "github.com/m3rciful/applybot/core/telegram/helpers"
	tgsender "github.com/m3rciful/applybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is built from Config.Sender when nil.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook skips removing a leftover webhook before long polling.
	KeepWebhook bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// SenderOptions maps the sender config section to dispatcher options.
func SenderOptions(cfg coreconfig.SenderConfig) tgsender.Options {
	return tgsender.Options{
		QueueSize:    cfg.QueueSize,
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
	}
}

// logBotError receives errors returned by handlers; one failed update never stops the poller.
func logBotError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Warn(ctx, "tg", "update.failed",
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}

// NewBot builds the bot for cfg with HTML parse mode and the tuned HTTP client.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	poller := BuildPoller(cfg.Telegram, cfg.Webhook)
	var pollTimeout time.Duration
	if lp, ok := poller.(*tele.LongPoller); ok {
		pollTimeout = lp.Timeout
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:     cfg.Telegram.Token,
		Poller:    poller,
		Client:    BuildHTTPClient(pollTimeout),
		ParseMode: tele.ModeHTML,
		OnError:   logBotError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	return bot, nil
}

// RunTelegram wires routes and middlewares onto a new bot and serves updates
// until ctx is done. Queued sends are drained before it returns.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	start := time.Now()
	bot, err := NewBot(cfg)
	if err != nil {
		return err
	}
	logger.Info(ctx, "tg", "mode", append(pollerAttrs(bot.Poller),
		slog.Duration("duration", time.Since(start)),
	)...)
	if cfg.Telegram.RunMode == coreconfig.RunModeLongpoll && !opts.KeepWebhook {
		removeWebhook(ctx, bot)
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(SenderOptions(cfg.Sender))
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	wire(bot, opts.Middlewares, opts.Routes)
	SetupCommands(bot, reg, cfg.Telegram.AdminIDs)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func wire(bot *tele.Bot, mws []Middleware, routes []Route) {
	for _, mw := range mws {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
}

// serve blocks in bot.Start until ctx is done or the poller exits on its own.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

// removeWebhook clears a webhook left by a previous webhook deployment;
// getUpdates is refused while one is set. Pending updates are kept.
func removeWebhook(ctx context.Context, bot *tele.Bot) {
	if err := bot.RemoveWebhook(false); err != nil {
		logger.Warn(ctx, "tg", "webhook.delete",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(ctx, "tg", "webhook.delete", slog.String("status", "ok"))
}
