// Package tgbot wires the conversation workflow to Telegram: it registers
// commands and callbacks, converts updates into workflow events and renders
// the workflow's responses.
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	coreconfig "github.com/m3rciful/applybot/core/config"
	"github.com/m3rciful/applybot/core/logger"
	tg "github.com/m3rciful/applybot/core/telegram"
	"github.com/m3rciful/applybot/core/telegram/commands"
	"github.com/m3rciful/applybot/core/telegram/router"
	"github.com/m3rciful/applybot/core/telegram/state"
	"github.com/m3rciful/applybot/core/telegram/ui"
	"github.com/m3rciful/applybot/internal/store"
	"github.com/m3rciful/applybot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

// App is the Telegram front of the bot.
type App struct {
	cfg    *coreconfig.Config
	engine *workflow.Engine
	reg    *tg.Registry
}

var (
	_ router.FSM          = (*App)(nil)
	_ ui.FallbackProvider = (*App)(nil)
)

// New builds the workflow engine over st and registers every command and callback.
func New(cfg *coreconfig.Config, st store.Store) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tgbot: nil config")
	}
	engine, err := workflow.New(workflow.Options{
		Store:       st,
		States:      state.NewMemoryManager(),
		Admins:      cfg.Telegram.AdminIDs,
		PhotoID:     cfg.Bot.PhotoID,
		LinkBaseURL: cfg.Bot.LinkBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("tgbot: %w", err)
	}

	a := &App{cfg: cfg, engine: engine, reg: tg.NewRegistry()}
	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) register() error {
	a.reg.RegisterCommand(workflow.CommandStart, commands.Command{
		Handler:     a.onText,
		Description: "Подать заявку или открыть меню",
	})
	a.reg.RegisterCommand(workflow.CommandCancel, commands.Command{
		Handler:     a.onText,
		Description: "Отменить текущее действие",
		Global:      true,
	})
	a.reg.RegisterCommand(workflow.CommandApplications, commands.Command{
		Handler:     a.onText,
		Description: "Заявки, ожидающие решения",
		AdminOnly:   true,
		Global:      true,
	})

	for _, action := range workflow.Actions() {
		if err := a.reg.RegisterCallback(string(action), a.onCallback); err != nil {
			return fmt.Errorf("tgbot: %w", err)
		}
	}
	a.reg.SetCallbackNotFound(a.UnknownCallback())
	return nil
}

// Registry exposes the registered commands and callbacks.
func (a *App) Registry() *tg.Registry {
	return a.reg
}

// TelegramRunOptions satisfies cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.reg, a.commandOptions())
	textOpts, cbOpts := router.FallbackOptions(a)
	routes = append(routes, router.TextRoutes(a, a.reg, textOpts)...)
	routes = append(routes, router.CallbackRoute(a.reg, cbOpts))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.reg,
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			username := ""
			if rt.Bot != nil && rt.Bot.Me != nil {
				username = rt.Bot.Me.Username
			}
			logger.Info(ctx, "app", "bot.started",
				slog.String("username", username),
				slog.Int("callbacks", len(a.reg.ListCallbacks())),
				slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
			)
			return nil
		},
	}, nil
}

// commandOptions gates admin-only commands on the engine's allow-list, the
// only admin check in the bot. The engine renders the denial itself.
func (a *App) commandOptions() router.CommandRouteOptions {
	return router.CommandRouteOptions{
		IsAdmin:       a.engine.IsAdmin,
		OnAdminReject: a.onText,
	}
}

// InProgress reports whether the user is inside a dialog; text from such
// users is routed to ManagerHandler before any command lookup.
func (a *App) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

// ManagerHandler feeds a dialog answer to the workflow.
func (a *App) ManagerHandler(c tele.Context) error {
	return a.onText(c)
}

// UnknownText ignores plain text sent outside of a dialog.
func (a *App) UnknownText() tele.HandlerFunc {
	return nil
}

// UnknownDocument ignores files; no dialog step accepts them.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return nil
}

// UnknownCallback hands unregistered keys to the workflow so they are logged and acknowledged.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return a.onCallback
}

func (a *App) onText(c tele.Context) error {
	return a.handle(c, textEvent(c))
}

func (a *App) onCallback(c tele.Context) error {
	return a.handle(c, callbackEvent(c))
}

func (a *App) handle(c tele.Context, ev workflow.Event) error {
	ctx := contextOf(c)
	return a.engine.HandleCommit(ctx, ev, func(out []workflow.Response) error {
		err := render(c, out)
		if err != nil {
			logger.Warn(ctx, "tg", "render.failed", slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		}
		return err
	})
}
