package router

import (
	"context"

	"log/slog"

	"github.com/m3rciful/applybot/core/logger"
	tg "github.com/m3rciful/applybot/core/telegram"
	"github.com/m3rciful/applybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds global commands as telebot endpoints so they run
// regardless of dialog state. Non-global commands stay in the registry and
// are resolved by TextRoutes.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	}

	global := reg.GlobalCommands()
	routes := make([]tg.Route, 0, len(global))
	for cmd, def := range global {
		h := def.Handler
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		h = withCommandSummary(normalizeHandlerName(cmd), h)
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + alias, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "wire.complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("global", len(global)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
