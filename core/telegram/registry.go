package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var errInvalidCallback = errors.New("invalid callback registration")

// Registry holds slash commands and the callback handlers keyed by action.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	aliases          map[string]string // "/alias" -> "/command"
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry whose unknown-callback fallback
// just stops the client's spinner.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond()
		},
	}
}

func skip(event, name, reason string) {
	logger.Warn(context.Background(), "tg.wire", event,
		slog.String("name", name),
		slog.String("reason", reason),
	)
}

// RegisterCommand adds a "/name" command. Invalid and duplicate
// registrations are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		skip("register.command.skip", name, "invalid")
		return
	case !strings.HasPrefix(name, "/"):
		skip("register.command.skip", name, "no_slash_prefix")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		skip("register.command.skip", name, "duplicate")
		return
	}
	r.commands[name] = cmd
	for _, a := range cmd.Aliases {
		r.aliases["/"+strings.TrimPrefix(a, "/")] = name
	}
}

// ListCommands returns the menu entries sorted by name. Hidden commands are
// never listed; visibleOnly also drops admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden || (visibleOnly && cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves name or one of its aliases, with or without the
// leading slash, to the canonical command.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = "/" + strings.TrimPrefix(name, "/")
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// Commands returns a copy of all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.filter(func(commands.Command) bool { return true })
}

// GlobalCommands returns the commands that pre-empt dialog routing.
func (r *Registry) GlobalCommands() map[string]commands.Command {
	return r.filter(func(c commands.Command) bool { return c.Global })
}

func (r *Registry) filter(keep func(commands.Command) bool) map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for name, cmd := range r.commands {
		if keep(cmd) {
			out[name] = cmd
		}
	}
	return out
}

// RegisterCallback maps an action key to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		skip("register.callback.skip", key, "invalid")
		return errInvalidCallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		skip("register.callback.skip", key, "duplicate")
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler for an action key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered action keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetCallbackNotFound replaces the fallback for unknown action keys; nil is ignored.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the fallback for unknown action keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetupCommands publishes the command menu. Admin-only commands are added to
// the menu of each admin chat only.
func SetupCommands(bot *tele.Bot, reg *Registry, adminIDs []int64) {
	if bot == nil || reg == nil {
		return
	}
	ctx := context.Background()
	public := reg.ListCommands(true)
	if err := bot.SetCommands(public); err != nil {
		logger.Error(ctx, "tg.wire", "register.commands.set_failed", slog.String("err", err.Error()))
		return
	}
	all := reg.ListCommands(false)
	if len(all) == len(public) {
		return
	}
	for _, id := range adminIDs {
		scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: id}
		if err := bot.SetCommands(all, scope); err != nil {
			logger.Warn(ctx, "tg.wire", "register.commands.admin_scope_failed",
				slog.Int64("chat_id", id),
				slog.String("err", err.Error()),
			)
		}
	}
}
