// Package workflow implements the bot's conversation engine: it routes inbound
// messages and button presses to step handlers, keeps dialog state in sync with
// the domain tables and returns the responses to render. It never talks to the
// gateway itself.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/state"
	"github.com/m3rciful/applybot/internal/store"
)

// Dialog steps.
const (
	StepApplySource     state.Step = "apply.source"
	StepApplyExperience state.Step = "apply.experience"
	StepApplyTime       state.Step = "apply.time"
	StepLinkService     state.Step = "link.service"
	StepLinkPrice       state.Step = "link.price"
)

// Steps returns every step the engine can dispatch text to.
func Steps() []state.Step {
	return []state.Step{StepApplySource, StepApplyExperience, StepApplyTime, StepLinkService, StepLinkPrice}
}

// Commands.
const (
	CommandStart        = "/start"
	CommandCancel       = "/cancel"
	CommandApplications = "/applications"
)

// EventKind distinguishes text messages from button presses.
type EventKind int

const (
	EventText EventKind = iota + 1
	EventCallback
)

// User describes the sender of an event.
type User struct {
	ID        int64
	FirstName string
	Username  string
}

// Event is one inbound update reduced to what the workflow needs.
type Event struct {
	Kind   EventKind
	From   User
	ChatID int64
	// Text holds the message text for EventText.
	Text string
	// Data holds raw callback data for EventCallback.
	Data string
}

func (ev Event) chat() int64 {
	if ev.ChatID != 0 {
		return ev.ChatID
	}
	return ev.From.ID
}

type (
	textHandler     func(ctx context.Context, ev Event) ([]Response, error)
	callbackHandler func(ctx context.Context, ev Event, p Payload) ([]Response, error)
)

// Options wires the engine's collaborators and settings.
type Options struct {
	Store  store.Store
	States state.Manager
	// Admins is the static allow-list for approve/reject.
	Admins      []int64
	PhotoID     string
	LinkBaseURL string

	// NewToken generates the opaque part of a link; defaults to a random UUID.
	NewToken func() string
	Now      func() time.Time
}

// Engine dispatches events to step handlers. It is safe for concurrent use;
// events of the same user are processed one at a time.
type Engine struct {
	store       store.Store
	states      state.Manager
	admins      map[int64]struct{}
	adminOrder  []int64
	photoID     string
	linkBaseURL string
	newToken    func() string
	now         func() time.Time

	callbacks map[Action]callbackHandler
	steps     map[state.Step]textHandler
	// global commands pre-empt any active dialog step
	global map[string]textHandler

	locks userLocks
}

// New validates options and builds the dispatch tables.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("workflow: nil store")
	}
	if opts.States == nil {
		return nil, errors.New("workflow: nil state manager")
	}
	e := &Engine{
		store:       opts.Store,
		states:      opts.States,
		admins:      make(map[int64]struct{}, len(opts.Admins)),
		photoID:     opts.PhotoID,
		linkBaseURL: opts.LinkBaseURL,
		newToken:    opts.NewToken,
		now:         opts.Now,
	}
	for _, id := range opts.Admins {
		if _, dup := e.admins[id]; dup {
			continue
		}
		e.admins[id] = struct{}{}
		e.adminOrder = append(e.adminOrder, id)
	}
	sort.Slice(e.adminOrder, func(i, j int) bool { return e.adminOrder[i] < e.adminOrder[j] })
	if e.newToken == nil {
		e.newToken = uuid.NewString
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.callbacks = map[Action]callbackHandler{
		ActionApprove:    e.approve,
		ActionReject:     e.reject,
		ActionCreateLink: e.createLink,
		ActionService:    e.chooseService,
		ActionShowLinks:  e.showLinks,
		ActionDelete:     e.deleteLink,
		ActionDeleteAll:  e.deleteAll,
		ActionBackToMenu: e.backToMenu,
		ActionNoop:       e.noop,
	}
	e.steps = map[state.Step]textHandler{
		StepApplySource:     e.applySource,
		StepApplyExperience: e.applyExperience,
		StepApplyTime:       e.applyTime,
		StepLinkService:     e.linkServiceText,
		StepLinkPrice:       e.linkPrice,
	}
	e.global = map[string]textHandler{
		CommandCancel:       e.cancel,
		CommandApplications: e.listApplications,
	}

	for _, a := range Actions() {
		if e.callbacks[a] == nil {
			return nil, fmt.Errorf("workflow: no handler for action %q", a)
		}
	}
	for _, st := range Steps() {
		if e.steps[st] == nil {
			return nil, fmt.Errorf("workflow: no handler for step %q", st)
		}
	}
	return e, nil
}

// IsAdmin reports whether userID is on the admin allow-list.
func (e *Engine) IsAdmin(userID int64) bool {
	_, ok := e.admins[userID]
	return ok
}

// InProgress reports whether the user is inside a dialog.
func (e *Engine) InProgress(userID int64) bool {
	return e.states.InProgress(userID)
}

// Handle processes a single event and returns what to render. State and table
// changes are committed before Handle returns; a failed render never rolls
// them back. Callback events always yield exactly one Answer response, even
// when an error is returned.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Response, error) {
	unlock := e.locks.lock(ev.From.ID)
	defer unlock()
	return e.handle(ctx, ev)
}

// HandleCommit is Handle with commit run on the responses before the user's
// lock is released, so renders of one user's events happen in event order.
// A commit error is joined to the handler's error.
func (e *Engine) HandleCommit(ctx context.Context, ev Event, commit func([]Response) error) error {
	unlock := e.locks.lock(ev.From.ID)
	defer unlock()
	out, err := e.handle(ctx, ev)
	if commit != nil && len(out) > 0 {
		err = errors.Join(err, commit(out))
	}
	return err
}

func (e *Engine) handle(ctx context.Context, ev Event) ([]Response, error) {
	switch ev.Kind {
	case EventCallback:
		out, err := e.handleCallback(ctx, ev)
		if !hasAnswer(out) {
			out = append(out, answer(""))
		}
		return out, err
	case EventText:
		return e.handleText(ctx, ev)
	}
	return nil, fmt.Errorf("workflow: unsupported event kind %d", ev.Kind)
}

func (e *Engine) handleCallback(ctx context.Context, ev Event) ([]Response, error) {
	p, err := ParsePayload(ev.Data)
	switch {
	case errors.Is(err, ErrUnknownAction):
		logger.Debug(ctx, "workflow", "callback.unknown",
			slog.String("payload", logger.SanitizeLimit(ev.Data, 64)),
		)
		return nil, nil
	case err != nil:
		logger.Warn(ctx, "workflow", "callback.malformed",
			slog.String("payload", logger.SanitizeLimit(ev.Data, 64)),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	ctx = logger.WithAction(ctx, string(p.Action))
	return e.callbacks[p.Action](ctx, ev, p)
}

func (e *Engine) handleText(ctx context.Context, ev Event) ([]Response, error) {
	cmd := commandName(ev.Text)
	if h, ok := e.global[cmd]; ok {
		return h(ctx, ev)
	}

	step := e.states.Step(ev.From.ID)
	if step != state.StepNone {
		ctx = logger.WithStep(ctx, string(step))
		h, ok := e.steps[step]
		if !ok {
			logger.Warn(ctx, "workflow", "step.orphaned")
			e.states.Clear(ev.From.ID)
			return nil, nil
		}
		return h(ctx, ev)
	}

	if cmd == CommandStart {
		return e.start(ctx, ev)
	}
	return nil, nil
}

// commandName extracts "/cmd" from "/cmd@botname args"; empty for plain text.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

func (e *Engine) roleOf(userID int64) string {
	if e.IsAdmin(userID) {
		return roleAdmin
	}
	return roleWorker
}

func (e *Engine) menuCaption(u User) string {
	return greeting(u, e.roleOf(u.ID))
}

// userLocks hands out one mutex per user, dropping it once nobody waits.
type userLocks struct {
	mu sync.Mutex
	m  map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int64]*userLock)
	}
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}
