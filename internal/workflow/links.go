package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/state"
	"github.com/m3rciful/applybot/internal/store"
)

var validate = validator.New()

const tokenAttempts = 3

var errTokenTaken = errors.New("every generated link token is already taken")

// validPrice accepts ASCII digits only, with a value above zero.
func validPrice(s string) bool {
	if err := validate.Var(s, "required,number"); err != nil {
		return false
	}
	return strings.TrimLeft(s, "0") != ""
}

func (e *Engine) createLink(ctx context.Context, ev Event, _ Payload) ([]Response, error) {
	e.states.SetStep(ev.From.ID, StepLinkService, nil)
	logger.Debug(ctx, "workflow", "dialog.started", slog.String("step", string(StepLinkService)))
	return []Response{editCaption(msgChooseService, servicesKeyboard()), answer("")}, nil
}

func (e *Engine) chooseService(ctx context.Context, ev Event, p Payload) ([]Response, error) {
	e.states.SetStep(ev.From.ID, StepLinkPrice, nil)
	if err := e.states.Update(ev.From.ID, fieldService, string(p.Service)); err != nil {
		return nil, fmt.Errorf("choose service: %w", err)
	}
	logger.Debug(ctx, "workflow", "step.advanced",
		slog.String("next_step", string(StepLinkPrice)),
		slog.String("service", string(p.Service)),
	)
	return []Response{textTo(ev.chat(), pricePrompt(p.Service), nil), answer("")}, nil
}

// linkServiceText nudges users who type instead of tapping a service.
func (e *Engine) linkServiceText(_ context.Context, ev Event) ([]Response, error) {
	return []Response{textTo(ev.chat(), msgUseServiceKeys, nil)}, nil
}

// linkPrice finishes link creation. Invalid input keeps the dialog at the price step.
func (e *Engine) linkPrice(ctx context.Context, ev Event) ([]Response, error) {
	price := strings.TrimSpace(ev.Text)
	if !validPrice(price) {
		return []Response{textTo(ev.chat(), msgPriceNotNumber, nil)}, nil
	}

	svc, ok := store.ParseService(e.states.Data(ev.From.ID)[fieldService])
	if !ok {
		e.states.Clear(ev.From.ID)
		return nil, fmt.Errorf("link price: service not recorded: %w", state.ErrNoActiveStep)
	}
	url, err := e.freshLink(ctx, ev.From.ID)
	if err != nil {
		return nil, fmt.Errorf("link price: %w", err)
	}
	link := store.Link{Service: svc, Price: price, Link: url}
	if err := e.store.AppendLink(ctx, ev.From.ID, link); err != nil {
		return nil, fmt.Errorf("link price: %w", err)
	}
	e.states.Clear(ev.From.ID)

	logger.Info(ctx, "workflow", "link.created", slog.String("service", string(svc)))
	return []Response{textTo(ev.chat(), linkCreated(link), nil)}, nil
}

// freshLink builds a link whose token is not yet in the user's list.
func (e *Engine) freshLink(ctx context.Context, userID int64) (string, error) {
	links, err := e.store.Links(ctx, userID)
	if err != nil {
		return "", err
	}
	for range tokenAttempts {
		url := e.linkBaseURL + e.newToken()
		if !slices.ContainsFunc(links, func(l store.Link) bool { return l.Link == url }) {
			return url, nil
		}
	}
	return "", errTokenTaken
}

// showLinks renders the list view, or an alert when there is nothing to show.
func (e *Engine) showLinks(ctx context.Context, ev Event, _ Payload) ([]Response, error) {
	return e.renderLinks(ctx, ev, "")
}

func (e *Engine) renderLinks(ctx context.Context, ev Event, ack string) ([]Response, error) {
	links, err := e.store.Links(ctx, ev.From.ID)
	if err != nil {
		return nil, fmt.Errorf("show links: %w", err)
	}
	if len(links) == 0 {
		return []Response{alert(msgNoLinks)}, nil
	}
	return []Response{editCaption(msgYourLinks, linksKeyboard(links)), answer(ack)}, nil
}

// deleteLink removes by position in the current list, then re-renders it.
func (e *Engine) deleteLink(ctx context.Context, ev Event, p Payload) ([]Response, error) {
	removed, err := e.store.DeleteLink(ctx, ev.From.ID, int(p.ID))
	if err != nil {
		return nil, fmt.Errorf("delete link: %w", err)
	}
	ack := ""
	if removed {
		ack = ackDeleted
	}
	return e.renderLinks(ctx, ev, ack)
}

func (e *Engine) deleteAll(ctx context.Context, ev Event, _ Payload) ([]Response, error) {
	n, err := e.store.ClearLinks(ctx, ev.From.ID)
	if err != nil {
		return nil, fmt.Errorf("delete all links: %w", err)
	}
	logger.Debug(ctx, "workflow", "links.cleared", slog.Int("count", n))
	return []Response{editCaption(msgLinksEmpty, mainMenuKeyboard()), answer(ackDeletedAll)}, nil
}

// backToMenu restores the menu photo; an unfinished link dialog is abandoned.
func (e *Engine) backToMenu(_ context.Context, ev Event, _ Payload) ([]Response, error) {
	if e.states.Step(ev.From.ID).Dialog() == StepLinkService.Dialog() {
		e.states.Clear(ev.From.ID)
	}
	return []Response{editMedia(e.photoID, e.menuCaption(ev.From), mainMenuKeyboard()), answer("")}, nil
}

func (e *Engine) noop(context.Context, Event, Payload) ([]Response, error) {
	return []Response{answer("")}, nil
}
