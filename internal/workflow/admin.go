package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/applybot/core/logger"
)

// maxPendingListed caps how many cards /applications sends at once.
const maxPendingListed = 20

func (e *Engine) denied(ctx context.Context, ev Event, p Payload) []Response {
	logger.Warn(ctx, "workflow", "admin.denied",
		slog.String("action", string(p.Action)),
		slog.Int64("target_id", p.ID),
	)
	return []Response{alert(msgAccessDenied)}
}

// approve grants menu access to the target user and sends them the menu.
func (e *Engine) approve(ctx context.Context, ev Event, p Payload) ([]Response, error) {
	if !e.IsAdmin(ev.From.ID) {
		return e.denied(ctx, ev, p), nil
	}
	if err := e.store.Approve(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("approve %d: %w", p.ID, err)
	}

	caption := msgMenuFallback
	app, ok, err := e.store.Application(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("approve %d: %w", p.ID, err)
	}
	if ok {
		caption = e.menuCaption(User{ID: app.UserID, FirstName: app.FirstName, Username: app.Username})
	}

	logger.Info(ctx, "workflow", "application.decided",
		slog.Int64("target_id", p.ID),
		slog.String("outcome", "approved"),
	)
	return []Response{
		textTo(p.ID, msgApproved, nil),
		photoTo(p.ID, e.photoID, caption, mainMenuKeyboard()),
		answer(ackApproved),
	}, nil
}

// reject notifies the target user. The stored application stays, so the user may apply again.
func (e *Engine) reject(ctx context.Context, ev Event, p Payload) ([]Response, error) {
	if !e.IsAdmin(ev.From.ID) {
		return e.denied(ctx, ev, p), nil
	}
	logger.Info(ctx, "workflow", "application.decided",
		slog.Int64("target_id", p.ID),
		slog.String("outcome", "rejected"),
	)
	return []Response{
		textTo(p.ID, msgRejected, nil),
		answer(ackRejected),
	}, nil
}

// listApplications re-sends decision cards for applicants still waiting for approval.
func (e *Engine) listApplications(ctx context.Context, ev Event) ([]Response, error) {
	if !e.IsAdmin(ev.From.ID) {
		logger.Warn(ctx, "workflow", "admin.denied", slog.String("action", CommandApplications))
		return []Response{textTo(ev.chat(), msgAccessDenied, nil)}, nil
	}
	pending, err := e.store.PendingApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if len(pending) == 0 {
		return []Response{textTo(ev.chat(), msgNoPending, nil)}, nil
	}

	shown := pending
	if len(shown) > maxPendingListed {
		shown = shown[:maxPendingListed]
	}
	out := make([]Response, 0, len(shown)+1)
	for _, app := range shown {
		out = append(out, textTo(ev.chat(), applicationCard(app), decisionKeyboard(app.UserID)))
	}
	if len(pending) > len(shown) {
		out = append(out, textTo(ev.chat(), fmt.Sprintf("… и ещё %d", len(pending)-len(shown)), nil))
	}
	return out, nil
}

// cancel drops whatever dialog the user is in.
func (e *Engine) cancel(ctx context.Context, ev Event) ([]Response, error) {
	step := e.states.Step(ev.From.ID)
	if !e.states.InProgress(ev.From.ID) {
		return []Response{textTo(ev.chat(), msgNothingToCancel, nil)}, nil
	}
	e.states.Clear(ev.From.ID)
	logger.Debug(ctx, "workflow", "dialog.cancelled", slog.String("step", string(step)))
	return []Response{textTo(ev.chat(), msgCancelled, nil)}, nil
}
