package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/applybot/core/logger"
	"github.com/m3rciful/applybot/core/telegram/state"
	"github.com/m3rciful/applybot/internal/store"
)

const (
	fieldSource     = "source"
	fieldExperience = "experience"
	fieldTime       = "time"
	fieldService    = "service"
)

// start shows the menu to approved users and opens the application dialog for everyone else.
func (e *Engine) start(ctx context.Context, ev Event) ([]Response, error) {
	approved, err := e.store.IsApproved(ctx, ev.From.ID)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if approved {
		return []Response{photoTo(ev.chat(), e.photoID, e.menuCaption(ev.From), mainMenuKeyboard())}, nil
	}

	e.states.SetStep(ev.From.ID, StepApplySource, nil)
	logger.Debug(ctx, "workflow", "dialog.started", slog.String("step", string(StepApplySource)))
	return []Response{textTo(ev.chat(), msgQuestionSource, nil)}, nil
}

func (e *Engine) applySource(ctx context.Context, ev Event) ([]Response, error) {
	if err := e.advance(ctx, ev.From.ID, fieldSource, ev.Text, StepApplyExperience); err != nil {
		return nil, err
	}
	return []Response{textTo(ev.chat(), msgQuestionExperience, nil)}, nil
}

func (e *Engine) applyExperience(ctx context.Context, ev Event) ([]Response, error) {
	if err := e.advance(ctx, ev.From.ID, fieldExperience, ev.Text, StepApplyTime); err != nil {
		return nil, err
	}
	return []Response{textTo(ev.chat(), msgQuestionTime, nil)}, nil
}

// applyTime completes the dialog: the record is stored, every admin gets a
// decision card and the applicant an acknowledgment.
func (e *Engine) applyTime(ctx context.Context, ev Event) ([]Response, error) {
	if err := e.states.Update(ev.From.ID, fieldTime, strings.TrimSpace(ev.Text)); err != nil {
		return nil, fmt.Errorf("apply time: %w", err)
	}
	data := e.states.Data(ev.From.ID)
	app := store.Application{
		UserID:        ev.From.ID,
		FirstName:     ev.From.FirstName,
		Username:      ev.From.Username,
		Source:        data[fieldSource],
		Experience:    data[fieldExperience],
		AvailableTime: data[fieldTime],
		SubmittedAt:   e.now().UTC(),
	}
	if err := e.store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("apply time: %w", err)
	}
	e.states.Clear(ev.From.ID)

	out := make([]Response, 0, len(e.adminOrder)+1)
	card := applicationCard(app)
	for _, admin := range e.adminOrder {
		out = append(out, textTo(admin, card, decisionKeyboard(app.UserID)))
	}
	out = append(out, textTo(ev.chat(), msgApplicationSent, nil))

	logger.Info(ctx, "workflow", "application.submitted",
		slog.Int64("target_id", app.UserID),
		slog.Int("admins", len(e.adminOrder)),
		slog.String("outcome", "submitted"),
	)
	return out, nil
}

// advance records one answer and moves to the next step.
func (e *Engine) advance(ctx context.Context, userID int64, field, value string, next state.Step) error {
	if err := e.states.Update(userID, field, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("record %s: %w", field, err)
	}
	e.states.SetStep(userID, next, nil)
	logger.Debug(ctx, "workflow", "step.advanced", slog.String("next_step", string(next)))
	return nil
}
