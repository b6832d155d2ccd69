package state

import (
	"errors"
	"strings"
)

// Step identifies a single position inside a dialog. Steps are written as
// "<dialog>.<name>"; the prefix groups steps that share collected data.
type Step string

// StepNone indicates there is no active conversation with the user.
const StepNone Step = ""

// Dialog returns the dialog the step belongs to.
func (s Step) Dialog() string {
	if i := strings.IndexByte(string(s), '.'); i > 0 {
		return string(s[:i])
	}
	return string(s)
}

// ErrNoActiveStep is returned when data is recorded for a user outside of any dialog.
var ErrNoActiveStep = errors.New("state: no active step")

// Session stores conversation state and collected answers for a user.
type Session struct {
	Step Step
	Data map[string]string
}

// Manager tracks dialog progress per user.
type Manager interface {
	// SetStep moves the user to st. A fresh session starts from seed; entering
	// a step of a different dialog discards the previous dialog's data.
	SetStep(userID int64, st Step, seed map[string]string)
	// Step returns the current step or StepNone.
	Step(userID int64) Step
	// Update records one collected field for the active dialog.
	Update(userID int64, field, value string) error
	// Data returns a copy of the collected answers.
	Data(userID int64) map[string]string
	// Clear drops the step and everything collected.
	Clear(userID int64)

	InProgress(userID int64) bool
}
