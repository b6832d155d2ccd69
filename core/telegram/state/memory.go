package state

import (
	"sync"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryManager constructs an in-memory Manager. Sessions live for the process lifetime.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
	}
}

// SetStep updates the step for a user, creating or resetting the session as needed.
func (m *memoryManager) SetStep(userID int64, st Step, seed map[string]string) {
	if st == StepNone {
		m.Clear(userID)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok || sess.Step == StepNone || sess.Step.Dialog() != st.Dialog() {
		sess = &Session{Data: copyData(seed)}
		m.sessions[userID] = sess
	}
	sess.Step = st
}

// Step returns the current step of a user, or StepNone if none exists.
func (m *memoryManager) Step(userID int64) Step {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.Step
	}
	return StepNone
}

// Update stores one collected value in the active session.
func (m *memoryManager) Update(userID int64, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok || sess.Step == StepNone {
		return ErrNoActiveStep
	}
	sess.Data[field] = value
	return nil
}

// Data returns a snapshot of collected values; never nil.
func (m *memoryManager) Data(userID int64) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return copyData(sess.Data)
	}
	return map[string]string{}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active step.
func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.Step != StepNone
}

func copyData(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
