package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/m3rciful/applybot/core/logger"
)

// Memory keeps every table in process memory, each behind its own lock.
type Memory struct {
	appsMu sync.RWMutex
	apps   map[int64]Application

	approvedMu sync.RWMutex
	approved   map[int64]struct{}

	linksMu sync.RWMutex
	links   map[int64][]Link
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		apps:     make(map[int64]Application),
		approved: make(map[int64]struct{}),
		links:    make(map[int64][]Link),
	}
}

// SaveApplication overwrites the user's previous application, if any.
func (m *Memory) SaveApplication(ctx context.Context, app Application) error {
	m.appsMu.Lock()
	_, replaced := m.apps[app.UserID]
	m.apps[app.UserID] = app
	m.appsMu.Unlock()

	logger.Debug(ctx, "store", "application.saved",
		slog.Int64("target_id", app.UserID),
		slog.Bool("replaced", replaced),
	)
	return nil
}

// Application looks up a stored application.
func (m *Memory) Application(_ context.Context, userID int64) (Application, bool, error) {
	m.appsMu.RLock()
	defer m.appsMu.RUnlock()
	app, ok := m.apps[userID]
	return app, ok, nil
}

// PendingApplications lists applications of users not yet approved.
func (m *Memory) PendingApplications(_ context.Context) ([]Application, error) {
	m.appsMu.RLock()
	out := make([]Application, 0, len(m.apps))
	for _, app := range m.apps {
		out = append(out, app)
	}
	m.appsMu.RUnlock()

	m.approvedMu.RLock()
	pending := out[:0]
	for _, app := range out {
		if _, ok := m.approved[app.UserID]; !ok {
			pending = append(pending, app)
		}
	}
	m.approvedMu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].SubmittedAt.Equal(pending[j].SubmittedAt) {
			return pending[i].UserID < pending[j].UserID
		}
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})
	return pending, nil
}

// Approve marks the user as approved.
func (m *Memory) Approve(ctx context.Context, userID int64) error {
	m.approvedMu.Lock()
	_, already := m.approved[userID]
	m.approved[userID] = struct{}{}
	m.approvedMu.Unlock()

	logger.Debug(ctx, "store", "user.approved",
		slog.Int64("target_id", userID),
		slog.Bool("repeat", already),
	)
	return nil
}

// IsApproved reports approved-set membership.
func (m *Memory) IsApproved(_ context.Context, userID int64) (bool, error) {
	m.approvedMu.RLock()
	defer m.approvedMu.RUnlock()
	_, ok := m.approved[userID]
	return ok, nil
}

// AppendLink adds link to the end of the user's list.
func (m *Memory) AppendLink(_ context.Context, userID int64, link Link) error {
	m.linksMu.Lock()
	defer m.linksMu.Unlock()
	m.links[userID] = append(m.links[userID], link)
	return nil
}

// Links returns a copy of the user's list.
func (m *Memory) Links(_ context.Context, userID int64) ([]Link, error) {
	m.linksMu.RLock()
	defer m.linksMu.RUnlock()
	src := m.links[userID]
	out := make([]Link, len(src))
	copy(out, src)
	return out, nil
}

// DeleteLink removes the entry at index of the live list.
func (m *Memory) DeleteLink(ctx context.Context, userID int64, index int) (bool, error) {
	m.linksMu.Lock()
	list := m.links[userID]
	if index < 0 || index >= len(list) {
		m.linksMu.Unlock()
		return false, nil
	}
	updated := make([]Link, 0, len(list)-1)
	updated = append(updated, list[:index]...)
	updated = append(updated, list[index+1:]...)
	m.links[userID] = updated
	m.linksMu.Unlock()

	logger.Debug(ctx, "store", "link.deleted",
		slog.Int64("target_id", userID),
		slog.Int("index", index),
		slog.Int("links", len(updated)),
	)
	return true, nil
}

// ClearLinks empties the user's list; safe on an empty list.
func (m *Memory) ClearLinks(_ context.Context, userID int64) (int, error) {
	m.linksMu.Lock()
	defer m.linksMu.Unlock()
	n := len(m.links[userID])
	delete(m.links, userID)
	return n, nil
}
