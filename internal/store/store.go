// Package store owns the bot's domain tables: submitted applications, the
// approved-user set and each user's link list.
package store

import (
	"context"
	"time"
)

// Service names a payment service a link can be created for.
type Service string

const (
	ServiceViber  Service = "VIBER"
	ServicePrivat Service = "PRIVAT"
	ServicePUMB   Service = "PUMB"
	ServiceOshad  Service = "OSHAD"
	ServiceMulti  Service = "MULTI"
)

// Services lists every known service in menu order.
func Services() []Service {
	return []Service{ServiceViber, ServicePrivat, ServicePUMB, ServiceOshad, ServiceMulti}
}

// ParseService validates a service name.
func ParseService(s string) (Service, bool) {
	for _, svc := range Services() {
		if string(svc) == s {
			return svc, true
		}
	}
	return "", false
}

// Application is the answer set submitted by a candidate.
type Application struct {
	UserID        int64
	FirstName     string
	Username      string
	Source        string
	Experience    string
	AvailableTime string
	SubmittedAt   time.Time
}

// Link is a generated payment link owned by one user.
type Link struct {
	Service Service
	// Price is kept as the decimal string the user typed.
	Price string
	Link  string
}

// Store is the repository the workflow reads and mutates.
type Store interface {
	// SaveApplication stores app, replacing any earlier submission of the same user.
	SaveApplication(ctx context.Context, app Application) error
	Application(ctx context.Context, userID int64) (Application, bool, error)
	// PendingApplications returns stored applications whose authors are not approved, oldest first.
	PendingApplications(ctx context.Context) ([]Application, error)

	// Approve adds userID to the approved set. It is idempotent.
	Approve(ctx context.Context, userID int64) error
	IsApproved(ctx context.Context, userID int64) (bool, error)

	AppendLink(ctx context.Context, userID int64, link Link) error
	// Links returns the user's links in creation order.
	Links(ctx context.Context, userID int64) ([]Link, error)
	// DeleteLink removes the link at index; it reports false when index is out of range.
	DeleteLink(ctx context.Context, userID int64, index int) (bool, error)
	// ClearLinks removes every link of the user and returns how many were dropped.
	ClearLinks(ctx context.Context, userID int64) (int, error)
}
