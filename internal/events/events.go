// Package events publishes moderation domain events after the state change
// they describe has been committed.
package events

import (
	"context"
	"time"
)

const (
	AdvertisementApproved       = "advertisement.approved"
	AdvertisementRejected       = "advertisement.rejected"
	AdvertisementDeletedByAdmin = "advertisement.deleted_by_admin"
	ReportCreated               = "report.created"
	ReportResolved              = "report.resolved"
	UserBanned                  = "user.banned"
	UserUnbanned                = "user.unbanned"
)

// Event is the envelope written to the bus. Key is the id of the entity the
// event is about and decides partitioning.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
