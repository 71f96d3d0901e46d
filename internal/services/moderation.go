package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"naimuModeration/internal/events"
	"naimuModeration/internal/logging"
	"naimuModeration/internal/metrics"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
	"naimuModeration/internal/timeutil"
)

// Pusher delivers an already stored notification to its recipient.
type Pusher interface {
	Push(ctx context.Context, n models.Notification) error
}

// EventPublisher emits domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// ImageRemover deletes the stored images of a removed advertisement.
type ImageRemover interface {
	DeleteImages(ctx context.Context, urls []string) error
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return timeutil.Now()
	}
	return c()
}

// authorizeOwner is the single ownership predicate for owner-only
// operations.
func authorizeOwner(callerID, ownerID int64, resource string) error {
	if callerID != ownerID {
		return models.Forbidden("you do not own this %s", resource)
	}
	return nil
}

// notFound maps a missing row onto the NotFound kind naming the entity.
// Other errors pass through.
func notFound(err error, entity string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return models.NotFound("%s not found", entity)
	}
	return err
}

type outcome string

const (
	outcomeOK       outcome = "ok"
	outcomeConflict outcome = "conflict"
	outcomeRejected outcome = "rejected"
	outcomeError    outcome = "error"
)

func recordAction(action string, err error) {
	o := outcomeOK
	switch {
	case err == nil:
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrBadRequest):
		o = outcomeConflict
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrValidation):
		o = outcomeRejected
	default:
		o = outcomeError
	}
	metrics.ModerationActions.WithLabelValues(action, string(o)).Inc()
}

// publisher wraps an EventPublisher so that failures are logged and
// never returned.
type publisher struct {
	events EventPublisher
	logger logging.Logger
}

func (p publisher) publish(ctx context.Context, typ string, key int64, at time.Time, payload interface{}) {
	if p.events == nil {
		return
	}
	e := events.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Key:        strconv.FormatInt(key, 10),
		OccurredAt: at,
		Payload:    payload,
	}
	if err := p.events.Publish(ctx, e); err != nil {
		p.logger.Errorf("publish %s for %d: %v", typ, key, err)
	}
}
