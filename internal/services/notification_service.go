package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/metrics"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService is the notification sink. Enqueue stores a
// notification inside the caller's transaction; Dispatch pushes stored
// notifications once that transaction has committed.
type NotificationService struct {
	Store   repositories.Store
	Pushers map[string]Pusher
	Logger  logging.Logger
	Clock   Clock
}

func (s *NotificationService) Enqueue(ctx context.Context, r repositories.Repos, n models.Notification) (models.Notification, error) {
	n.Status = models.NotificationUnread
	n.CreatedAt = s.Clock.now()
	n.ReadAt = nil
	if n.EventID == "" {
		n.EventID = uuid.NewString()
	}
	return r.Notifications().Create(ctx, n)
}

// Dispatch is best effort: push failures are logged and counted.
func (s *NotificationService) Dispatch(ctx context.Context, ns ...models.Notification) {
	for _, n := range ns {
		for channel, p := range s.Pushers {
			if err := p.Push(ctx, n); err != nil {
				metrics.NotificationPushes.WithLabelValues(channel, "error").Inc()
				s.Logger.Errorf("push notification %d to user %d via %s: %v", n.ID, n.RecipientID, channel, err)
				continue
			}
			metrics.NotificationPushes.WithLabelValues(channel, "ok").Inc()
		}
	}
}

func (s *NotificationService) List(ctx context.Context, callerID int64, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, models.Invalid("status must be one of UNREAD, READ, ARCHIVED")
	}
	if filter.Offset < 0 {
		return nil, models.Invalid("offset must not be negative")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultNotificationLimit
	}
	if filter.Limit > maxNotificationLimit {
		filter.Limit = maxNotificationLimit
	}
	return s.Store.Notifications().ListByRecipient(ctx, callerID, filter)
}

// MarkRead is idempotent for READ notifications. Archived notifications
// stay archived.
func (s *NotificationService) MarkRead(ctx context.Context, callerID, id int64) (models.Notification, error) {
	n, err := s.own(ctx, callerID, id)
	if err != nil {
		return models.Notification{}, err
	}
	switch n.Status {
	case models.NotificationRead:
		return n, nil
	case models.NotificationArchived:
		return models.Notification{}, models.Conflict("notification is archived")
	}
	return s.setStatus(ctx, id, models.NotificationRead)
}

func (s *NotificationService) Archive(ctx context.Context, callerID, id int64) (models.Notification, error) {
	n, err := s.own(ctx, callerID, id)
	if err != nil {
		return models.Notification{}, err
	}
	if n.Status == models.NotificationArchived {
		return n, nil
	}
	return s.setStatus(ctx, id, models.NotificationArchived)
}

// own loads a notification of the caller. Someone else's notification is
// reported as missing so its existence is not disclosed.
func (s *NotificationService) own(ctx context.Context, callerID, id int64) (models.Notification, error) {
	n, err := s.Store.Notifications().Get(ctx, id)
	if err != nil {
		return models.Notification{}, notFound(err, "notification")
	}
	if err := authorizeOwner(callerID, n.RecipientID, "notification"); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return models.Notification{}, models.NotFound("notification not found")
		}
		return models.Notification{}, err
	}
	return n, nil
}

func (s *NotificationService) setStatus(ctx context.Context, id int64, status models.NotificationStatus) (models.Notification, error) {
	if err := s.Store.Notifications().UpdateStatus(ctx, id, status, s.Clock.now()); err != nil {
		return models.Notification{}, notFound(err, "notification")
	}
	n, err := s.Store.Notifications().Get(ctx, id)
	return n, notFound(err, "notification")
}
