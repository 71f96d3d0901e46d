package services

import (
	"context"
	"strings"
	"time"

	"naimuModeration/internal/ban"
	"naimuModeration/internal/events"
	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

// BanService is the ban ledger. Ban and Unban take the repositories of the
// caller's transaction so a ban can commit together with the action that
// caused it.
type BanService struct {
	Store         repositories.Store
	Notifications *NotificationService
	Events        EventPublisher
	Logger        logging.Logger
	Clock         Clock
}

// Ban overwrites the ban fields. A nil until is a permanent ban.
func (s *BanService) Ban(ctx context.Context, r repositories.Repos, userID int64, until *time.Time, reason *string) (models.User, error) {
	state := models.BanState{Banned: true, BannedUntil: until, Reason: trimmed(reason)}
	if err := r.Users().SetBan(ctx, userID, state); err != nil {
		return models.User{}, notFound(err, "user")
	}
	u, err := r.Users().Get(ctx, userID)
	return u, notFound(err, "user")
}

func (s *BanService) Unban(ctx context.Context, r repositories.Repos, userID int64) (models.User, error) {
	if err := r.Users().SetBan(ctx, userID, models.BanState{}); err != nil {
		return models.User{}, notFound(err, "user")
	}
	u, err := r.Users().Get(ctx, userID)
	return u, notFound(err, "user")
}

func (s *BanService) IsCurrentlyBanned(ctx context.Context, userID int64) (bool, error) {
	u, err := s.Store.Users().Get(ctx, userID)
	if err != nil {
		return false, notFound(err, "user")
	}
	return ban.IsCurrentlyBanned(u, s.Clock.now()), nil
}

// EnsureCanPublish fails with Forbidden when the user is currently banned.
func (s *BanService) EnsureCanPublish(ctx context.Context, r repositories.Repos, userID int64) error {
	u, err := r.Users().Get(ctx, userID)
	if err != nil {
		return notFound(err, "user")
	}
	return ban.CheckCanPublish(u, s.Clock.now())
}

// SetBan applies an admin's direct ban or unban. A ban also notifies the
// user; an unban does not.
func (s *BanService) SetBan(ctx context.Context, userID int64, req models.BanUserRequest) (user models.User, err error) {
	action := "user.unban"
	if req.Banned {
		action = "user.ban"
	}
	defer func() { recordAction(action, err) }()

	now := s.Clock.now()
	if req.Banned && req.BannedUntil != nil && !req.BannedUntil.After(now) {
		return models.User{}, models.Invalid("bannedUntil must be in the future")
	}

	var notice models.Notification
	err = s.Store.WithTx(ctx, func(r repositories.Repos) error {
		if !req.Banned {
			var err error
			user, err = s.Unban(ctx, r, userID)
			return err
		}
		var until *time.Time
		if req.BannedUntil != nil {
			u := req.BannedUntil.UTC()
			until = &u
		}
		var err error
		user, err = s.Ban(ctx, r, userID, until, req.BanReason)
		if err != nil {
			return err
		}
		reason := ban.Reason(req.BanReason, nil)
		notice, err = s.Notifications.Enqueue(ctx, r, ban.Notification(userID, until, describeUntil(until, now), reason))
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	pub := publisher{events: s.Events, logger: s.Logger}
	if req.Banned {
		s.Notifications.Dispatch(ctx, notice)
		pub.publish(ctx, events.UserBanned, userID, now, banPayload(user))
	} else {
		pub.publish(ctx, events.UserUnbanned, userID, now, banPayload(user))
	}
	return user, nil
}

func banPayload(u models.User) map[string]interface{} {
	return map[string]interface{}{
		"userId":      u.ID,
		"banned":      u.Banned,
		"bannedUntil": u.BannedUntil,
		"banReason":   u.BanReason,
	}
}

// describeUntil renders the length of an explicit-expiry ban in whole
// days or hours, rounding to the nearest unit.
func describeUntil(until *time.Time, now time.Time) string {
	if until == nil {
		return "permanently"
	}
	d := until.Sub(now)
	if d >= 24*time.Hour {
		days := int((d + 12*time.Hour) / (24 * time.Hour))
		return ban.DescribeDuration(models.BanDays, &days)
	}
	if d >= time.Hour {
		hours := int((d + 30*time.Minute) / time.Hour)
		return ban.DescribeDuration(models.BanHours, &hours)
	}
	minutes := int((d + 30*time.Second) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return ban.DescribeDuration(models.BanMinutes, &minutes)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
