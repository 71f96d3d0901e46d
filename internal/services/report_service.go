package services

import (
	"context"
	"errors"
	"time"

	"naimuModeration/internal/ban"
	"naimuModeration/internal/events"
	"naimuModeration/internal/fsm"
	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

const deletedByModeratorNote = "Advertisement deleted by moderator"

// ReportService runs the report resolution workflow. Resolving with a ban
// writes the report, the ban and the ban notification in one transaction.
type ReportService struct {
	Store         repositories.Store
	Bans          *BanService
	Notifications *NotificationService
	Images        ImageRemover
	Events        EventPublisher
	Logger        logging.Logger
	Clock         Clock
}

func (s *ReportService) Create(ctx context.Context, reporterID int64, req models.CreateReportRequest) (rep models.Report, err error) {
	defer func() { recordAction("report.create", err) }()

	if !req.Reason.Valid() {
		return models.Report{}, models.Invalid("reason must be one of SPAM, INAPPROPRIATE, FAKE, SCAM, COPYRIGHT, OTHER")
	}
	if req.AdvertisementID <= 0 {
		return models.Report{}, models.Invalid("advertisementId is required")
	}

	adID := req.AdvertisementID
	err = s.Store.WithTx(ctx, func(r repositories.Repos) error {
		if err := s.Bans.EnsureCanPublish(ctx, r, reporterID); err != nil {
			return err
		}
		if _, err := r.Ads().Get(ctx, adID); err != nil {
			return notFound(err, "advertisement")
		}
		pending, err := r.Reports().HasPending(ctx, adID, reporterID)
		if err != nil {
			return err
		}
		if pending {
			return models.BadRequest("you have already reported this advertisement")
		}
		rep, err = r.Reports().Create(ctx, models.Report{
			AdvertisementID: &adID,
			ReporterID:      reporterID,
			Reason:          req.Reason,
			Description:     trimmed(req.Description),
			Status:          models.ReportStatusPending,
			CreatedAt:       s.Clock.now(),
		})
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return models.BadRequest("you have already reported this advertisement")
		case errors.Is(err, repositories.ErrForeignKey):
			return models.NotFound("advertisement not found")
		}
		return err
	})
	if err != nil {
		return models.Report{}, err
	}

	publisher{events: s.Events, logger: s.Logger}.publish(ctx, events.ReportCreated, rep.ID, rep.CreatedAt, map[string]interface{}{
		"reportId":        rep.ID,
		"advertisementId": adID,
		"reporterId":      reporterID,
		"reason":          rep.Reason,
	})
	return s.get(ctx, rep.ID)
}

func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, models.Invalid("status must be one of PENDING, RESOLVED, DISMISSED")
	}
	if filter.Reason != nil && !filter.Reason.Valid() {
		return nil, models.Invalid("reason must be one of SPAM, INAPPROPRIATE, FAKE, SCAM, COPYRIGHT, OTHER")
	}
	return s.Store.Reports().List(ctx, filter)
}

// Resolve closes a PENDING report. With RESOLVED and banUser the owner of
// the reported advertisement is banned and notified. Ban fields are
// ignored when dismissing.
func (s *ReportService) Resolve(ctx context.Context, adminID, id int64, req models.ResolveReportRequest) (rep models.Report, err error) {
	defer func() { recordAction("report.resolve", err) }()

	if req.Status != models.ReportStatusResolved && req.Status != models.ReportStatusDismissed {
		return models.Report{}, models.Invalid("status must be RESOLVED or DISMISSED")
	}
	now := s.Clock.now()
	withBan := req.Status == models.ReportStatusResolved && req.BanUser

	var (
		expiry   *time.Time
		reason   string
		duration string
	)
	if withBan {
		expiry, err = ban.Until(req.BanDuration, req.BanDurationValue, now)
		if err != nil {
			return models.Report{}, err
		}
		reason = ban.Reason(req.BanReason, req.ResolutionNote)
		duration = ban.DescribeDuration(req.BanDuration, req.BanDurationValue)
	}

	var (
		notice  models.Notification
		bannedU models.User
	)
	err = s.Store.WithTx(ctx, func(r repositories.Repos) error {
		current, err := r.Reports().Get(ctx, id)
		if err != nil {
			return notFound(err, "report")
		}
		if !fsm.CanTransitionReport(current.Status, req.Status) {
			return models.BadRequest("report already processed")
		}
		err = r.Reports().Resolve(ctx, id, models.ReportResolution{
			Status:     req.Status,
			ResolvedBy: adminID,
			ResolvedAt: now,
			Note:       trimmed(req.ResolutionNote),
		})
		if errors.Is(err, repositories.ErrStatusChanged) {
			return models.BadRequest("report already processed")
		}
		if err != nil || !withBan {
			return err
		}

		if current.AdvertisementID == nil {
			return models.NotFound("advertisement not found")
		}
		ad, err := r.Ads().Get(ctx, *current.AdvertisementID)
		if err != nil {
			return notFound(err, "advertisement")
		}
		bannedU, err = s.Bans.Ban(ctx, r, ad.OwnerID, expiry, &reason)
		if err != nil {
			return err
		}
		notice, err = s.Notifications.Enqueue(ctx, r, ban.Notification(ad.OwnerID, expiry, duration, reason))
		return err
	})
	if err != nil {
		return models.Report{}, err
	}

	pub := publisher{events: s.Events, logger: s.Logger}
	pub.publish(ctx, events.ReportResolved, id, now, map[string]interface{}{
		"reportId":   id,
		"status":     req.Status,
		"resolvedBy": adminID,
		"banUser":    withBan,
	})
	if withBan {
		s.Notifications.Dispatch(ctx, notice)
		pub.publish(ctx, events.UserBanned, bannedU.ID, now, banPayload(bannedU))
	}
	return s.get(ctx, id)
}

// DeleteReportedAdvertisement removes a reported advertisement and
// resolves every PENDING report against it, the referenced one included.
// The owner is not notified.
func (s *ReportService) DeleteReportedAdvertisement(ctx context.Context, adminID int64, req models.DeleteReportedAdRequest) (err error) {
	defer func() { recordAction("advertisement.delete_reported", err) }()

	if req.AdvertisementID <= 0 || req.ReportID <= 0 {
		return models.Invalid("advertisementId and reportId are required")
	}
	now := s.Clock.now()
	note := deletedByModeratorNote

	var (
		ad     models.Advertisement
		closed int64
	)
	err = s.Store.WithTx(ctx, func(r repositories.Repos) error {
		rep, err := r.Reports().Get(ctx, req.ReportID)
		if err != nil {
			return notFound(err, "report")
		}
		if rep.AdvertisementID == nil {
			return models.NotFound("advertisement not found")
		}
		if *rep.AdvertisementID != req.AdvertisementID {
			return models.BadRequest("report does not refer to this advertisement")
		}
		ad, err = r.Ads().Get(ctx, req.AdvertisementID)
		if err != nil {
			return notFound(err, "advertisement")
		}
		closed, err = r.Reports().ResolvePendingForAd(ctx, ad.ID, models.ReportResolution{
			Status:     models.ReportStatusResolved,
			ResolvedBy: adminID,
			ResolvedAt: now,
			Note:       &note,
		})
		if err != nil {
			return err
		}
		return notFound(r.Ads().Delete(ctx, ad.ID), "advertisement")
	})
	if err != nil {
		return err
	}

	if s.Images != nil && len(ad.Images) > 0 {
		if err := s.Images.DeleteImages(ctx, ad.Images); err != nil {
			s.Logger.Errorf("delete images of advertisement %d: %v", ad.ID, err)
		}
	}
	publisher{events: s.Events, logger: s.Logger}.publish(ctx, events.AdvertisementDeletedByAdmin, ad.ID, now, map[string]interface{}{
		"advertisementId": ad.ID,
		"ownerId":         ad.OwnerID,
		"reportId":        req.ReportID,
		"deletedBy":       adminID,
		"reportsResolved": closed,
	})
	return nil
}

func (s *ReportService) get(ctx context.Context, id int64) (models.Report, error) {
	rep, err := s.Store.Reports().Get(ctx, id)
	if err != nil {
		return models.Report{}, notFound(err, "report")
	}
	return rep, nil
}
