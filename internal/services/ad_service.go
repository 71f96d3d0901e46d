package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"naimuModeration/internal/events"
	"naimuModeration/internal/fsm"
	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

const noReasonGiven = "no reason given"

// AdService runs the advertisement lifecycle. Status changes go through
// the transition table and are applied as conditional updates so that of
// two racing requests exactly one wins.
type AdService struct {
	Store         repositories.Store
	Bans          *BanService
	Notifications *NotificationService
	Images        ImageRemover
	Events        EventPublisher
	Logger        logging.Logger
	Clock         Clock
}

func (s *AdService) Create(ctx context.Context, ownerID int64, req models.CreateAdRequest) (models.Advertisement, error) {
	status := models.AdStatusPending
	if req.Draft {
		status = models.AdStatusDraft
	}
	ad := models.Advertisement{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Images:      req.Images,
		Status:      status,
		Type:        req.Type,
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		CreatedAt:   s.Clock.now(),
	}

	var created models.Advertisement
	err := s.Store.WithTx(ctx, func(r repositories.Repos) error {
		if err := s.Bans.EnsureCanPublish(ctx, r, ownerID); err != nil {
			return err
		}
		if err := models.ValidateContent(ad); err != nil {
			return err
		}
		var err error
		created, err = r.Ads().Create(ctx, ad)
		if errors.Is(err, repositories.ErrForeignKey) {
			return models.NotFound("category not found")
		}
		return err
	})
	if err != nil {
		return models.Advertisement{}, err
	}
	return s.Get(ctx, created.ID)
}

func (s *AdService) Get(ctx context.Context, id int64) (models.Advertisement, error) {
	ad, err := s.Store.Ads().Get(ctx, id)
	if err != nil {
		return models.Advertisement{}, notFound(err, "advertisement")
	}
	return ad, nil
}

// Update changes content fields only and never touches the status.
func (s *AdService) Update(ctx context.Context, callerID, id int64, req models.UpdateAdRequest) (models.Advertisement, error) {
	ad, err := s.Get(ctx, id)
	if err != nil {
		return models.Advertisement{}, err
	}
	if err := authorizeOwner(callerID, ad.OwnerID, "advertisement"); err != nil {
		return models.Advertisement{}, err
	}
	if req.Title != nil {
		ad.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		ad.Description = *req.Description
	}
	if req.Price != nil {
		ad.Price = req.Price
	}
	if req.Location != nil {
		ad.Location = req.Location
	}
	if req.Images != nil {
		ad.Images = *req.Images
	}
	if req.Type != nil {
		ad.Type = *req.Type
	}
	if req.CategoryID != nil {
		ad.CategoryID = req.CategoryID
	}
	if err := models.ValidateContent(ad); err != nil {
		return models.Advertisement{}, err
	}
	if _, err := s.Store.Ads().UpdateContent(ctx, ad); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return models.Advertisement{}, models.NotFound("category not found")
		}
		return models.Advertisement{}, notFound(err, "advertisement")
	}
	return s.Get(ctx, id)
}

// Delete removes the caller's own advertisement.
func (s *AdService) Delete(ctx context.Context, callerID, id int64) error {
	ad, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(callerID, ad.OwnerID, "advertisement"); err != nil {
		return err
	}
	if err := s.Store.Ads().Delete(ctx, id); err != nil {
		return notFound(err, "advertisement")
	}
	s.removeImages(ctx, ad)
	return nil
}

// Submit sends a draft to review.
func (s *AdService) Submit(ctx context.Context, callerID, id int64) (models.Advertisement, error) {
	return s.ownerTransition(ctx, callerID, id, models.AdStatusPending, func(ad models.Advertisement) error {
		return s.Bans.EnsureCanPublish(ctx, s.Store, callerID)
	})
}

func (s *AdService) Archive(ctx context.Context, callerID, id int64) (models.Advertisement, error) {
	return s.ownerTransition(ctx, callerID, id, models.AdStatusArchived, nil)
}

func (s *AdService) ownerTransition(ctx context.Context, callerID, id int64, to models.AdStatus, check func(models.Advertisement) error) (models.Advertisement, error) {
	ad, err := s.Get(ctx, id)
	if err != nil {
		return models.Advertisement{}, err
	}
	if err := authorizeOwner(callerID, ad.OwnerID, "advertisement"); err != nil {
		return models.Advertisement{}, err
	}
	if !fsm.CanTransitionAd(ad.Status, to) {
		return models.Advertisement{}, models.Conflict("advertisement cannot move from %s to %s", ad.Status, to)
	}
	if check != nil {
		if err := check(ad); err != nil {
			return models.Advertisement{}, err
		}
	}
	if err := s.Store.Ads().UpdateStatus(ctx, id, ad.Status, to); err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return models.Advertisement{}, models.Conflict("advertisement status changed, reload and try again")
		}
		return models.Advertisement{}, err
	}
	return s.Get(ctx, id)
}

// ListPending returns the review queue, oldest first.
func (s *AdService) ListPending(ctx context.Context) ([]models.Advertisement, error) {
	return s.Store.Ads().ListByStatus(ctx, models.AdStatusPending)
}

// Approve publishes a PENDING advertisement and notifies its owner.
func (s *AdService) Approve(ctx context.Context, id int64) (ad models.Advertisement, err error) {
	defer func() { recordAction("advertisement.approve", err) }()
	return s.review(ctx, id, models.AdStatusActive, func(ad models.Advertisement) models.Notification {
		return models.Notification{
			RecipientID: ad.OwnerID,
			Type:        models.NotificationAdApproved,
			Subject:     "Advertisement approved",
			Body:        fmt.Sprintf("Your advertisement \"%s\" has been approved and is now published.", ad.Title),
			Metadata:    map[string]string{"advertisementId": strconv.FormatInt(ad.ID, 10)},
		}
	}, events.AdvertisementApproved, nil)
}

// Reject deactivates a PENDING advertisement and tells the owner why.
func (s *AdService) Reject(ctx context.Context, id int64, reason *string) (ad models.Advertisement, err error) {
	defer func() { recordAction("advertisement.reject", err) }()
	text := noReasonGiven
	if r := trimmed(reason); r != nil {
		text = *r
	}
	return s.review(ctx, id, models.AdStatusInactive, func(ad models.Advertisement) models.Notification {
		return models.Notification{
			RecipientID: ad.OwnerID,
			Type:        models.NotificationAdRejected,
			Subject:     "Advertisement rejected",
			Body:        fmt.Sprintf("Your advertisement \"%s\" was rejected. Reason: %s", ad.Title, text),
			Metadata: map[string]string{
				"advertisementId": strconv.FormatInt(ad.ID, 10),
				"reason":          text,
			},
		}
	}, events.AdvertisementRejected, map[string]interface{}{"reason": text})
}

func (s *AdService) review(ctx context.Context, id int64, to models.AdStatus, notice func(models.Advertisement) models.Notification, eventType string, extra map[string]interface{}) (models.Advertisement, error) {
	var (
		ad     models.Advertisement
		queued models.Notification
	)
	err := s.Store.WithTx(ctx, func(r repositories.Repos) error {
		var err error
		ad, err = r.Ads().Get(ctx, id)
		if err != nil {
			return notFound(err, "advertisement")
		}
		if ad.Status != models.AdStatusPending || !fsm.CanTransitionAd(ad.Status, to) {
			return models.Conflict("advertisement already processed")
		}
		if err := r.Ads().UpdateStatus(ctx, id, models.AdStatusPending, to); err != nil {
			if errors.Is(err, repositories.ErrStatusChanged) {
				return models.Conflict("advertisement already processed")
			}
			return err
		}
		queued, err = s.Notifications.Enqueue(ctx, r, notice(ad))
		return err
	})
	if err != nil {
		return models.Advertisement{}, err
	}

	s.Notifications.Dispatch(ctx, queued)
	payload := map[string]interface{}{
		"advertisementId": ad.ID,
		"ownerId":         ad.OwnerID,
		"status":          to,
	}
	for k, v := range extra {
		payload[k] = v
	}
	publisher{events: s.Events, logger: s.Logger}.publish(ctx, eventType, ad.ID, s.Clock.now(), payload)
	return s.Get(ctx, id)
}

func (s *AdService) removeImages(ctx context.Context, ad models.Advertisement) {
	if s.Images == nil || len(ad.Images) == 0 {
		return
	}
	if err := s.Images.DeleteImages(ctx, ad.Images); err != nil {
		s.Logger.Errorf("delete images of advertisement %d: %v", ad.ID, err)
	}
}
