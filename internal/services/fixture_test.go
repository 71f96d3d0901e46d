package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"naimuModeration/internal/events"
	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories/memstore"
)

type recordingPusher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPusher) Push(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingImages struct {
	deleted []string
}

func (r *recordingImages) DeleteImages(_ context.Context, urls []string) error {
	r.deleted = append(r.deleted, urls...)
	return nil
}

type fixture struct {
	store   *memstore.Store
	now     time.Time
	pusher  *recordingPusher
	events  *recordingEvents
	images  *recordingImages
	notify  *NotificationService
	bans    *BanService
	ads     *AdService
	reports *ReportService

	admin, owner, reporter models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memstore.New(),
		now:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		pusher: &recordingPusher{},
		events: &recordingEvents{},
		images: &recordingImages{},
	}
	clock := Clock(func() time.Time { return f.now })
	logger := logging.Nop()

	f.notify = &NotificationService{
		Store:   f.store,
		Pushers: map[string]Pusher{"test": f.pusher},
		Logger:  logger,
		Clock:   clock,
	}
	f.bans = &BanService{Store: f.store, Notifications: f.notify, Events: f.events, Logger: logger, Clock: clock}
	f.ads = &AdService{
		Store:         f.store,
		Bans:          f.bans,
		Notifications: f.notify,
		Images:        f.images,
		Events:        f.events,
		Logger:        logger,
		Clock:         clock,
	}
	f.reports = &ReportService{
		Store:         f.store,
		Bans:          f.bans,
		Notifications: f.notify,
		Images:        f.images,
		Events:        f.events,
		Logger:        logger,
		Clock:         clock,
	}

	f.admin = f.store.AddUser(models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin})
	f.owner = f.store.AddUser(models.User{Name: "Bolat", Email: "owner@example.com"})
	f.reporter = f.store.AddUser(models.User{Name: "Aigerim", Email: "reporter@example.com"})
	return f
}

func (f *fixture) createAd(t *testing.T, ownerID int64, title string) models.Advertisement {
	t.Helper()
	ad, err := f.ads.Create(context.Background(), ownerID, models.CreateAdRequest{
		Title:  title,
		Type:   models.AdTypeService,
		Images: []string{"https://cdn.example.com/ads/" + title + ".jpg"},
	})
	if err != nil {
		t.Fatalf("create advertisement: %v", err)
	}
	return ad
}

func (f *fixture) report(t *testing.T, reporterID, adID int64) models.Report {
	t.Helper()
	rep, err := f.reports.Create(context.Background(), reporterID, models.CreateReportRequest{
		AdvertisementID: adID,
		Reason:          models.ReasonScam,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return rep
}

func (f *fixture) user(t *testing.T, id int64) models.User {
	t.Helper()
	u, err := f.store.Users().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %d: %v", id, err)
	}
	return u
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
