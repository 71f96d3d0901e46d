package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naimuModeration/internal/ban"
	"naimuModeration/internal/events"
	"naimuModeration/internal/models"
)

func TestDuplicateReportSuppressed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Phone")

	first := f.report(t, f.reporter.ID, ad.ID)
	assert.Equal(t, models.ReportStatusPending, first.Status)

	_, err := f.reports.Create(ctx, f.reporter.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: models.ReasonSpam})
	require.ErrorIs(t, err, models.ErrBadRequest)

	_, err = f.reports.Resolve(ctx, f.admin.ID, first.ID, models.ResolveReportRequest{Status: models.ReportStatusDismissed})
	require.NoError(t, err)

	second, err := f.reports.Create(ctx, f.reporter.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: models.ReasonSpam})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = f.reports.Create(ctx, f.reporter.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: models.ReasonScam})
	require.ErrorIs(t, err, models.ErrBadRequest)

	_, err = f.reports.Resolve(ctx, f.admin.ID, second.ID, models.ResolveReportRequest{Status: models.ReportStatusResolved})
	require.NoError(t, err)

	third, err := f.reports.Create(ctx, f.reporter.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: models.ReasonScam})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, third.Status)
	assert.NotEqual(t, second.ID, third.ID)
}

func TestCreateReportMissingAdvertisement(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.Create(context.Background(), f.reporter.ID, models.CreateReportRequest{AdvertisementID: 404, Reason: models.ReasonFake})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateReportInvalidReason(t *testing.T) {
	f := newFixture(t)
	ad := f.createAd(t, f.owner.ID, "Laptop")
	_, err := f.reports.Create(context.Background(), f.reporter.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: "RUDE"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestResolveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Camera")
	rep := f.report(t, f.reporter.ID, ad.ID)

	resolved, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:         models.ReportStatusResolved,
		ResolutionNote: strPtr("checked"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.admin.ID, *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(f.now))

	_, err = f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{Status: models.ReportStatusDismissed})
	require.ErrorIs(t, err, models.ErrBadRequest)
	assert.Equal(t, "report already processed", err.Error())

	got, err := f.store.Reports().Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, got.Status)
}

func TestResolveValidatesBeforeMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Guitar")
	rep := f.report(t, f.reporter.ID, ad.ID)

	cases := []models.ResolveReportRequest{
		{Status: models.ReportStatusPending},
		{Status: "CLOSED"},
		{Status: models.ReportStatusResolved, BanUser: true, BanDuration: models.BanDays},
		{Status: models.ReportStatusResolved, BanUser: true, BanDuration: models.BanDays, BanDurationValue: intPtr(0)},
		{Status: models.ReportStatusResolved, BanUser: true, BanDuration: "weeks", BanDurationValue: intPtr(2)},
	}
	for _, req := range cases {
		_, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, req)
		assert.ErrorIs(t, err, models.ErrValidation)
	}

	got, err := f.store.Reports().Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, got.Status)
	assert.False(t, f.user(t, f.owner.ID).Banned)
}

func TestResolveWithSevenDayBan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Car rental")
	rep := f.report(t, f.reporter.ID, ad.ID)

	_, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:           models.ReportStatusResolved,
		ResolutionNote:   strPtr("fake listing"),
		BanUser:          true,
		BanDuration:      models.BanDays,
		BanDurationValue: intPtr(7),
	})
	require.NoError(t, err)

	owner := f.user(t, f.owner.ID)
	assert.True(t, owner.Banned)
	require.NotNil(t, owner.BannedUntil)
	assert.WithinDuration(t, f.now.Add(7*24*time.Hour), *owner.BannedUntil, time.Second)
	require.NotNil(t, owner.BanReason)
	assert.Equal(t, "Violation of platform rules: fake listing", *owner.BanReason)

	notes := f.store.NotificationsFor(f.owner.ID)
	var bans []models.Notification
	for _, n := range notes {
		if n.Type == models.NotificationBan {
			bans = append(bans, n)
		}
	}
	require.Len(t, bans, 1)
	assert.Contains(t, bans[0].Body, "7 days")
	assert.Equal(t, "false", bans[0].Metadata["permanent"])
	assert.Contains(t, f.events.types(), events.UserBanned)
}

func TestDismissIgnoresBanFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Sofa")
	rep := f.report(t, f.reporter.ID, ad.ID)

	dismissed, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:      models.ReportStatusDismissed,
		BanUser:     true,
		BanDuration: models.BanPermanent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDismissed, dismissed.Status)
	assert.False(t, f.user(t, f.owner.ID).Banned)
	assert.Empty(t, f.store.NotificationsFor(f.owner.ID))
}

func TestResolveBanRollsBackOnNotificationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Watch")
	rep := f.report(t, f.reporter.ID, ad.ID)

	f.store.FailNotifications = assert.AnError
	_, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:      models.ReportStatusResolved,
		BanUser:     true,
		BanDuration: models.BanPermanent,
	})
	require.ErrorIs(t, err, assert.AnError)
	f.store.FailNotifications = nil

	got, err := f.store.Reports().Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, got.Status)
	assert.False(t, f.user(t, f.owner.ID).Banned)
}

func TestCascadeDeleteClearsPendingReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddUser(models.User{Name: "Dana", Email: "dana@example.com"})
	ad := f.createAd(t, f.owner.ID, "Puppies")

	first := f.report(t, f.reporter.ID, ad.ID)
	second := f.report(t, other.ID, ad.ID)
	unrelatedAd := f.createAd(t, f.owner.ID, "Kittens")
	unrelated := f.report(t, f.reporter.ID, unrelatedAd.ID)

	err := f.reports.DeleteReportedAdvertisement(ctx, f.admin.ID, models.DeleteReportedAdRequest{
		AdvertisementID: ad.ID,
		ReportID:        first.ID,
	})
	require.NoError(t, err)

	_, err = f.ads.Get(ctx, ad.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	for _, id := range []int64{first.ID, second.ID} {
		rep, err := f.store.Reports().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusResolved, rep.Status)
		assert.Nil(t, rep.AdvertisementID)
		require.NotNil(t, rep.ResolvedBy)
		assert.Equal(t, f.admin.ID, *rep.ResolvedBy)
	}
	rep, err := f.store.Reports().Get(ctx, unrelated.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, rep.Status)

	assert.Empty(t, f.store.NotificationsFor(f.owner.ID))
	assert.Equal(t, ad.Images, f.images.deleted)
	assert.Contains(t, f.events.types(), events.AdvertisementDeletedByAdmin)
}

func TestCascadeDeleteMissingReport(t *testing.T) {
	f := newFixture(t)
	ad := f.createAd(t, f.owner.ID, "Boat")
	err := f.reports.DeleteReportedAdvertisement(context.Background(), f.admin.ID, models.DeleteReportedAdRequest{
		AdvertisementID: ad.ID,
		ReportID:        12345,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.ads.Get(context.Background(), ad.ID)
	assert.NoError(t, err)
}

func TestCascadeDeleteAfterOwnerDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Kayak")
	rep := f.report(t, f.reporter.ID, ad.ID)
	require.NoError(t, f.ads.Delete(ctx, f.owner.ID, ad.ID))

	err := f.reports.DeleteReportedAdvertisement(ctx, f.admin.ID, models.DeleteReportedAdRequest{
		AdvertisementID: ad.ID,
		ReportID:        rep.ID,
	})
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "advertisement not found")
}

func TestListReportsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Chair")
	rep := f.report(t, f.reporter.ID, ad.ID)
	_, err := f.reports.Create(ctx, f.owner.ID, models.CreateReportRequest{AdvertisementID: ad.ID, Reason: models.ReasonOther})
	require.NoError(t, err)

	scam := models.ReasonScam
	list, err := f.reports.List(ctx, models.ReportFilter{Reason: &scam})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rep.ID, list[0].ID)
	require.NotNil(t, list[0].Advertisement)
	assert.Equal(t, "Chair", list[0].Advertisement.Title)
	require.NotNil(t, list[0].Reporter)
	assert.Equal(t, f.reporter.Name, list[0].Reporter.Name)

	bad := models.ReportStatus("OPEN")
	_, err = f.reports.List(ctx, models.ReportFilter{Status: &bad})
	assert.ErrorIs(t, err, models.ErrValidation)
}

// A reports B's advertisement, the admin resolves with a permanent ban,
// and B can no longer publish.
func TestReportToPermanentBanScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.createAd(t, f.owner.ID, "Too good to be true")

	rep, err := f.reports.Create(ctx, f.reporter.ID, models.CreateReportRequest{
		AdvertisementID: x.ID,
		Reason:          models.ReasonScam,
	})
	require.NoError(t, err)

	resolved, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:      models.ReportStatusResolved,
		BanUser:     true,
		BanDuration: models.BanPermanent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.admin.ID, *resolved.ResolvedBy)

	b := f.user(t, f.owner.ID)
	assert.True(t, b.Banned)
	assert.Nil(t, b.BannedUntil)
	assert.True(t, ban.IsCurrentlyBanned(b, f.now))

	notes := f.store.NotificationsFor(f.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBan, notes[0].Type)
	assert.Equal(t, 1, f.pusher.count())

	_, err = f.ads.Create(ctx, f.owner.ID, models.CreateAdRequest{Title: "New one", Type: models.AdTypeService})
	require.ErrorIs(t, err, models.ErrForbidden)
	assert.Contains(t, err.Error(), "permanently banned")
}
