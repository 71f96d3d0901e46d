package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naimuModeration/internal/events"
	"naimuModeration/internal/models"
)

func TestDirectBanAndUnban(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := f.now.Add(48 * time.Hour)

	u, err := f.bans.SetBan(ctx, f.owner.ID, models.BanUserRequest{
		Banned:      true,
		BannedUntil: &until,
		BanReason:   strPtr("spam"),
	})
	require.NoError(t, err)
	assert.True(t, u.Banned)
	require.NotNil(t, u.BannedUntil)
	assert.True(t, u.BannedUntil.Equal(until))

	banned, err := f.bans.IsCurrentlyBanned(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, banned)

	notes := f.store.NotificationsFor(f.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBan, notes[0].Type)
	assert.Contains(t, notes[0].Body, "2 days")
	assert.Contains(t, notes[0].Body, "spam")

	_, err = f.ads.Create(ctx, f.owner.ID, models.CreateAdRequest{Title: "x", Type: models.AdTypeService})
	require.ErrorIs(t, err, models.ErrForbidden)
	assert.Contains(t, err.Error(), "banned until 03.03.2026")

	u, err = f.bans.SetBan(ctx, f.owner.ID, models.BanUserRequest{Banned: false})
	require.NoError(t, err)
	assert.False(t, u.Banned)
	assert.Nil(t, u.BannedUntil)
	assert.Nil(t, u.BanReason)
	assert.Len(t, f.store.NotificationsFor(f.owner.ID), 1)

	assert.Equal(t, []string{events.UserBanned, events.UserUnbanned}, f.events.types())
}

func TestBanIsIdempotentOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := f.now.Add(time.Hour)

	_, err := f.bans.SetBan(ctx, f.owner.ID, models.BanUserRequest{Banned: true, BannedUntil: &until, BanReason: strPtr("first")})
	require.NoError(t, err)
	u, err := f.bans.SetBan(ctx, f.owner.ID, models.BanUserRequest{Banned: true, BanReason: strPtr("second")})
	require.NoError(t, err)
	assert.Nil(t, u.BannedUntil)
	require.NotNil(t, u.BanReason)
	assert.Equal(t, "second", *u.BanReason)
}

func TestBanInThePastRejected(t *testing.T) {
	f := newFixture(t)
	past := f.now.Add(-time.Minute)
	_, err := f.bans.SetBan(context.Background(), f.owner.ID, models.BanUserRequest{Banned: true, BannedUntil: &past})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.False(t, f.user(t, f.owner.ID).Banned)
}

func TestBanUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.bans.SetBan(context.Background(), 999, models.BanUserRequest{Banned: true})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExpiredBanNotEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	until := f.now.Add(time.Hour)
	_, err := f.bans.SetBan(ctx, f.owner.ID, models.BanUserRequest{Banned: true, BannedUntil: &until})
	require.NoError(t, err)

	f.now = until.Add(time.Second)
	banned, err := f.bans.IsCurrentlyBanned(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.False(t, banned)
	assert.True(t, f.user(t, f.owner.ID).Banned)

	_, err = f.ads.Create(ctx, f.owner.ID, models.CreateAdRequest{Title: "back", Type: models.AdTypeService})
	assert.NoError(t, err)
}

func TestDescribeUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	cases := []struct {
		until *time.Time
		want  string
	}{
		{nil, "permanently"},
		{at(7 * 24 * time.Hour), "7 days"},
		{at(24 * time.Hour), "1 day"},
		{at(3 * time.Hour), "3 hours"},
		{at(10 * time.Minute), "10 minutes"},
	}
	for _, tc := range cases {
		if got := describeUntil(tc.until, now); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
