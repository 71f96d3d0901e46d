package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
	"naimuModeration/internal/repositories/memstore"
)

// staleStore behaves like the wrapped store except that conditional status
// updates inside a transaction report that another writer got there first.
type staleStore struct {
	*memstore.Store
}

func (s staleStore) WithTx(ctx context.Context, fn func(repositories.Repos) error) error {
	return s.Store.WithTx(ctx, func(r repositories.Repos) error {
		return fn(staleRepos{r})
	})
}

type staleRepos struct {
	repositories.Repos
}

func (r staleRepos) Ads() repositories.AdStore         { return staleAds{r.Repos.Ads()} }
func (r staleRepos) Reports() repositories.ReportStore { return staleReports{r.Repos.Reports()} }

type staleAds struct {
	repositories.AdStore
}

func (staleAds) UpdateStatus(context.Context, int64, models.AdStatus, models.AdStatus) error {
	return repositories.ErrStatusChanged
}

type staleReports struct {
	repositories.ReportStore
}

func (staleReports) Resolve(context.Context, int64, models.ReportResolution) error {
	return repositories.ErrStatusChanged
}

func TestApproveLosesRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Bike")
	require.Equal(t, models.AdStatusPending, ad.Status)

	f.ads.Store = staleStore{f.store}

	_, err := f.ads.Approve(ctx, ad.ID)
	require.ErrorIs(t, err, models.ErrConflict)
	assert.Contains(t, err.Error(), "advertisement already processed")

	_, err = f.ads.Reject(ctx, ad.ID, strPtr("blurry photos"))
	require.ErrorIs(t, err, models.ErrConflict)

	assert.Empty(t, f.store.NotificationsFor(f.owner.ID))
	assert.Zero(t, f.pusher.count())
}

func TestResolveLosesRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.createAd(t, f.owner.ID, "Sofa")
	rep := f.report(t, f.reporter.ID, ad.ID)

	f.reports.Store = staleStore{f.store}

	_, err := f.reports.Resolve(ctx, f.admin.ID, rep.ID, models.ResolveReportRequest{
		Status:      models.ReportStatusResolved,
		BanUser:     true,
		BanDuration: models.BanPermanent,
	})
	require.ErrorIs(t, err, models.ErrBadRequest)
	assert.Contains(t, err.Error(), "report already processed")

	assert.False(t, f.user(t, f.owner.ID).Banned)
	assert.Empty(t, f.store.NotificationsFor(f.owner.ID))
	assert.Zero(t, f.pusher.count())

	got, err := f.store.Reports().Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, got.Status)
}
