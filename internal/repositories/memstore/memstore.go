// Package memstore is an in-memory repositories.Store used by service and
// handler tests. It mirrors the SQL store's conditional updates and
// transaction rollback.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

type data struct {
	nextID        int64
	users         map[int64]models.User
	categories    map[int64]models.Category
	ads           map[int64]models.Advertisement
	reports       map[int64]models.Report
	notifications map[int64]models.Notification
	sessions      map[string]models.Session
	devices       map[int64][]string
}

func newData() *data {
	return &data{
		users:         map[int64]models.User{},
		categories:    map[int64]models.Category{},
		ads:           map[int64]models.Advertisement{},
		reports:       map[int64]models.Report{},
		notifications: map[int64]models.Notification{},
		sessions:      map[string]models.Session{},
		devices:       map[int64][]string{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.ads {
		c.ads[k] = v
	}
	for k, v := range d.reports {
		c.reports[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.devices {
		c.devices[k] = append([]string(nil), v...)
	}
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// Store is safe for concurrent use. Each call outside WithTx holds the
// store lock for its duration; WithTx holds it for the whole callback.
type Store struct {
	mu sync.Mutex
	d  *data

	// FailNotifications makes every notification insert fail, for
	// exercising transaction rollback.
	FailNotifications error
}

func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.d.id()
	} else if u.ID > s.d.nextID {
		s.d.nextID = u.ID
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.d.users[u.ID] = u
	return u
}

func (s *Store) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.d.id()
	}
	s.d.categories[c.ID] = c
	return c
}

func (s *Store) AddDeviceToken(userID int64, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.devices[userID] = append(s.d.devices[userID], token)
}

// NotificationsFor returns every stored notification of the recipient,
// in insertion order.
func (s *Store) NotificationsFor(recipientID int64) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.d.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) repos(d *data, locked bool) repos {
	return repos{s: s, d: d, locked: locked}
}

func (s *Store) Ads() repositories.AdStore { return adRepo{s.repos(nil, false)} }

func (s *Store) Reports() repositories.ReportStore { return reportRepo{s.repos(nil, false)} }

func (s *Store) Users() repositories.UserStore { return userRepo{s.repos(nil, false)} }

func (s *Store) Sessions() repositories.SessionStore { return sessionRepo{s.repos(nil, false)} }

func (s *Store) Notifications() repositories.NotificationStore {
	return notificationRepo{s.repos(nil, false)}
}

func (s *Store) WithTx(ctx context.Context, fn func(repositories.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.d.clone()
	if err := fn(s.repos(tx, true)); err != nil {
		return err
	}
	s.d = tx
	return nil
}

// repos either runs against a transaction snapshot (locked) or takes the
// store lock around every call.
type repos struct {
	s      *Store
	d      *data
	locked bool
}

func (r repos) Ads() repositories.AdStore                     { return adRepo{r} }
func (r repos) Reports() repositories.ReportStore             { return reportRepo{r} }
func (r repos) Users() repositories.UserStore                 { return userRepo{r} }
func (r repos) Sessions() repositories.SessionStore           { return sessionRepo{r} }
func (r repos) Notifications() repositories.NotificationStore { return notificationRepo{r} }

func (r repos) do(fn func(d *data) error) error {
	if r.locked {
		return fn(r.d)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.d)
}

type adRepo struct{ repos }

func (r adRepo) Create(ctx context.Context, ad models.Advertisement) (models.Advertisement, error) {
	err := r.do(func(d *data) error {
		if _, ok := d.users[ad.OwnerID]; !ok {
			return repositories.ErrForeignKey
		}
		if ad.CategoryID != nil {
			if _, ok := d.categories[*ad.CategoryID]; !ok {
				return repositories.ErrForeignKey
			}
		}
		ad.ID = d.id()
		ad.Owner = nil
		ad.Category = nil
		d.ads[ad.ID] = ad
		return nil
	})
	return ad, err
}

func (r adRepo) Get(ctx context.Context, id int64) (models.Advertisement, error) {
	var ad models.Advertisement
	err := r.do(func(d *data) error {
		stored, ok := d.ads[id]
		if !ok {
			return repositories.ErrNotFound
		}
		ad = d.joinAd(stored)
		return nil
	})
	return ad, err
}

func (r adRepo) UpdateContent(ctx context.Context, ad models.Advertisement) (models.Advertisement, error) {
	err := r.do(func(d *data) error {
		stored, ok := d.ads[ad.ID]
		if !ok {
			return repositories.ErrNotFound
		}
		now := time.Now().UTC()
		stored.Title = ad.Title
		stored.Description = ad.Description
		stored.Price = ad.Price
		stored.Location = ad.Location
		stored.Images = ad.Images
		stored.Type = ad.Type
		stored.CategoryID = ad.CategoryID
		stored.UpdatedAt = &now
		d.ads[ad.ID] = stored
		ad = d.joinAd(stored)
		return nil
	})
	return ad, err
}

func (r adRepo) Delete(ctx context.Context, id int64) error {
	return r.do(func(d *data) error {
		if _, ok := d.ads[id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.ads, id)
		for rid, rep := range d.reports {
			if rep.AdvertisementID != nil && *rep.AdvertisementID == id {
				rep.AdvertisementID = nil
				d.reports[rid] = rep
			}
		}
		return nil
	})
}

func (r adRepo) UpdateStatus(ctx context.Context, id int64, from, to models.AdStatus) error {
	return r.do(func(d *data) error {
		stored, ok := d.ads[id]
		if !ok || stored.Status != from {
			return repositories.ErrStatusChanged
		}
		now := time.Now().UTC()
		stored.Status = to
		stored.UpdatedAt = &now
		d.ads[id] = stored
		return nil
	})
}

func (r adRepo) ListByStatus(ctx context.Context, status models.AdStatus) ([]models.Advertisement, error) {
	out := []models.Advertisement{}
	err := r.do(func(d *data) error {
		for _, ad := range d.ads {
			if ad.Status == status {
				out = append(out, d.joinAd(ad))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (d *data) joinAd(ad models.Advertisement) models.Advertisement {
	if u, ok := d.users[ad.OwnerID]; ok {
		ad.Owner = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	if ad.CategoryID != nil {
		if c, ok := d.categories[*ad.CategoryID]; ok {
			ad.Category = &c
		}
	}
	return ad
}

type reportRepo struct{ repos }

func (r reportRepo) Create(ctx context.Context, rep models.Report) (models.Report, error) {
	err := r.do(func(d *data) error {
		if rep.AdvertisementID == nil {
			return repositories.ErrForeignKey
		}
		if _, ok := d.ads[*rep.AdvertisementID]; !ok {
			return repositories.ErrForeignKey
		}
		if rep.Status == models.ReportStatusPending && d.hasPending(*rep.AdvertisementID, rep.ReporterID) {
			return repositories.ErrDuplicate
		}
		rep.ID = d.id()
		rep.Advertisement = nil
		rep.Reporter = nil
		d.reports[rep.ID] = rep
		return nil
	})
	return rep, err
}

func (r reportRepo) Get(ctx context.Context, id int64) (models.Report, error) {
	var rep models.Report
	err := r.do(func(d *data) error {
		stored, ok := d.reports[id]
		if !ok {
			return repositories.ErrNotFound
		}
		rep = d.joinReport(stored)
		return nil
	})
	return rep, err
}

func (r reportRepo) HasPending(ctx context.Context, advertisementID, reporterID int64) (bool, error) {
	var found bool
	err := r.do(func(d *data) error {
		found = d.hasPending(advertisementID, reporterID)
		return nil
	})
	return found, err
}

func (d *data) hasPending(advertisementID, reporterID int64) bool {
	for _, rep := range d.reports {
		if rep.AdvertisementID != nil && *rep.AdvertisementID == advertisementID &&
			rep.ReporterID == reporterID && rep.Status == models.ReportStatusPending {
			return true
		}
	}
	return false
}

func (r reportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	out := []models.Report{}
	err := r.do(func(d *data) error {
		for _, rep := range d.reports {
			if filter.Status != nil && rep.Status != *filter.Status {
				continue
			}
			if filter.Reason != nil && rep.Reason != *filter.Reason {
				continue
			}
			out = append(out, d.joinReport(rep))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r reportRepo) Resolve(ctx context.Context, id int64, res models.ReportResolution) error {
	return r.do(func(d *data) error {
		rep, ok := d.reports[id]
		if !ok || rep.Status != models.ReportStatusPending {
			return repositories.ErrStatusChanged
		}
		d.reports[id] = applyResolution(rep, res)
		return nil
	})
}

func (r reportRepo) ResolvePendingForAd(ctx context.Context, advertisementID int64, res models.ReportResolution) (int64, error) {
	var n int64
	err := r.do(func(d *data) error {
		for id, rep := range d.reports {
			if rep.AdvertisementID == nil || *rep.AdvertisementID != advertisementID {
				continue
			}
			if rep.Status != models.ReportStatusPending {
				continue
			}
			d.reports[id] = applyResolution(rep, res)
			n++
		}
		return nil
	})
	return n, err
}

func applyResolution(rep models.Report, res models.ReportResolution) models.Report {
	by := res.ResolvedBy
	at := res.ResolvedAt
	rep.Status = res.Status
	rep.ResolvedBy = &by
	rep.ResolvedAt = &at
	rep.ResolutionNote = res.Note
	return rep
}

func (d *data) joinReport(rep models.Report) models.Report {
	if rep.AdvertisementID != nil {
		if ad, ok := d.ads[*rep.AdvertisementID]; ok {
			rep.Advertisement = &models.AdSummary{ID: ad.ID, Title: ad.Title, Status: ad.Status, OwnerID: ad.OwnerID}
		}
	}
	if u, ok := d.users[rep.ReporterID]; ok {
		rep.Reporter = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return rep
}

type userRepo struct{ repos }

func (r userRepo) Get(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.do(func(d *data) error {
		stored, ok := d.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		u = stored
		return nil
	})
	return u, err
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.do(func(d *data) error {
		for _, stored := range d.users {
			if stored.Email == email {
				u = stored
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return u, err
}

func (r userRepo) SetBan(ctx context.Context, id int64, state models.BanState) error {
	return r.do(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		now := time.Now().UTC()
		u.Banned = state.Banned
		u.BannedUntil = state.BannedUntil
		u.BanReason = state.Reason
		u.UpdatedAt = &now
		d.users[id] = u
		return nil
	})
}

type sessionRepo struct{ repos }

func (r sessionRepo) Create(ctx context.Context, s models.Session) error {
	return r.do(func(d *data) error {
		if _, ok := d.users[s.UserID]; !ok {
			return repositories.ErrForeignKey
		}
		d.sessions[s.RefreshToken] = s
		return nil
	})
}

func (r sessionRepo) GetByToken(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.do(func(d *data) error {
		stored, ok := d.sessions[token]
		if !ok {
			return repositories.ErrNotFound
		}
		stored.Role = d.users[stored.UserID].Role
		s = stored
		return nil
	})
	return s, err
}

type notificationRepo struct{ repos }

func (r notificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	err := r.do(func(d *data) error {
		if r.s.FailNotifications != nil {
			return r.s.FailNotifications
		}
		n.ID = d.id()
		d.notifications[n.ID] = n
		return nil
	})
	return n, err
}

func (r notificationRepo) Get(ctx context.Context, id int64) (models.Notification, error) {
	var n models.Notification
	err := r.do(func(d *data) error {
		stored, ok := d.notifications[id]
		if !ok {
			return repositories.ErrNotFound
		}
		n = stored
		return nil
	})
	return n, err
}

func (r notificationRepo) ListByRecipient(ctx context.Context, recipientID int64, filter models.NotificationFilter) ([]models.Notification, error) {
	var all []models.Notification
	err := r.do(func(d *data) error {
		for _, n := range d.notifications {
			if n.RecipientID != recipientID {
				continue
			}
			if filter.Status != nil && n.Status != *filter.Status {
				continue
			}
			all = append(all, n)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	out := []models.Notification{}
	for i := filter.Offset; i < len(all) && (filter.Limit <= 0 || len(out) < filter.Limit); i++ {
		out = append(out, all[i])
	}
	return out, err
}

func (r notificationRepo) UpdateStatus(ctx context.Context, id int64, status models.NotificationStatus, at time.Time) error {
	return r.do(func(d *data) error {
		n, ok := d.notifications[id]
		if !ok {
			return repositories.ErrNotFound
		}
		n.Status = status
		if n.ReadAt == nil {
			n.ReadAt = &at
		}
		d.notifications[id] = n
		return nil
	})
}

func (r notificationRepo) DeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string
	err := r.do(func(d *data) error {
		tokens = append(tokens, d.devices[userID]...)
		return nil
	})
	return tokens, err
}

var _ repositories.Store = (*Store)(nil)
