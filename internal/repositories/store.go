package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"naimuModeration/internal/models"
)

type AdStore interface {
	Create(ctx context.Context, ad models.Advertisement) (models.Advertisement, error)
	Get(ctx context.Context, id int64) (models.Advertisement, error)
	UpdateContent(ctx context.Context, ad models.Advertisement) (models.Advertisement, error)
	Delete(ctx context.Context, id int64) error
	// UpdateStatus moves the advertisement to `to` only if it is still in
	// `from`; otherwise it returns ErrStatusChanged.
	UpdateStatus(ctx context.Context, id int64, from, to models.AdStatus) error
	ListByStatus(ctx context.Context, status models.AdStatus) ([]models.Advertisement, error)
}

type ReportStore interface {
	Create(ctx context.Context, r models.Report) (models.Report, error)
	Get(ctx context.Context, id int64) (models.Report, error)
	HasPending(ctx context.Context, advertisementID, reporterID int64) (bool, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	// Resolve writes the resolution only while the report is PENDING;
	// otherwise it returns ErrStatusChanged.
	Resolve(ctx context.Context, id int64, res models.ReportResolution) error
	ResolvePendingForAd(ctx context.Context, advertisementID int64, res models.ReportResolution) (int64, error)
}

type UserStore interface {
	Get(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	SetBan(ctx context.Context, id int64, state models.BanState) error
}

type SessionStore interface {
	Create(ctx context.Context, s models.Session) error
	GetByToken(ctx context.Context, token string) (models.Session, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	Get(ctx context.Context, id int64) (models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int64, filter models.NotificationFilter) ([]models.Notification, error)
	UpdateStatus(ctx context.Context, id int64, status models.NotificationStatus, at time.Time) error
	DeviceTokens(ctx context.Context, userID int64) ([]string, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Ads() AdStore
	Reports() ReportStore
	Users() UserStore
	Sessions() SessionStore
	Notifications() NotificationStore
}

// Store is the persistent store. WithTx runs fn against repositories bound
// to a single transaction, committing when fn returns nil.
type Store interface {
	Repos
	WithTx(ctx context.Context, fn func(Repos) error) error
}

type sqlRepos struct {
	c conn
}

func (r sqlRepos) Ads() AdStore                     { return &AdRepository{c: r.c} }
func (r sqlRepos) Reports() ReportStore             { return &ReportRepository{c: r.c} }
func (r sqlRepos) Users() UserStore                 { return &UserRepository{c: r.c} }
func (r sqlRepos) Sessions() SessionStore           { return &SessionRepository{c: r.c} }
func (r sqlRepos) Notifications() NotificationStore { return &NotificationRepository{c: r.c} }

// SQLStore is the database/sql implementation of Store.
type SQLStore struct {
	sqlRepos
	db *sql.DB
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{sqlRepos: sqlRepos{c: conn{db: db, dialect: dialect}}, db: db}
}

func (s *SQLStore) WithTx(ctx context.Context, fn func(Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(sqlRepos{c: conn{db: tx, dialect: s.c.dialect}}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
