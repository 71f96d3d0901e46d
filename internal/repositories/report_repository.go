package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"naimuModeration/internal/models"
)

type ReportRepository struct {
	c conn
}

const reportSelect = `
	SELECT r.id, r.advertisement_id, r.reporter_id, r.reason, r.description, r.status,
	       r.resolved_by, r.resolved_at, r.resolution_note, r.created_at,
	       a.id, a.title, a.status, a.owner_id,
	       u.id, u.name, u.email
	FROM reports r
	LEFT JOIN advertisements a ON a.id = r.advertisement_id
	JOIN users u ON u.id = r.reporter_id`

func (r *ReportRepository) Create(ctx context.Context, rep models.Report) (models.Report, error) {
	query := `
		INSERT INTO reports (advertisement_id, reporter_id, reason, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.c.insertID(ctx, query,
		nullInt64(rep.AdvertisementID),
		rep.ReporterID,
		string(rep.Reason),
		nullString(rep.Description),
		string(rep.Status),
		rep.CreatedAt,
	)
	if err != nil {
		return models.Report{}, fmt.Errorf("insert report: %w", err)
	}
	rep.ID = id
	return rep, nil
}

func (r *ReportRepository) Get(ctx context.Context, id int64) (models.Report, error) {
	rep, err := scanReport(r.c.queryRow(ctx, reportSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, ErrNotFound
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("get report %d: %w", id, err)
	}
	return rep, nil
}

// HasPending reports whether the reporter already has a PENDING report
// against the advertisement.
func (r *ReportRepository) HasPending(ctx context.Context, advertisementID, reporterID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM reports WHERE advertisement_id = ? AND reporter_id = ? AND status = ?`
	var n int
	if err := r.c.queryRow(ctx, query, advertisementID, reporterID, string(models.ReportStatusPending)).Scan(&n); err != nil {
		return false, fmt.Errorf("count pending reports: %w", err)
	}
	return n > 0, nil
}

// List returns reports newest first, optionally filtered by status and reason.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		conds = append(conds, "r.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Reason != nil {
		conds = append(conds, "r.reason = ?")
		args = append(args, string(*filter.Reason))
	}
	query := reportSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) Resolve(ctx context.Context, id int64, res models.ReportResolution) error {
	query := `
		UPDATE reports
		SET status = ?, resolved_by = ?, resolved_at = ?, resolution_note = ?
		WHERE id = ? AND status = ?`
	result, err := r.c.exec(ctx, query,
		string(res.Status),
		res.ResolvedBy,
		res.ResolvedAt,
		nullString(res.Note),
		id,
		string(models.ReportStatusPending),
	)
	if err != nil {
		return fmt.Errorf("resolve report %d: %w", id, err)
	}
	return affected(result)
}

// ResolvePendingForAd closes every PENDING report on the advertisement and
// returns how many were closed.
func (r *ReportRepository) ResolvePendingForAd(ctx context.Context, advertisementID int64, res models.ReportResolution) (int64, error) {
	query := `
		UPDATE reports
		SET status = ?, resolved_by = ?, resolved_at = ?, resolution_note = ?
		WHERE advertisement_id = ? AND status = ?`
	result, err := r.c.exec(ctx, query,
		string(res.Status),
		res.ResolvedBy,
		res.ResolvedAt,
		nullString(res.Note),
		advertisementID,
		string(models.ReportStatusPending),
	)
	if err != nil {
		return 0, fmt.Errorf("resolve reports of advertisement %d: %w", advertisementID, err)
	}
	return result.RowsAffected()
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		rep            models.Report
		adID           sql.NullInt64
		reason, status string
		description    sql.NullString
		resolvedBy     sql.NullInt64
		resolvedAt     sql.NullTime
		note           sql.NullString
		joinedAdID     sql.NullInt64
		adTitle        sql.NullString
		adStatus       sql.NullString
		adOwner        sql.NullInt64
		reporter       models.UserSummary
		reporterEmail  sql.NullString
	)
	err := row.Scan(
		&rep.ID, &adID, &rep.ReporterID, &reason, &description, &status,
		&resolvedBy, &resolvedAt, &note, &rep.CreatedAt,
		&joinedAdID, &adTitle, &adStatus, &adOwner,
		&reporter.ID, &reporter.Name, &reporterEmail,
	)
	if err != nil {
		return models.Report{}, err
	}
	rep.AdvertisementID = nullInt64ToPtr(adID)
	rep.Reason = models.ReportReason(reason)
	rep.Status = models.ReportStatus(status)
	rep.Description = nullToPtr(description)
	rep.ResolvedBy = nullInt64ToPtr(resolvedBy)
	rep.ResolvedAt = nullTimeToPtr(resolvedAt)
	rep.ResolutionNote = nullToPtr(note)
	if joinedAdID.Valid {
		rep.Advertisement = &models.AdSummary{
			ID:      joinedAdID.Int64,
			Title:   adTitle.String,
			Status:  models.AdStatus(adStatus.String),
			OwnerID: adOwner.Int64,
		}
	}
	reporter.Email = reporterEmail.String
	rep.Reporter = &reporter
	return rep, nil
}
