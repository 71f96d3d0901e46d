package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"naimuModeration/internal/models"
)

type NotificationRepository struct {
	c conn
}

const notificationSelect = `
	SELECT id, recipient_id, type, subject, body, metadata, status, event_id, created_at, read_at
	FROM notifications`

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	var meta sql.NullString
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return models.Notification{}, err
		}
		meta = sql.NullString{String: string(raw), Valid: true}
	}
	query := `
		INSERT INTO notifications (recipient_id, type, subject, body, metadata, status, event_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.c.insertID(ctx, query,
		n.RecipientID,
		string(n.Type),
		n.Subject,
		n.Body,
		meta,
		string(n.Status),
		n.EventID,
		n.CreatedAt,
	)
	if err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	n.ID = id
	return n, nil
}

func (r *NotificationRepository) Get(ctx context.Context, id int64) (models.Notification, error) {
	n, err := scanNotification(r.c.queryRow(ctx, notificationSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, ErrNotFound
	}
	if err != nil {
		return models.Notification{}, fmt.Errorf("get notification %d: %w", id, err)
	}
	return n, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, filter models.NotificationFilter) ([]models.Notification, error) {
	query := notificationSelect + ` WHERE recipient_id = ?`
	args := []interface{}{recipientID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// UpdateStatus sets the status; read_at is stamped the first time the
// notification leaves UNREAD.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id int64, status models.NotificationStatus, at time.Time) error {
	query := `UPDATE notifications SET status = ?, read_at = COALESCE(read_at, ?) WHERE id = ?`
	res, err := r.c.exec(ctx, query, string(status), at, id)
	if err != nil {
		return fmt.Errorf("update notification %d: %w", id, err)
	}
	if err := affected(res); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *NotificationRepository) DeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.c.query(ctx, `SELECT token FROM notify_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func scanNotification(row rowScanner) (models.Notification, error) {
	var (
		n           models.Notification
		typ, status string
		meta        sql.NullString
		readAt      sql.NullTime
	)
	err := row.Scan(&n.ID, &n.RecipientID, &typ, &n.Subject, &n.Body, &meta, &status, &n.EventID, &n.CreatedAt, &readAt)
	if err != nil {
		return models.Notification{}, err
	}
	n.Type = models.NotificationType(typ)
	n.Status = models.NotificationStatus(status)
	n.ReadAt = nullTimeToPtr(readAt)
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &n.Metadata); err != nil {
			return models.Notification{}, fmt.Errorf("decode metadata of notification %d: %w", n.ID, err)
		}
	}
	return n, nil
}
