package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"naimuModeration/internal/models"
)

type UserRepository struct {
	c conn
}

const userSelect = `
	SELECT id, name, email, password, role, banned, banned_until, ban_reason, created_at, updated_at
	FROM users`

func (r *UserRepository) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(r.c.queryRow(ctx, userSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(r.c.queryRow(ctx, userSelect+` WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// SetBan overwrites the three ban fields in one statement.
func (r *UserRepository) SetBan(ctx context.Context, id int64, state models.BanState) error {
	query := `UPDATE users SET banned = ?, banned_until = ?, ban_reason = ?, updated_at = ? WHERE id = ?`
	res, err := r.c.exec(ctx, query, state.Banned, nullTime(state.BannedUntil), nullString(state.Reason), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set ban of user %d: %w", id, err)
	}
	if err := affected(res); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user        models.User
		bannedUntil sql.NullTime
		banReason   sql.NullString
		updatedAt   sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.Banned, &bannedUntil, &banReason, &user.CreatedAt, &updatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	user.BannedUntil = nullTimeToPtr(bannedUntil)
	user.BanReason = nullToPtr(banReason)
	user.UpdatedAt = nullTimeToPtr(updatedAt)
	return user, nil
}

type SessionRepository struct {
	c conn
}

func (r *SessionRepository) Create(ctx context.Context, s models.Session) error {
	query := `INSERT INTO user_sessions (user_id, refresh_token, expires_at) VALUES (?, ?, ?)`
	if _, err := r.c.exec(ctx, query, s.UserID, s.RefreshToken, s.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByToken returns the session together with the current role of its user.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (models.Session, error) {
	query := `
		SELECT s.user_id, u.role, s.refresh_token, s.expires_at
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.refresh_token = ?`
	var s models.Session
	err := r.c.queryRow(ctx, query, token).Scan(&s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}
