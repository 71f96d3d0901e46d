package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"naimuModeration/internal/models"
	"naimuModeration/internal/repositories"
)

// TokenIssuer signs access tokens and mints refresh tokens.
type TokenIssuer interface {
	NewAccessToken(userID int64, role string) (string, error)
	NewRefreshToken() (string, error)
}

type UserService struct {
	Store      repositories.Store
	Tokens     TokenIssuer
	RefreshTTL time.Duration
	Clock      Clock
}

// SignIn checks the password and opens a refresh session. Banned users may
// still sign in; the ban only blocks publishing.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return models.Tokens{}, models.Invalid("email and password are required")
	}
	user, err := s.Store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	access, err := s.Tokens.NewAccessToken(user.ID, user.Role)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	err = s.Store.Sessions().Create(ctx, models.Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    s.Clock.now().Add(s.RefreshTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshAccess issues a new access token for a live refresh session.
func (s *UserService) RefreshAccess(ctx context.Context, refreshToken string) (string, models.Session, error) {
	if refreshToken == "" {
		return "", models.Session{}, models.Unauthorized("refresh token missing")
	}
	session, err := s.Store.Sessions().GetByToken(ctx, refreshToken)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", models.Session{}, models.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return "", models.Session{}, err
	}
	if !session.ExpiresAt.After(s.Clock.now()) {
		return "", models.Session{}, models.Unauthorized("expired refresh token")
	}
	access, err := s.Tokens.NewAccessToken(session.UserID, session.Role)
	if err != nil {
		return "", models.Session{}, err
	}
	return access, session, nil
}
