package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account projection used by moderation. The password hash is
// never serialized.
type User struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Password    string     `json:"-"`
	Role        string     `json:"role"`
	Banned      bool       `json:"banned"`
	BannedUntil *time.Time `json:"bannedUntil"`
	BanReason   *string    `json:"banReason"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// BanDuration is the unit of a temporary ban, or BanPermanent.
type BanDuration string

const (
	BanMinutes   BanDuration = "minutes"
	BanHours     BanDuration = "hours"
	BanDays      BanDuration = "days"
	BanMonths    BanDuration = "months"
	BanPermanent BanDuration = "permanent"
)

func (d BanDuration) Valid() bool {
	switch d {
	case BanMinutes, BanHours, BanDays, BanMonths, BanPermanent:
		return true
	}
	return false
}

// BanState is the ban projection of a user. A nil BannedUntil with
// Banned set means the ban is permanent.
type BanState struct {
	Banned      bool
	BannedUntil *time.Time
	Reason      *string
}

type BanUserRequest struct {
	Banned      bool       `json:"banned"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
	BanReason   *string    `json:"banReason,omitempty"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int64     `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
