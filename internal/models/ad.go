package models

import (
	"strings"
	"time"
)

// AdStatus is the publication status of an advertisement.
type AdStatus string

const (
	AdStatusDraft    AdStatus = "DRAFT"
	AdStatusPending  AdStatus = "PENDING"
	AdStatusActive   AdStatus = "ACTIVE"
	AdStatusInactive AdStatus = "INACTIVE"
	AdStatusArchived AdStatus = "ARCHIVED"
)

func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusDraft, AdStatusPending, AdStatusActive, AdStatusInactive, AdStatusArchived:
		return true
	}
	return false
}

// AdType distinguishes service offers from rentals.
type AdType string

const (
	AdTypeService AdType = "SERVICE"
	AdTypeRental  AdType = "RENTAL"
)

func (t AdType) Valid() bool {
	return t == AdTypeService || t == AdTypeRental
}

type Advertisement struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       *float64     `json:"price,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Images      []string     `json:"images"`
	Status      AdStatus     `json:"status"`
	Type        AdType       `json:"type"`
	OwnerID     int64        `json:"ownerId"`
	CategoryID  *int64       `json:"categoryId,omitempty"`
	Owner       *UserSummary `json:"owner,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
}

// AdSummary is the advertisement projection embedded into reports.
type AdSummary struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Status  AdStatus `json:"status"`
	OwnerID int64    `json:"ownerId"`
}

type CreateAdRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Images      []string `json:"images"`
	Type        AdType   `json:"type"`
	CategoryID  *int64   `json:"categoryId,omitempty"`
	Draft       bool     `json:"draft"`
}

// UpdateAdRequest carries content changes; nil fields are left untouched.
type UpdateAdRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Type        *AdType   `json:"type,omitempty"`
	CategoryID  *int64    `json:"categoryId,omitempty"`
}

type RejectAdRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ValidateContent checks the owner-editable fields of an advertisement.
func ValidateContent(ad Advertisement) error {
	if strings.TrimSpace(ad.Title) == "" {
		return Invalid("title is required")
	}
	if !ad.Type.Valid() {
		return Invalid("type must be SERVICE or RENTAL")
	}
	if ad.Price != nil && *ad.Price < 0 {
		return Invalid("price must not be negative")
	}
	return nil
}
