package models

import "time"

type NotificationType string

const (
	NotificationAdApproved NotificationType = "AD_APPROVED"
	NotificationAdRejected NotificationType = "AD_REJECTED"
	NotificationBan        NotificationType = "BAN_NOTIFICATION"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationRead     NotificationStatus = "READ"
	NotificationArchived NotificationStatus = "ARCHIVED"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationUnread, NotificationRead, NotificationArchived:
		return true
	}
	return false
}

type Notification struct {
	ID          int64              `json:"id"`
	RecipientID int64              `json:"recipientId"`
	Type        NotificationType   `json:"type"`
	Subject     string             `json:"subject"`
	Body        string             `json:"body"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
	Status      NotificationStatus `json:"status"`
	EventID     string             `json:"eventId"`
	CreatedAt   time.Time          `json:"createdAt"`
	ReadAt      *time.Time         `json:"readAt,omitempty"`
}

type NotificationFilter struct {
	Status *NotificationStatus
	Limit  int
	Offset int
}
