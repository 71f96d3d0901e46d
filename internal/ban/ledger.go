// Package ban holds the pure rules of the ban ledger: whether a ban is in
// force, how long a ban lasts, and what the banned user is told.
package ban

import (
	"fmt"
	"strings"
	"time"

	"naimuModeration/internal/models"
	"naimuModeration/internal/timeutil"
)

// IsCurrentlyBanned is true when the banned flag is set and the ban has not
// expired. A set flag with a past expiry is not enforced.
func IsCurrentlyBanned(u models.User, now time.Time) bool {
	if !u.Banned {
		return false
	}
	return u.BannedUntil == nil || u.BannedUntil.After(now)
}

// CheckCanPublish returns a Forbidden error for users that may not create
// owner-attributed content.
func CheckCanPublish(u models.User, now time.Time) error {
	if !IsCurrentlyBanned(u, now) {
		return nil
	}
	if u.BannedUntil == nil {
		return models.Forbidden("your account is permanently banned")
	}
	return models.Forbidden("your account is banned until %s", timeutil.Display(*u.BannedUntil))
}

// maxValue bounds each unit to a hundred years so the expiry never
// overflows time.Duration.
var maxValue = map[models.BanDuration]int{
	models.BanMinutes: 100 * 366 * 24 * 60,
	models.BanHours:   100 * 366 * 24,
	models.BanDays:    100 * 366,
	models.BanMonths:  100 * 12,
}

// Until computes the expiry of a ban starting at now. Permanent bans have no
// expiry. Months are calendar months.
func Until(d models.BanDuration, value *int, now time.Time) (*time.Time, error) {
	if d == models.BanPermanent {
		return nil, nil
	}
	if !d.Valid() {
		return nil, models.Invalid("banDuration must be one of minutes, hours, days, months, permanent")
	}
	if value == nil || *value <= 0 {
		return nil, models.Invalid("banDurationValue must be a positive integer")
	}
	n := *value
	if n > maxValue[d] {
		return nil, models.Invalid("banDurationValue is too large for %s, use a permanent ban", d)
	}
	var until time.Time
	switch d {
	case models.BanMinutes:
		until = now.Add(time.Duration(n) * time.Minute)
	case models.BanHours:
		until = now.Add(time.Duration(n) * time.Hour)
	case models.BanDays:
		until = now.AddDate(0, 0, n)
	case models.BanMonths:
		until = now.AddDate(0, n, 0)
	}
	if !until.After(now) {
		return nil, models.Invalid("ban must end in the future")
	}
	return &until, nil
}

// Reason picks the explicit ban reason, falling back to one built from the
// resolution note.
func Reason(explicit, note *string) string {
	if explicit != nil {
		if r := strings.TrimSpace(*explicit); r != "" {
			return r
		}
	}
	if note != nil {
		if n := strings.TrimSpace(*note); n != "" {
			return "Violation of platform rules: " + n
		}
	}
	return "Violation of platform rules"
}

// DescribeDuration renders a ban length for humans, e.g. "7 days".
func DescribeDuration(d models.BanDuration, value *int) string {
	if d == models.BanPermanent || value == nil {
		return "permanently"
	}
	unit := string(d)
	if *value == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("%d %s", *value, unit)
}

// Notification builds the BAN_NOTIFICATION sent to a banned user.
func Notification(userID int64, until *time.Time, duration, reason string) models.Notification {
	body := "Your account has been permanently banned. Reason: " + reason
	meta := map[string]string{"permanent": "true", "reason": reason}
	if until != nil {
		body = fmt.Sprintf("Your account has been banned for %s, until %s. Reason: %s",
			duration, timeutil.Display(*until), reason)
		meta = map[string]string{
			"permanent":   "false",
			"reason":      reason,
			"bannedUntil": until.UTC().Format(time.RFC3339),
		}
	}
	return models.Notification{
		RecipientID: userID,
		Type:        models.NotificationBan,
		Subject:     "Your account has been banned",
		Body:        body,
		Metadata:    meta,
	}
}
