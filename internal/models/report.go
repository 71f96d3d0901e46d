package models

import "time"

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusResolved  ReportStatus = "RESOLVED"
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

type ReportReason string

const (
	ReasonSpam          ReportReason = "SPAM"
	ReasonInappropriate ReportReason = "INAPPROPRIATE"
	ReasonFake          ReportReason = "FAKE"
	ReasonScam          ReportReason = "SCAM"
	ReasonCopyright     ReportReason = "COPYRIGHT"
	ReasonOther         ReportReason = "OTHER"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonInappropriate, ReasonFake, ReasonScam, ReasonCopyright, ReasonOther:
		return true
	}
	return false
}

// Report is a complaint against an advertisement. AdvertisementID is nil
// once the advertisement has been deleted.
type Report struct {
	ID              int64        `json:"id"`
	AdvertisementID *int64       `json:"advertisementId"`
	ReporterID      int64        `json:"reporterId"`
	Reason          ReportReason `json:"reason"`
	Description     *string      `json:"description,omitempty"`
	Status          ReportStatus `json:"status"`
	ResolvedBy      *int64       `json:"resolvedBy,omitempty"`
	ResolvedAt      *time.Time   `json:"resolvedAt,omitempty"`
	ResolutionNote  *string      `json:"resolutionNote,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	Advertisement   *AdSummary   `json:"advertisement,omitempty"`
	Reporter        *UserSummary `json:"reporter,omitempty"`
}

type ReportFilter struct {
	Status *ReportStatus
	Reason *ReportReason
}

// ReportResolution is the terminal data written when a report leaves PENDING.
type ReportResolution struct {
	Status     ReportStatus
	ResolvedBy int64
	ResolvedAt time.Time
	Note       *string
}

type CreateReportRequest struct {
	AdvertisementID int64        `json:"advertisementId"`
	Reason          ReportReason `json:"reason"`
	Description     *string      `json:"description,omitempty"`
}

type ResolveReportRequest struct {
	Status           ReportStatus `json:"status"`
	ResolutionNote   *string      `json:"resolutionNote,omitempty"`
	BanUser          bool         `json:"banUser"`
	BanDuration      BanDuration  `json:"banDuration,omitempty"`
	BanDurationValue *int         `json:"banDurationValue,omitempty"`
	BanReason        *string      `json:"banReason,omitempty"`
}

type DeleteReportedAdRequest struct {
	AdvertisementID int64 `json:"advertisementId"`
	ReportID        int64 `json:"reportId"`
}
