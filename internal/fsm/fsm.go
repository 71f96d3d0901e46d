package fsm

import "naimuModeration/internal/models"

var adTransitions = map[models.AdStatus]map[models.AdStatus]struct{}{
	models.AdStatusDraft: {
		models.AdStatusPending: {},
	},
	models.AdStatusPending: {
		models.AdStatusActive:   {},
		models.AdStatusInactive: {},
	},
	models.AdStatusActive: {
		models.AdStatusArchived: {},
	},
	models.AdStatusInactive: {
		models.AdStatusArchived: {},
	},
	models.AdStatusArchived: {},
}

var reportTransitions = map[models.ReportStatus]map[models.ReportStatus]struct{}{
	models.ReportStatusPending: {
		models.ReportStatusResolved:  {},
		models.ReportStatusDismissed: {},
	},
	models.ReportStatusResolved:  {},
	models.ReportStatusDismissed: {},
}

// CanTransitionAd reports whether an advertisement may move from one status
// to another. Staying in the same status is not a transition.
func CanTransitionAd(from, to models.AdStatus) bool {
	allowed, ok := adTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// CanTransitionReport reports whether a report may move from one status to
// another. Only PENDING reports can move, and only once.
func CanTransitionReport(from, to models.ReportStatus) bool {
	allowed, ok := reportTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminalReport returns true once a report can no longer change.
func IsTerminalReport(s models.ReportStatus) bool {
	return len(reportTransitions[s]) == 0
}
