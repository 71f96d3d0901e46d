package handlers

import (
	"net/http"
	"strings"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	Logger  logging.Logger
}

func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req models.CreateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rep, err := h.Service.Create(r.Context(), callerID, req)
	if err != nil {
		writeServiceError(w, h.Logger, "create report", err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

// ListReports supports ?status= and ?reason= filters.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	var filter models.ReportFilter
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		status := models.ReportStatus(strings.ToUpper(v))
		filter.Status = &status
	}
	if v := strings.TrimSpace(r.URL.Query().Get("reason")); v != "" {
		reason := models.ReportReason(strings.ToUpper(v))
		filter.Reason = &reason
	}
	reports, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.Logger, "list reports", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}
	var req models.ResolveReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rep, err := h.Service.Resolve(r.Context(), adminID, id, req)
	if err != nil {
		writeServiceError(w, h.Logger, "resolve report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) DeleteReportedAdvertisement(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req models.DeleteReportedAdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Service.DeleteReportedAdvertisement(r.Context(), adminID, req); err != nil {
		writeServiceError(w, h.Logger, "delete reported advertisement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
