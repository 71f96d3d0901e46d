package handlers

import (
	"net/http"
	"strings"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/notify"
	"naimuModeration/internal/services"
)

type NotificationHandler struct {
	Service *services.NotificationService
	Hub     *notify.Hub
	Logger  logging.Logger
}

// Stream upgrades to a websocket that receives the caller's new
// notifications.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	h.Hub.ServeWS(w, r, callerID)
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	limit, offset, ok := parsePaging(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid paging parameters")
		return
	}
	filter := models.NotificationFilter{Limit: limit, Offset: offset}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		status := models.NotificationStatus(strings.ToUpper(v))
		filter.Status = &status
	}
	list, err := h.Service.List(r.Context(), callerID, filter)
	if err != nil {
		writeServiceError(w, h.Logger, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	n, err := h.Service.MarkRead(r.Context(), callerID, id)
	if err != nil {
		writeServiceError(w, h.Logger, "mark notification read", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	n, err := h.Service.Archive(r.Context(), callerID, id)
	if err != nil {
		writeServiceError(w, h.Logger, "archive notification", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
