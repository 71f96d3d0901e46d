package handlers

import (
	"context"
	"io"
	"net/http"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/services"
)

type AdHandler struct {
	Service *services.AdService
	Logger  logging.Logger
}

func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req models.CreateAdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Images = normalizeImages(req.Images)
	ad, err := h.Service.Create(r.Context(), callerID, req)
	if err != nil {
		writeServiceError(w, h.Logger, "create advertisement", err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

func (h *AdHandler) GetAd(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	ad, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, "get advertisement", err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) UpdateAd(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	var req models.UpdateAdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Images != nil {
		images := normalizeImages(*req.Images)
		req.Images = &images
	}
	ad, err := h.Service.Update(r.Context(), callerID, id, req)
	if err != nil {
		writeServiceError(w, h.Logger, "update advertisement", err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	if err := h.Service.Delete(r.Context(), callerID, id); err != nil {
		writeServiceError(w, h.Logger, "delete advertisement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdHandler) SubmitAd(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, "submit advertisement", h.Service.Submit)
}

func (h *AdHandler) ArchiveAd(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, "archive advertisement", h.Service.Archive)
}

func (h *AdHandler) ownerAction(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, callerID, id int64) (models.Advertisement, error)) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	ad, err := fn(r.Context(), callerID, id)
	if err != nil {
		writeServiceError(w, h.Logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

// Admin review queue.

func (h *AdHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ads, err := h.Service.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, "list pending advertisements", err)
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

func (h *AdHandler) ApproveAd(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	ad, err := h.Service.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, "approve advertisement", err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

// RejectAd accepts an empty body; the reason is optional.
func (h *AdHandler) RejectAd(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid advertisement id")
		return
	}
	var req models.RejectAdRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	ad, err := h.Service.Reject(r.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(w, h.Logger, "reject advertisement", err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}
