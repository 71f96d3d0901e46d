package handlers

import (
	"net/http"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
	"naimuModeration/internal/services"
)

type UserHandler struct {
	Service *services.UserService
	Bans    *services.BanService
	Logger  logging.Logger
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tokens, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Logger, "sign in", err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// BanUser applies {banned, bannedUntil?, banReason?} to the user in the path.
// The response never carries the password hash.
func (h *UserHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req models.BanUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.Bans.SetBan(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.Logger, "ban user", err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusOK, user)
}
