package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"naimuModeration/internal/handlers"
	"naimuModeration/internal/models"
)

type requestIDKey struct{}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// requestID reuses an incoming X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(requestIDKey{}).(string)
		app.logger.Infow("request",
			"remote", r.RemoteAddr,
			"proto", r.Proto,
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"request_id", id,
		)
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.logger.Errorw("panic", "error", fmt.Sprintf("%v", err), "uri", r.URL.RequestURI())
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireRole authenticates the bearer token and checks the role. An
// invalid access token is accepted together with a live Refresh-Token; the
// reissued access token is returned in the Authorization header. Admins
// satisfy every role.
func (app *application) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID int64
			var userRole string

			claims, err := app.tokens.Parse(accessToken(r))
			if err == nil {
				userID, userRole = claims.UserID, claims.Role
			} else {
				refresh := r.Header.Get("Refresh-Token")
				if refresh == "" {
					writeJSONError(w, http.StatusUnauthorized, "authorization required")
					return
				}
				access, session, err := app.userService.RefreshAccess(r.Context(), refresh)
				if err != nil {
					if errors.Is(err, models.ErrUnauthorized) {
						writeJSONError(w, http.StatusUnauthorized, err.Error())
						return
					}
					app.logger.Errorf("refresh access token: %v", err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				w.Header().Set("Authorization", "Bearer "+access)
				userID, userRole = session.UserID, session.Role
			}

			if userRole != models.RoleUser && userRole != models.RoleAdmin {
				writeJSONError(w, http.StatusForbidden, "unknown role")
				return
			}
			if role == models.RoleAdmin && userRole != models.RoleAdmin {
				writeJSONError(w, http.StatusForbidden, "only admins allowed")
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithCaller(r.Context(), userID, userRole)))
		})
	}
}

// accessToken reads the bearer token. Browsers cannot set headers on a
// websocket handshake, so the token query parameter is accepted as well.
func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
