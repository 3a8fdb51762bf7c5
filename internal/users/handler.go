// Package users exposes the administrative user-management endpoints over
// the auth store.
package users

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/policy"
)

type CollectionHandler struct {
	Store      *auth.Store
	BcryptCost int
	Logger     *slog.Logger
}

func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := policy.Authorize(user, policy.UserManage, nil).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		out, err := h.Store.List(r.Context())
		if err != nil {
			h.Logger.Error("list users", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		h.create(w, r)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CollectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email      string    `json:"email"`
		FullName   string    `json:"full_name"`
		Password   string    `json:"password"`
		ExternalID string    `json:"external_id"`
		Role       auth.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
		return
	}
	if in.Email == "" {
		apperr.Write(w, apperr.Validation("email_required", "email is required"))
		return
	}
	if !auth.ValidRole(in.Role) {
		apperr.Write(w, auth.ErrInvalidRole)
		return
	}
	// Every account needs at least one way in.
	if in.Password == "" && in.ExternalID == "" {
		apperr.Write(w, apperr.Validation("credential_required", "a password or external identity is required"))
		return
	}
	var hash string
	if in.Password != "" {
		if err := auth.ValidatePasswordStrength(in.Password); err != nil {
			apperr.Write(w, err)
			return
		}
		var err error
		hash, err = auth.HashPassword(in.Password, h.BcryptCost)
		if err != nil {
			h.Logger.Error("hash password", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	created, err := h.Store.Create(r.Context(), &auth.User{
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		ExternalID:   in.ExternalID,
		Role:         in.Role,
		Active:       true,
	})
	if err != nil {
		h.writeErr(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CollectionHandler) writeErr(w http.ResponseWriter, op string, err error) {
	if apperr.Status(err) == http.StatusInternalServerError {
		h.Logger.Error(op, "err", err)
	}
	apperr.Write(w, err)
}

type DetailHandler struct {
	Store  *auth.Store
	Logger *slog.Logger
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := policy.Authorize(user, policy.UserManage, nil).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	id, ok := idFromPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		target, err := h.Store.GetByID(r.Context(), id)
		if err != nil {
			h.writeErr(w, "get user", err)
			return
		}
		writeJSON(w, http.StatusOK, target)

	case http.MethodPut:
		target, err := h.Store.GetByID(r.Context(), id)
		if err != nil {
			h.writeErr(w, "get user", err)
			return
		}
		var in struct {
			Email    *string    `json:"email"`
			FullName *string    `json:"full_name"`
			Role     *auth.Role `json:"role"`
			Active   *bool      `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		if in.Email != nil {
			if *in.Email == "" {
				apperr.Write(w, apperr.Validation("email_required", "email is required"))
				return
			}
			target.Email = *in.Email
		}
		if in.FullName != nil {
			target.FullName = *in.FullName
		}
		if in.Role != nil {
			if !auth.ValidRole(*in.Role) {
				apperr.Write(w, auth.ErrInvalidRole)
				return
			}
			// Already-issued tokens keep the old role until they expire.
			target.Role = *in.Role
		}
		if in.Active != nil {
			target.Active = *in.Active
		}
		updated, err := h.Store.Update(r.Context(), target)
		if err != nil {
			h.writeErr(w, "update user", err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.Store.Delete(r.Context(), id); err != nil {
			h.writeErr(w, "delete user", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DetailHandler) writeErr(w http.ResponseWriter, op string, err error) {
	if apperr.Status(err) == http.StatusInternalServerError {
		h.Logger.Error(op, "err", err)
	}
	apperr.Write(w, err)
}

// Path is /api/v1/users/{id}.
func idFromPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
