package projects

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
	Store  *Store
	Logger *slog.Logger
}

func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, user)
	case http.MethodPost:
		h.create(w, r, user)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CollectionHandler) list(w http.ResponseWriter, r *http.Request, user *auth.User) {
	if err := policy.Authorize(user, policy.ProjectRead, nil).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	// Managers browse their own projects; everyone else sees all.
	flt := ListFilter{}
	if user.Role == auth.RoleManager {
		flt.OwnerID = user.ID
	}
	out, err := h.Store.List(r.Context(), flt)
	if err != nil {
		h.Logger.Error("list projects", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CollectionHandler) create(w http.ResponseWriter, r *http.Request, user *auth.User) {
	if err := policy.Authorize(user, policy.ProjectCreate, nil).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		OwnerID     int64  `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
		return
	}
	if in.Name == "" {
		apperr.Write(w, apperr.Validation("name_required", "project name is required"))
		return
	}
	// Admins may create on behalf of any owner; managers always own what
	// they create.
	ownerID := user.ID
	if user.Role == auth.RoleAdmin && in.OwnerID != 0 {
		ownerID = in.OwnerID
	}
	created, err := h.Store.Create(r.Context(), &Project{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     ownerID,
	})
	if err != nil {
		if apperr.Status(err) == http.StatusInternalServerError {
			h.Logger.Error("create project", "err", err)
		}
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type DetailHandler struct {
	Store  *Store
	Logger *slog.Logger
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	id, ok := idFromPath(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	project, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, "get project", err)
		return
	}
	res := &policy.Resource{OwnerID: project.OwnerID}

	switch r.Method {
	case http.MethodGet:
		if err := policy.Authorize(user, policy.ProjectRead, res).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)

	case http.MethodPut:
		if err := policy.Authorize(user, policy.ProjectUpdate, res).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		var in struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		if in.Name == "" {
			apperr.Write(w, apperr.Validation("name_required", "project name is required"))
			return
		}
		project.Name = in.Name
		project.Description = in.Description
		updated, err := h.Store.Update(r.Context(), project)
		if err != nil {
			h.writeErr(w, "update project", err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := policy.Authorize(user, policy.ProjectDelete, res).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		if err := h.Store.Delete(r.Context(), id); err != nil {
			h.writeErr(w, "delete project", err)
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

// Path is /api/v1/projects/{id}.
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
