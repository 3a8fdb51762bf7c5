package comments

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
		if err := policy.Authorize(user, policy.CommentRead, nil).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		taskID, err := strconv.ParseInt(r.URL.Query().Get("task_id"), 10, 64)
		if err != nil || taskID <= 0 {
			apperr.Write(w, apperr.Validation("task_id_required", "task_id query parameter is required"))
			return
		}
		out, err := h.Store.ListByTask(r.Context(), taskID)
		if err != nil {
			h.Logger.Error("list comments", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		if err := policy.Authorize(user, policy.CommentCreate, nil).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		var in struct {
			Content string `json:"content"`
			TaskID  int64  `json:"task_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		if in.Content == "" || in.TaskID == 0 {
			apperr.Write(w, apperr.Validation("comment_invalid", "content and task_id are required"))
			return
		}
		created, err := h.Store.Create(r.Context(), &Comment{
			Content: in.Content,
			TaskID:  in.TaskID,
			UserID:  user.ID,
		})
		if err != nil {
			if apperr.Status(err) == http.StatusInternalServerError {
				h.Logger.Error("create comment", "err", err)
			}
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type DetailHandler struct {
	Store  *Store
	Logger *slog.Logger
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
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
	comment, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if apperr.Status(err) == http.StatusInternalServerError {
			h.Logger.Error("get comment", "err", err)
		}
		apperr.Write(w, err)
		return
	}
	res := &policy.Resource{AuthorID: comment.UserID}
	if err := policy.Authorize(user, policy.CommentDelete, res).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		if apperr.Status(err) == http.StatusInternalServerError {
			h.Logger.Error("delete comment", "err", err)
		}
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Path is /api/v1/comments/{id}.
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
