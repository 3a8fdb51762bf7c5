package activity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/policy"
)

type ListHandler struct {
	Store  *Store
	Logger *slog.Logger
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := policy.Authorize(user, policy.ActivityRead, nil).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	taskID, err := strconv.ParseInt(r.URL.Query().Get("task_id"), 10, 64)
	if err != nil || taskID <= 0 {
		apperr.Write(w, apperr.Validation("task_id_required", "task_id query parameter is required"))
		return
	}
	entries, err := h.Store.ListByTask(r.Context(), taskID)
	if err != nil {
		h.Logger.Error("list activity", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}
