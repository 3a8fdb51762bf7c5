package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/policy"
)

var ErrInvalidAssignee = apperr.Validation("invalid_assignee", "tasks can only be assigned to developers")

// TaskStore is the store surface the handlers use. *Store satisfies it;
// tests swap in fakes.
type TaskStore interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Get(ctx context.Context, id int64) (*Task, int64, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	Delete(ctx context.Context, id int64) error
	ProjectOwner(ctx context.Context, projectID int64) (int64, error)
	List(ctx context.Context, flt ListFilter) ([]Task, error)
}

// UserDirectory resolves assignees. *auth.Store satisfies it.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*auth.User, error)
}

// ActivityRecorder appends to a task's audit trail. *activity.Store
// satisfies it.
type ActivityRecorder interface {
	Record(ctx context.Context, taskID, userID int64, action string) error
}

type CollectionHandler struct {
	Store    TaskStore
	Users    UserDirectory
	Activity ActivityRecorder
	Logger   *slog.Logger
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
	flt := ListFilter{}
	if pid, err := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64); err == nil {
		flt.ProjectID = pid
	}
	// Browsing scope per role: developers only ever see what they are
	// assigned; managers browse their own projects; admins and clients see
	// everything.
	switch user.Role {
	case auth.RoleDeveloper:
		flt.AssigneeID = user.ID
	case auth.RoleManager:
		flt.ProjectOwnerID = user.ID
	}
	out, err := h.Store.List(r.Context(), flt)
	if err != nil {
		h.Logger.Error("list tasks", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CollectionHandler) create(w http.ResponseWriter, r *http.Request, user *auth.User) {
	var in struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      Status `json:"status"`
		ProjectID   int64  `json:"project_id"`
		AssigneeID  int64  `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
		return
	}
	if in.Title == "" {
		apperr.Write(w, apperr.Validation("title_required", "task title is required"))
		return
	}
	if in.ProjectID == 0 {
		apperr.Write(w, apperr.Validation("project_required", "project_id is required"))
		return
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !ValidStatus(in.Status) {
		apperr.Write(w, apperr.Validation("invalid_status", "status must be todo, in_progress or done"))
		return
	}

	projectOwner, err := h.Store.ProjectOwner(r.Context(), in.ProjectID)
	if err != nil {
		h.writeErr(w, "resolve project owner", err)
		return
	}
	res := &policy.Resource{ProjectOwnerID: projectOwner}
	if err := policy.Authorize(user, policy.TaskCreate, res).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	if in.AssigneeID != 0 {
		if err := h.checkAssignee(r, in.AssigneeID); err != nil {
			apperr.Write(w, err)
			return
		}
	}

	created, err := h.Store.Create(r.Context(), &Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
	})
	if err != nil {
		h.Logger.Error("create task", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := h.Activity.Record(r.Context(), created.ID, user.ID, "task created"); err != nil {
		h.Logger.Error("record activity", "err", err)
	}
	writeJSON(w, http.StatusCreated, created)
}

// The assignee constraint holds for every caller role: only developers hold
// task assignments.
func (h *CollectionHandler) checkAssignee(r *http.Request, assigneeID int64) error {
	assignee, err := h.Users.GetByID(r.Context(), assigneeID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return ErrInvalidAssignee
		}
		return err
	}
	if assignee.Role != auth.RoleDeveloper {
		return ErrInvalidAssignee
	}
	return nil
}

func (h *CollectionHandler) writeErr(w http.ResponseWriter, op string, err error) {
	if apperr.Status(err) == http.StatusInternalServerError {
		h.Logger.Error(op, "err", err)
	}
	apperr.Write(w, err)
}

type DetailHandler struct {
	Store    TaskStore
	Users    UserDirectory
	Activity ActivityRecorder
	Logger   *slog.Logger
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
	task, projectOwner, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, "get task", err)
		return
	}
	res := &policy.Resource{
		ProjectOwnerID: projectOwner,
		AssigneeID:     task.AssigneeID,
	}

	switch r.Method {
	case http.MethodGet:
		if err := policy.Authorize(user, policy.TaskRead, res).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)

	case http.MethodPut:
		h.update(w, r, user, task, res)

	case http.MethodDelete:
		if err := policy.Authorize(user, policy.TaskDelete, res).Err(); err != nil {
			apperr.Write(w, err)
			return
		}
		if err := h.Store.Delete(r.Context(), id); err != nil {
			h.writeErr(w, "delete task", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// update applies a partial payload. Pointer fields distinguish "absent" from
// "set to zero" so the restricted-field rule can key off presence alone.
func (h *DetailHandler) update(w http.ResponseWriter, r *http.Request, user *auth.User, task *Task, res *policy.Resource) {
	if err := policy.Authorize(user, policy.TaskUpdate, res).Err(); err != nil {
		apperr.Write(w, err)
		return
	}
	var in struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *Status `json:"status"`
		AssigneeID  *int64  `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
		return
	}
	fields := policy.TaskFields{
		Title:    in.Title != nil,
		Status:   in.Status != nil,
		Assignee: in.AssigneeID != nil,
	}
	if err := policy.CheckTaskFields(user, fields).Err(); err != nil {
		apperr.Write(w, err)
		return
	}

	statusChanged := false
	if in.Title != nil {
		if *in.Title == "" {
			apperr.Write(w, apperr.Validation("title_required", "task title is required"))
			return
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			apperr.Write(w, apperr.Validation("invalid_status", "status must be todo, in_progress or done"))
			return
		}
		statusChanged = *in.Status != task.Status
		task.Status = *in.Status
	}
	if in.AssigneeID != nil {
		if *in.AssigneeID != 0 {
			if err := h.checkAssignee(r, *in.AssigneeID); err != nil {
				apperr.Write(w, err)
				return
			}
		}
		task.AssigneeID = *in.AssigneeID
	}

	updated, err := h.Store.Update(r.Context(), task)
	if err != nil {
		h.writeErr(w, "update task", err)
		return
	}
	action := "task updated"
	if statusChanged {
		action = "status changed"
	}
	if err := h.Activity.Record(r.Context(), updated.ID, user.ID, action); err != nil {
		h.Logger.Error("record activity", "err", err)
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DetailHandler) checkAssignee(r *http.Request, assigneeID int64) error {
	assignee, err := h.Users.GetByID(r.Context(), assigneeID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return ErrInvalidAssignee
		}
		return err
	}
	if assignee.Role != auth.RoleDeveloper {
		return ErrInvalidAssignee
	}
	return nil
}

func (h *DetailHandler) writeErr(w http.ResponseWriter, op string, err error) {
	if apperr.Status(err) == http.StatusInternalServerError {
		h.Logger.Error(op, "err", err)
	}
	apperr.Write(w, err)
}

// Path is /api/v1/tasks/{id}.
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
