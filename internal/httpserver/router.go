package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"taskhub/internal/activity"
	"taskhub/internal/auth"
	"taskhub/internal/comments"
	"taskhub/internal/projects"
	"taskhub/internal/tasks"
	"taskhub/internal/users"
)

type Deps struct {
	Logger     *slog.Logger
	AuthSvc    *auth.Service
	UserStore  *auth.Store
	Projects   *projects.Store
	Tasks      *tasks.Store
	Comments   *comments.Store
	Activity   *activity.Store
	BcryptCost int
	CORSOrigin string
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Auth (open endpoints)
	mux.Handle("/api/v1/auth/register", registerHandler(d.AuthSvc, d.Logger))
	mux.Handle("/api/v1/auth/login", loginHandler(d.AuthSvc, d.Logger))
	mux.Handle("/api/v1/auth/google", federatedHandler(d.AuthSvc, d.Logger))

	secured := auth.Middleware(d.AuthSvc)

	// Users (admin)
	mux.Handle("/api/v1/users", secured(&users.CollectionHandler{
		Store:      d.UserStore,
		BcryptCost: d.BcryptCost,
		Logger:     d.Logger,
	}))
	mux.Handle("/api/v1/users/", secured(&users.DetailHandler{
		Store:  d.UserStore,
		Logger: d.Logger,
	}))

	// Projects
	mux.Handle("/api/v1/projects", secured(&projects.CollectionHandler{
		Store:  d.Projects,
		Logger: d.Logger,
	}))
	mux.Handle("/api/v1/projects/", secured(&projects.DetailHandler{
		Store:  d.Projects,
		Logger: d.Logger,
	}))

	// Tasks
	mux.Handle("/api/v1/tasks", secured(&tasks.CollectionHandler{
		Store:    d.Tasks,
		Users:    d.UserStore,
		Activity: d.Activity,
		Logger:   d.Logger,
	}))
	mux.Handle("/api/v1/tasks/", secured(&tasks.DetailHandler{
		Store:    d.Tasks,
		Users:    d.UserStore,
		Activity: d.Activity,
		Logger:   d.Logger,
	}))

	// Comments
	mux.Handle("/api/v1/comments", secured(&comments.CollectionHandler{
		Store:  d.Comments,
		Logger: d.Logger,
	}))
	mux.Handle("/api/v1/comments/", secured(&comments.DetailHandler{
		Store:  d.Comments,
		Logger: d.Logger,
	}))

	// Activity log
	mux.Handle("/api/v1/activity", secured(&activity.ListHandler{
		Store:  d.Activity,
		Logger: d.Logger,
	}))

	// CORS wrapper (simple, for the local UI).
	return withCORS(mux, d.CORSOrigin)
}
