package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
)

type sessionResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

func registerHandler(svc *auth.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in struct {
			Email    string    `json:"email"`
			FullName string    `json:"full_name"`
			Password string    `json:"password"`
			Role     auth.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		user, token, err := svc.Register(r.Context(), in.Email, in.FullName, in.Password, in.Role)
		if err != nil {
			if apperr.Status(err) == http.StatusInternalServerError {
				logger.Error("register", "err", err)
			}
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
	})
}

func loginHandler(svc *auth.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		user, token, err := svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			if apperr.Status(err) == http.StatusInternalServerError {
				logger.Error("login", "err", err)
			}
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
	})
}

func federatedHandler(svc *auth.Service, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in struct {
			IDToken string    `json:"id_token"`
			Role    auth.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			apperr.Write(w, apperr.Validation("bad_json", "invalid request body"))
			return
		}
		if in.IDToken == "" {
			apperr.Write(w, apperr.Validation("id_token_required", "id_token is required"))
			return
		}
		user, token, err := svc.FederatedSignIn(r.Context(), in.IDToken, in.Role)
		if err != nil {
			if apperr.Status(err) == http.StatusInternalServerError {
				logger.Error("federated sign-in", "err", err)
			}
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
