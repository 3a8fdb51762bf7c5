package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"taskhub/internal/auth"
)

type memUserStore struct {
	users  map[int64]*auth.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[int64]*auth.User{}, nextID: 1}
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUserStore) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (m *memUserStore) Create(ctx context.Context, u *auth.User) (*auth.User, error) {
	if _, err := m.GetByEmail(ctx, u.Email); err == nil {
		return nil, auth.ErrDuplicateEmail
	}
	copy := *u
	copy.ID = m.nextID
	m.nextID++
	m.users[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (m *memUserStore) LinkExternalID(ctx context.Context, id int64, externalID string) error {
	if u, ok := m.users[id]; ok && u.ExternalID == "" {
		u.ExternalID = externalID
	}
	return nil
}

func testService() *auth.Service {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	provider := &auth.StaticProvider{Identities: map[string]auth.Identity{
		"good-token": {Email: "fed@x.com", ExternalID: "ext-1"},
	}}
	return auth.NewService(newMemUserStore(), issuer, provider, 4)
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := registerHandler(testService(), logger)

	rec := post(h, "/api/v1/auth/register", `{"email":"a@x.com","password":"Abc12345!","role":"developer"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token == "" || out.User.Role != "developer" {
		t.Errorf("response = %+v, want token and role developer", out)
	}

	rec = post(h, "/api/v1/auth/register", `{"email":"b@x.com","password":"weak","role":"developer"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password: status = %d, want 400", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := testService()
	if _, _, err := svc.Register(context.Background(), "a@x.com", "", "Abc12345!", auth.RoleClient); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	h := loginHandler(svc, logger)

	rec := post(h, "/api/v1/auth/login", `{"email":"a@x.com","password":"WrongPass1!"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_credentials") {
		t.Errorf("body = %s, want invalid_credentials", rec.Body)
	}

	rec = post(h, "/api/v1/auth/login", `{"email":"a@x.com","password":"Abc12345!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("correct login: status = %d, want 200; body %s", rec.Code, rec.Body)
	}
}

func TestFederatedEndpointRequiresRoleForNewUser(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := federatedHandler(testService(), logger)

	rec := post(h, "/api/v1/auth/google", `{"id_token":"good-token"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "role_required") {
		t.Errorf("body = %s, want role_required", rec.Body)
	}

	rec = post(h, "/api/v1/auth/google", `{"id_token":"good-token","role":"client"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("with role: status = %d, want 200; body %s", rec.Code, rec.Body)
	}
}
