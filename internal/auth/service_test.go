package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeUserStore struct {
	users  map[int64]*User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*User{}, nextID: 1}
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserStore) Create(ctx context.Context, u *User) (*User, error) {
	if _, err := f.GetByEmail(ctx, u.Email); err == nil {
		return nil, ErrDuplicateEmail
	}
	copy := *u
	copy.ID = f.nextID
	f.nextID++
	f.users[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (f *fakeUserStore) LinkExternalID(ctx context.Context, id int64, externalID string) error {
	if u, ok := f.users[id]; ok && u.ExternalID == "" {
		u.ExternalID = externalID
	}
	return nil
}

func newTestService(store UserStore, provider IdentityProvider) *Service {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	return NewService(store, issuer, provider, 4)
}

func TestRegisterIssuesTokenWithRole(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})

	user, token, err := svc.Register(context.Background(), "a@x.com", "", "Abc12345!", RoleDeveloper)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != RoleDeveloper {
		t.Errorf("role = %q, want %q", user.Role, RoleDeveloper)
	}
	if user.PasswordHash == "" || user.PasswordHash == "Abc12345!" {
		t.Error("password must be stored hashed")
	}
	claims, err := svc.issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Role != RoleDeveloper || claims.UserID != user.ID {
		t.Errorf("token claims = {%d %q}, want {%d %q}", claims.UserID, claims.Role, user.ID, RoleDeveloper)
	}
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", Role("superuser")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role: err = %v, want ErrInvalidRole", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.com", "", "weak", RoleClient); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: err = %v, want ErrWeakPassword", err)
	}
	if len(store.users) != 0 {
		t.Fatalf("failed registrations must not create users, got %d", len(store.users))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", RoleClient); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.com", "", "Other123!", RoleManager); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", RoleClient); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, token, err := svc.Login(ctx, "a@x.com", "WrongPass1!"); !errors.Is(err, ErrInvalidCredentials) || token != "" {
		t.Errorf("wrong password: err = %v token = %q, want ErrInvalidCredentials and no token", err, token)
	}
	// Unknown email must be indistinguishable from a bad password.
	if _, _, err := svc.Login(ctx, "nobody@x.com", "Abc12345!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "Abc12345!"); err != nil {
		t.Errorf("correct login: %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", RoleClient)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	store.users[user.ID].Active = false
	if _, _, err := svc.Login(ctx, "a@x.com", "Abc12345!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestFederatedSignInNewUserRequiresRole(t *testing.T) {
	store := newFakeUserStore()
	provider := &StaticProvider{Identities: map[string]Identity{
		"good-token": {Email: "new@x.com", FullName: "New User", ExternalID: "ext-1"},
	}}
	svc := newTestService(store, provider)
	ctx := context.Background()

	if _, _, err := svc.FederatedSignIn(ctx, "good-token", ""); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("err = %v, want ErrRoleRequired", err)
	}
	if len(store.users) != 0 {
		t.Fatal("no user may be created when the role is missing")
	}

	user, token, err := svc.FederatedSignIn(ctx, "good-token", RoleClient)
	if err != nil {
		t.Fatalf("with role: %v", err)
	}
	if user.Role != RoleClient || user.ExternalID != "ext-1" {
		t.Errorf("user = {%q %q}, want {client ext-1}", user.Role, user.ExternalID)
	}
	if token == "" {
		t.Error("expected a session token")
	}
}

func TestFederatedSignInExistingUserLinksIdentity(t *testing.T) {
	store := newFakeUserStore()
	provider := &StaticProvider{Identities: map[string]Identity{
		"good-token": {Email: "a@x.com", ExternalID: "ext-9"},
	}}
	svc := newTestService(store, provider)
	ctx := context.Background()

	existing, _, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", RoleManager)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Supplied role is ignored for an existing account.
	user, token, err := svc.FederatedSignIn(ctx, "good-token", RoleAdmin)
	if err != nil {
		t.Fatalf("federated sign-in: %v", err)
	}
	if user.ID != existing.ID || user.Role != RoleManager {
		t.Errorf("user = {%d %q}, want existing {%d %q}", user.ID, user.Role, existing.ID, RoleManager)
	}
	if store.users[existing.ID].ExternalID != "ext-9" {
		t.Error("external identity was not linked")
	}
	claims, err := svc.issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Role != RoleManager {
		t.Errorf("token role = %q, want stored role %q", claims.Role, RoleManager)
	}
}

func TestFederatedSignInBadToken(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	if _, _, err := svc.FederatedSignIn(context.Background(), "bogus", RoleClient); !errors.Is(err, ErrExternalToken) {
		t.Errorf("err = %v, want ErrExternalToken", err)
	}
}

func TestResolve(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store, &StaticProvider{})
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "a@x.com", "", "Abc12345!", RoleDeveloper)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resolved, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("resolved id = %d, want %d", resolved.ID, user.ID)
	}

	// A valid token for a deleted user is an authentication failure.
	delete(store.users, user.ID)
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrPrincipalNotFound) {
		t.Errorf("deleted user: err = %v, want ErrPrincipalNotFound", err)
	}

	if _, err := svc.Resolve(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: err = %v, want ErrTokenInvalid", err)
	}
}
