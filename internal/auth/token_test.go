package auth

import (
	"errors"
	"testing"
	"time"
)

func testUser() *User {
	return &User{ID: 42, Email: "dev@example.com", Role: RoleDeveloper, Active: true}
}

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	raw, err := ti.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ti.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != RoleDeveloper {
		t.Errorf("role = %q, want %q", claims.Role, RoleDeveloper)
	}
	if claims.ID == "" {
		t.Error("expected a jti claim")
	}
}

func TestTokenExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	raw, err := ti.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// Move the clock past expiry.
	ti.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := ti.Verify(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenInvalid(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	raw, err := ti.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := ti.Verify(raw + "x"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("tampered token: err = %v, want ErrTokenInvalid", err)
	}
	if _, err := ti.Verify("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: err = %v, want ErrTokenInvalid", err)
	}

	other := NewTokenIssuer("different-secret", time.Hour)
	if _, err := other.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong key: err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenRoleIsSnapshot(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	u := testUser()
	raw, err := ti.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// A later role change must not touch the already-issued token.
	u.Role = RoleAdmin
	claims, err := ti.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != RoleDeveloper {
		t.Errorf("role = %q, want snapshot %q", claims.Role, RoleDeveloper)
	}
}
