package auth

import (
	"context"
	"errors"

	"taskhub/internal/apperr"
)

var (
	ErrInvalidCredentials = apperr.Authentication("invalid_credentials", "invalid credentials")
	ErrPrincipalNotFound  = apperr.Authentication("principal_not_found", "authenticated user no longer exists")
	ErrInvalidRole        = apperr.Validation("invalid_role", "role must be one of admin, manager, developer, client")
	ErrRoleRequired       = apperr.Validation("role_required", "a role must be selected for first-time sign-in")
)

// UserStore is the slice of the user store the auth flows need. *Store
// satisfies it; tests swap in fakes.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	LinkExternalID(ctx context.Context, id int64, externalID string) error
}

type Service struct {
	store      UserStore
	issuer     *TokenIssuer
	provider   IdentityProvider
	bcryptCost int
}

func NewService(store UserStore, issuer *TokenIssuer, provider IdentityProvider, bcryptCost int) *Service {
	return &Service{
		store:      store,
		issuer:     issuer,
		provider:   provider,
		bcryptCost: bcryptCost,
	}
}

// Register creates a local account and issues a session token. Validation
// runs before any write, so a failed attempt leaves no partial user behind.
func (s *Service) Register(ctx context.Context, email, fullName, password string, role Role) (*User, string, error) {
	if email == "" {
		return nil, "", apperr.Validation("email_required", "email is required")
	}
	if !ValidRole(role) {
		return nil, "", ErrInvalidRole
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}
	user, err := s.store.Create(ctx, &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a local credential. Unknown email, wrong password,
// password-less account, and deactivated account all collapse into the same
// failure so callers cannot enumerate users.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.Active || user.PasswordHash == "" || !CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FederatedSignIn exchanges an external identity token for a session. A known
// email signs into the existing account (linking the external id on first
// contact); an unknown email needs an explicit role choice from the caller —
// the role is never inferred.
func (s *Service) FederatedSignIn(ctx context.Context, providerToken string, role Role) (*User, string, error) {
	identity, err := s.provider.Verify(ctx, providerToken)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, "", err
		}
		return nil, "", ErrExternalToken
	}

	user, err := s.store.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !user.Active {
			return nil, "", ErrInvalidCredentials
		}
		if user.ExternalID == "" {
			if err := s.store.LinkExternalID(ctx, user.ID, identity.ExternalID); err != nil {
				return nil, "", err
			}
			user.ExternalID = identity.ExternalID
		}
	case errors.Is(err, ErrUserNotFound):
		if role == "" {
			return nil, "", ErrRoleRequired
		}
		if !ValidRole(role) {
			return nil, "", ErrInvalidRole
		}
		user, err = s.store.Create(ctx, &User{
			Email:      identity.Email,
			FullName:   identity.FullName,
			ExternalID: identity.ExternalID,
			Role:       role,
			Active:     true,
		})
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Resolve turns a bearer token into the live principal. A valid token whose
// user has since been deleted or deactivated is an authentication failure,
// not a server error.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*User, error) {
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrPrincipalNotFound
	}
	return user, nil
}
