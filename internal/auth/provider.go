package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"taskhub/internal/apperr"
)

var ErrExternalToken = apperr.Authentication("external_token_invalid",
	"external identity token could not be verified")

// Identity is what an external provider asserts about a user. The provider's
// own token format stays opaque to the rest of the system.
type Identity struct {
	Email      string
	FullName   string
	ExternalID string
}

type IdentityProvider interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleProvider verifies Google ID tokens through the tokeninfo endpoint and
// checks the audience against the configured client ID.
type GoogleProvider struct {
	ClientID string
	Client   *http.Client
	Endpoint string
}

func NewGoogleProvider(clientID string) *GoogleProvider {
	return &GoogleProvider{
		ClientID: clientID,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Endpoint: "https://oauth2.googleapis.com/tokeninfo",
	}
}

func (g *GoogleProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	u := g.Endpoint + "?id_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrExternalToken
	}
	var payload struct {
		Aud   string `json:"aud"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Sub   string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, ErrExternalToken
	}
	if payload.Aud != g.ClientID || payload.Email == "" || payload.Sub == "" {
		return nil, ErrExternalToken
	}
	return &Identity{
		Email:      payload.Email,
		FullName:   payload.Name,
		ExternalID: payload.Sub,
	}, nil
}

// StaticProvider resolves tokens from a fixed map. Test and local-dev use.
type StaticProvider struct {
	Identities map[string]Identity
}

func (s *StaticProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	id, ok := s.Identities[token]
	if !ok {
		return nil, ErrExternalToken
	}
	return &id, nil
}
