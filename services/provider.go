package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrProviderTokenInvalid = errors.New("identity provider rejected the token")

// ProviderIdentity is the opaque verified-user identity the external auth
// provider vouches for. The provider owns OTP/password verification; this
// service only ever sees the outcome.
type ProviderIdentity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

type IdentityProvider interface {
	// VerifyToken exchanges an access token for the verified identity behind
	// it. One round trip to the provider per call.
	VerifyToken(ctx context.Context, accessToken string) (*ProviderIdentity, error)
	// SignOut revokes the provider-side session for the token. Best effort;
	// logout must succeed locally even when this fails.
	SignOut(ctx context.Context, accessToken string) error
}

type httpIdentityProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPIdentityProvider builds a provider client against a GoTrue-compatible
// auth endpoint. The provider gives no timeout guarantees, so the client
// imposes its own.
func NewHTTPIdentityProvider(baseURL, apiKey string) IdentityProvider {
	return &httpIdentityProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *httpIdentityProvider) VerifyToken(ctx context.Context, accessToken string) (*ProviderIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	p.setHeaders(req, accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var identity ProviderIdentity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return nil, fmt.Errorf("failed to decode provider response: %w", err)
		}
		if identity.UserID == "" {
			return nil, ErrProviderTokenInvalid
		}
		return &identity, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrProviderTokenInvalid
	default:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
}

func (p *httpIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to build provider sign-out request: %w", err)
	}
	p.setHeaders(req, accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider sign-out failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("identity provider sign-out returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *httpIdentityProvider) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
}
