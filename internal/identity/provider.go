package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/augustos0204/room-stream-api/internal/models"
)

// Provider introspects bearer tokens against the external identity
// provider. Tokens are never verified locally: every check is a round trip,
// so an expired or revoked session fails on the next revalidation.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewProvider(baseURL, apiKey string) *Provider {
	if baseURL == "" {
		log.Println("identity: AUTH_API_URL not configured, token authentication disabled")
	}
	return &Provider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an introspection endpoint is configured.
func (p *Provider) Enabled() bool {
	return p.baseURL != ""
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

// ValidateToken forwards the token to the provider. It returns the identity
// snapshot for a valid token, nil for an invalid or expired one, and an
// error only for transport-level failures.
func (p *Provider) ValidateToken(ctx context.Context, token string) (*models.AuthUser, error) {
	if !p.Enabled() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: introspection call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("identity: decode response: %w", err)
	}
	if ur.ID == "" {
		return nil, nil
	}

	return &models.AuthUser{ID: ur.ID, Email: ur.Email, Name: ur.UserMetadata.Name}, nil
}
