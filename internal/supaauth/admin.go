// Package supaauth is a minimal client for the Supabase GoTrue admin API.
// The auth service owns signup, sessions and password flows; this backend
// only needs to enumerate identities and remove them when an admin deletes
// an account.
package supaauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type AuthUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		baseURL:    supabaseURL + "/auth/v1",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AdminClient) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth admin request: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("auth admin %s %s failed (%d): %s", method, path, resp.StatusCode, string(body))
	}
	return resp, nil
}

// ListUsers returns every auth identity. Pagination is capped generously;
// the deployment is a single-digit-thousands user base.
func (c *AdminClient) ListUsers(ctx context.Context) ([]AuthUser, error) {
	resp, err := c.do(ctx, "GET", "/admin/users?per_page=1000")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed struct {
		Users []AuthUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	return parsed.Users, nil
}

// DeleteUser removes an auth identity. Irreversible.
func (c *AdminClient) DeleteUser(ctx context.Context, id string) error {
	resp, err := c.do(ctx, "DELETE", "/admin/users/"+id)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
