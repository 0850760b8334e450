package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Client exposes the subset of the hosted auth provider's REST API used by
// the application. Everything else about sessions (issuance, refresh,
// password flows) belongs to the provider.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a client targeting the provided base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Logout revokes the session behind the given access token.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/auth/v1/logout", c.baseURL), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "auth logout")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("auth logout failed: %s", resp.Status)
	}
	return nil
}
