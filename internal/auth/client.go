// internal/auth/client.go
//
// Auth service client.
//
//   Login    POST /users/auth          {login, password}  → {tokens, user}
//   Refresh  POST /users/auth/refresh  {refreshToken}     → {tokens}
//
// The client uses a plain http.Client, never Transport, so a refresh can
// not recurse into itself.

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the auth service at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client with the given per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges a login/password pair for credentials.
func (c *Client) Login(ctx context.Context, login, password string) (Credentials, error) {
	var out Credentials
	status, err := c.post(ctx, "/users/auth", map[string]string{
		"login":    login,
		"password": password,
	}, &out)
	switch {
	case err != nil:
		return Credentials{}, err
	case status == http.StatusUnauthorized || status == http.StatusBadRequest ||
		status == http.StatusNotFound || status == http.StatusForbidden:
		return Credentials{}, ErrInvalidCredentials
	case status/100 != 2:
		return Credentials{}, fmt.Errorf("auth login: unexpected status %d", status)
	case !out.Valid():
		return Credentials{}, fmt.Errorf("auth login: response without access token")
	}
	return out, nil
}

// Refresh trades a refresh token for a new pair.  Any refusal is reported
// as ErrSessionExpired.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	var out struct {
		Tokens Tokens `json:"tokens"`
	}
	status, err := c.post(ctx, "/users/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}, &out)
	if err != nil {
		return Tokens{}, err
	}
	if status/100 != 2 || out.Tokens.AccessToken == "" {
		return Tokens{}, ErrSessionExpired
	}
	return out.Tokens, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("auth %s: decode: %w", path, err)
	}
	return resp.StatusCode, nil
}
