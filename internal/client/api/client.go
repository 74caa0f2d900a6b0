// Package api is the HTTP client for the identity server, covering the
// two-phase login used by the terminal client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnauthorized covers rejected credentials, codes, and tokens.
var ErrUnauthorized = errors.New("unauthorized")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginResult mirrors the first-phase login response.
type LoginResult struct {
	TemporaryToken    string `json:"temporary_token"`
	RequiresSetup     bool   `json:"requires_setup"`
	RequiresTwoFactor bool   `json:"requires_two_factor"`
}

// TokenPair mirrors the session token response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login submits credentials and returns the restricted temporary token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.post(ctx, "/auth/token", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CompleteTwoFactorLogin exchanges the temporary token and a TOTP code
// for a session pair.
func (c *Client) CompleteTwoFactorLogin(ctx context.Context, temporaryToken, code string) (*TokenPair, error) {
	var res TokenPair
	err := c.post(ctx, "/auth/2fa/login", map[string]string{
		"token": temporaryToken,
		"code":  code,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
