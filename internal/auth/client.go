package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is a token plus the profile it belongs to. The playback core only
// uses the token to gate search-result caching.
type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Client exchanges credentials for sessions against the backend auth
// endpoints.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	return c.post(ctx, "/auth/login", creds)
}

func (c *Client) Register(ctx context.Context, params RegisterParams) (Session, error) {
	return c.post(ctx, "/auth/register", params)
}

func (c *Client) post(ctx context.Context, path string, body any) (Session, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("failed to reach auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Session{}, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Session{}, fmt.Errorf("auth endpoint returned %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	return session, nil
}
