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

	"wedding-rsvp/internal/config"
)

// User is the authenticated administrator as reported by Supabase.
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	User         User
}

// Client talks to the Supabase GoTrue endpoints under {url}/auth/v1.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         userResponse `json:"user"`
}

type passwordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewClient(cfg config.SupabaseConfig) *Client {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.PublishableKey,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	if !c.Configured() {
		return Session{}, ErrNotConfigured
	}

	body, err := json.Marshal(passwordRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return Session{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body)
	if err != nil {
		return Session{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign in: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		return Session{}, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return Session{}, unexpectedStatus("sign in", resp)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Session{}, fmt.Errorf("auth: decode session: %w", err)
	}
	if payload.AccessToken == "" {
		return Session{}, ErrInvalidCredentials
	}

	return Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresIn:    payload.ExpiresIn,
		User:         payload.User.toUser(),
	}, nil
}

// GetUser resolves an access token to its user. Any non-200 answer from the
// auth service is reported as ErrInvalidToken.
func (c *Client) GetUser(ctx context.Context, token string) (User, error) {
	if !c.Configured() {
		return User{}, ErrNotConfigured
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("auth: get user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, ErrInvalidToken
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return User{}, ErrInvalidToken
	}

	user := payload.toUser()
	if user.ID == "" {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth: sign out: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidToken
	default:
		return unexpectedStatus("sign out", resp)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func unexpectedStatus(op string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("auth: %s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(detail)))
}

func (p userResponse) toUser() User {
	return User{
		ID:        firstNonEmpty(p.ID, p.Sub, p.User.ID, p.User.Sub),
		Email:     p.Email,
		Name:      firstNonEmpty(stringFromMap(p.UserMetadata, "name"), stringFromMap(p.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(p.UserMetadata, "avatar_url"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	parsed, _ := values[key].(string)
	return parsed
}
