package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"gorm.io/datatypes"
)

// APIError is a non-2xx answer that has no more specific sentinel.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// HTTPStore talks to the admin HTTP API with a bearer token. Inserts go to
// the public route and work without a token.
type HTTPStore struct {
	baseURL string
	token   string
	http    *http.Client
}

type guestWire struct {
	Name                string  `json:"name"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
}

type rsvpWire struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	PrimaryDietary *string     `json:"primary_dietary"`
	Guests         []guestWire `json:"guests"`
	CreatedAt      time.Time   `json:"created_at"`
}

type rsvpWriteWire struct {
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Guests []guestWire `json:"guests"`
}

type rsvpWriteWithDietaryWire struct {
	rsvpWriteWire
	PrimaryDietary *string `json:"primary_dietary"`
}

type listWire struct {
	Items []rsvpWire `json:"items"`
}

type updateWire struct {
	Success bool     `json:"success"`
	RSVP    rsvpWire `json:"rsvp"`
}

type errorWire struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type loginWire struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewHTTPStore(baseURL, token string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStore) Token() string {
	return s.token
}

// Login exchanges admin credentials for an access token and keeps it for
// later calls.
func (s *HTTPStore) Login(ctx context.Context, email, password string) (string, time.Duration, error) {
	var out loginWire
	body := map[string]string{"email": email, "password": password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return "", 0, err
	}
	s.token = out.AccessToken
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

func (s *HTTPStore) Logout(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	if err := s.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	s.token = ""
	return nil
}

func (s *HTTPStore) Insert(ctx context.Context, input rsvpdomain.Input) (*rsvpdomain.RSVP, error) {
	body := rsvpWriteWithDietaryWire{
		rsvpWriteWire:  toWriteWire(input),
		PrimaryDietary: input.PrimaryDietary,
	}
	var out rsvpWire
	if err := s.do(ctx, http.MethodPost, "/api/rsvps", body, &out); err != nil {
		return nil, err
	}
	record := out.toRecord()
	return &record, nil
}

func (s *HTTPStore) Select(ctx context.Context) ([]rsvpdomain.RSVP, error) {
	var out listWire
	if err := s.do(ctx, http.MethodGet, "/api/rsvps", nil, &out); err != nil {
		return nil, err
	}
	records := make([]rsvpdomain.RSVP, 0, len(out.Items))
	for _, item := range out.Items {
		records = append(records, item.toRecord())
	}
	return records, nil
}

func (s *HTTPStore) Update(ctx context.Context, input rsvpdomain.UpdateInput) (*rsvpdomain.RSVP, error) {
	var body any = toWriteWire(input.Input)
	if input.ReplaceDietary {
		body = rsvpWriteWithDietaryWire{
			rsvpWriteWire:  toWriteWire(input.Input),
			PrimaryDietary: input.PrimaryDietary,
		}
	}

	var out updateWire
	if err := s.do(ctx, http.MethodPut, "/api/rsvps/"+url.PathEscape(input.ID), body, &out); err != nil {
		return nil, err
	}
	record := out.RSVP.toRecord()
	return &record, nil
}

func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/rsvps/"+url.PathEscape(id), nil, nil)
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload errorWire
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &payload)

	apiErr := &APIError{
		Status:  resp.StatusCode,
		Code:    payload.Error.Code,
		Message: payload.Error.Message,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return errors.Join(ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		return errors.Join(rsvpdomain.ErrRSVPNotFound, apiErr)
	case http.StatusBadRequest:
		if payload.Error.Code == "invalid_request" {
			return fmt.Errorf("%w: %s", rsvpdomain.ErrInvalidInput, payload.Error.Message)
		}
	}
	return apiErr
}

func toWriteWire(input rsvpdomain.Input) rsvpWriteWire {
	guests := make([]guestWire, 0, len(input.Guests))
	for _, guest := range input.Guests {
		guests = append(guests, guestWire{Name: guest.Name, DietaryRestrictions: guest.DietaryRestrictions})
	}
	return rsvpWriteWire{
		Name:   input.Name,
		Email:  input.Email,
		Guests: guests,
	}
}

func (w rsvpWire) toRecord() rsvpdomain.RSVP {
	guests := make(datatypes.JSONSlice[rsvpdomain.Guest], 0, len(w.Guests))
	for _, guest := range w.Guests {
		guests = append(guests, rsvpdomain.Guest{Name: guest.Name, DietaryRestrictions: guest.DietaryRestrictions})
	}
	return rsvpdomain.RSVP{
		ID:             w.ID,
		Name:           w.Name,
		Email:          w.Email,
		PrimaryDietary: w.PrimaryDietary,
		Guests:         guests,
		CreatedAt:      w.CreatedAt,
	}
}
