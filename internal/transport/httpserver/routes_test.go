package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/internal/config"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/internal/repository/inmemory"
	"wedding-rsvp/internal/transport/httpserver/handler"
	"wedding-rsvp/internal/transport/httpserver/handler/common"
	"wedding-rsvp/internal/transport/httpserver/handler/rsvps"
	authmw "wedding-rsvp/internal/transport/httpserver/middleware"
	"wedding-rsvp/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "admin-token"

type fakeAuth struct {
	signedOut []string
}

func (f *fakeAuth) Configured() bool {
	return true
}

func (f *fakeAuth) GetUser(_ context.Context, token string) (auth.User, error) {
	if token != adminToken {
		return auth.User{}, auth.ErrInvalidToken
	}
	return auth.User{ID: "admin-1", Email: "admin@example.com"}, nil
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (auth.Session, error) {
	if email != "admin@example.com" || password != "secret" {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	return auth.Session{
		AccessToken: adminToken,
		TokenType:   "bearer",
		ExpiresIn:   3600,
		User:        auth.User{ID: "admin-1", Email: email},
	}, nil
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

// failingRepository answers every call with err.
type failingRepository struct {
	err error
}

func (f failingRepository) Transaction(_ context.Context, fn func(rsvpdomain.Repository) error) error {
	return fn(f)
}

func (f failingRepository) Create(context.Context, *rsvpdomain.RSVP) error {
	return f.err
}

func (f failingRepository) List(context.Context) ([]rsvpdomain.RSVP, error) {
	return nil, f.err
}

func (f failingRepository) GetByID(context.Context, string) (*rsvpdomain.RSVP, error) {
	return nil, f.err
}

func (f failingRepository) Update(context.Context, *rsvpdomain.RSVP) error {
	return f.err
}

func (f failingRepository) Delete(context.Context, string) (bool, error) {
	return false, f.err
}

type testServer struct {
	handler http.Handler
	auth    *fakeAuth
}

func newTestServer(t *testing.T, repo rsvpdomain.Repository, publicLimit int) testServer {
	t.Helper()

	log := logger.New(io.Discard, slog.LevelError, "text")
	cfg := config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}
	fake := &fakeAuth{}

	authMiddleware := authmw.NewSupabaseAuth(cfg.Supabase, fake, inmemory.NewInMemorySessionCache(), log)
	limiter := authmw.NewRateLimiter(publicLimit, time.Minute, log)
	handlers := handler.New(
		common.New(fake, authMiddleware, log),
		rsvps.New(rsvpdomain.NewService(repo), log),
	)

	return testServer{
		handler: NewRouter(cfg, handlers, authMiddleware, limiter),
		auth:    fake,
	}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type recordBody struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PrimaryDietary *string `json:"primary_dietary"`
	Guests         []struct {
		Name                string  `json:"name"`
		DietaryRestrictions *string `json:"dietary_restrictions"`
	} `json:"guests"`
	TotalGuests int `json:"total_guests"`
}

func submit(t *testing.T, s testServer, body map[string]any) recordBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/rsvps", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[recordBody](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)

	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPublicSubmitAndAdminList(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)

	created := submit(t, s, map[string]any{
		"name":  " Ana ",
		"email": "ana@example.com",
		"guests": []map[string]any{
			{"name": "Kid", "dietary_restrictions": "nuts"},
			{"name": "Partner", "dietary_restrictions": ""},
		},
	})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ana", created.Name)
	assert.Nil(t, created.PrimaryDietary)
	assert.Equal(t, 3, created.TotalGuests)
	require.Len(t, created.Guests, 2)
	assert.Nil(t, created.Guests[1].DietaryRestrictions)

	rec := s.do(t, http.MethodGet, "/api/rsvps", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/rsvps", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Items       []recordBody `json:"items"`
		Total       int          `json:"total"`
		TotalGuests int          `json:"total_guests"`
	}](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 3, list.TotalGuests)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)

	rec := s.do(t, http.MethodPost, "/api/rsvps", "", map[string]any{"name": "Ana", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"invalid_request","message":"email must be a valid email"}}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/rsvps", "", map[string]any{"name": "Ana", "email": "a@b.co", "extra": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestSubmitIsRateLimited(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 1)

	submit(t, s, map[string]any{"name": "Ana", "email": "ana@example.com"})
	rec := s.do(t, http.MethodPost, "/api/rsvps", "", map[string]any{"name": "Bo", "email": "bo@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestDeleteRSVP(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)
	keep := submit(t, s, map[string]any{"name": "Keep", "email": "keep@example.com"})
	drop := submit(t, s, map[string]any{"name": "Drop", "email": "drop@example.com"})

	rec := s.do(t, http.MethodDelete, "/api/rsvps/"+drop.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/rsvps/"+drop.ID, "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/rsvps/"+drop.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/rsvps/"+drop.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/rsvps/"+keep.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/rsvps/"+drop.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRSVP(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)
	created := submit(t, s, map[string]any{
		"name":            "Ana",
		"email":           "ana@example.com",
		"primary_dietary": "vegan",
		"guests":          []map[string]any{{"name": "One"}, {"name": "Two"}},
	})

	rec := s.do(t, http.MethodPut, "/api/rsvps/"+created.ID, adminToken, map[string]any{
		"name":   "Ana Maria",
		"email":  "ana@example.com",
		"guests": []map[string]any{{"name": "Three", "dietary_restrictions": "halal"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[struct {
		Success bool       `json:"success"`
		RSVP    recordBody `json:"rsvp"`
	}](t, rec)
	assert.True(t, updated.Success)
	assert.Equal(t, "Ana Maria", updated.RSVP.Name)
	require.NotNil(t, updated.RSVP.PrimaryDietary)
	assert.Equal(t, "vegan", *updated.RSVP.PrimaryDietary)
	require.Len(t, updated.RSVP.Guests, 1)
	assert.Equal(t, "Three", updated.RSVP.Guests[0].Name)

	rec = s.do(t, http.MethodPut, "/api/rsvps/"+created.ID, adminToken, map[string]any{
		"name":            "Ana Maria",
		"email":           "ana@example.com",
		"primary_dietary": nil,
		"guests":          []map[string]any{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodeBody[struct {
		Success bool       `json:"success"`
		RSVP    recordBody `json:"rsvp"`
	}](t, rec)
	assert.Nil(t, updated.RSVP.PrimaryDietary)
	assert.Empty(t, updated.RSVP.Guests)
	assert.Equal(t, 1, updated.RSVP.TotalGuests)

	rec = s.do(t, http.MethodPut, "/api/rsvps/"+created.ID, adminToken, map[string]any{
		"name":   "Ana",
		"email":  "ana@example.com",
		"guests": []map[string]any{{"name": "  "}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "guests[0].name is required")

	rec = s.do(t, http.MethodPut, "/api/rsvps/6f0d8b0e-3d7c-4f55-9c39-0d4f3f1f5d10", adminToken, map[string]any{
		"name":  "Ghost",
		"email": "ghost@example.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailuresCarryMessage(t *testing.T) {
	s := newTestServer(t, failingRepository{err: errors.New("connection refused")}, 10)
	id := "6f0d8b0e-3d7c-4f55-9c39-0d4f3f1f5d10"

	rec := s.do(t, http.MethodDelete, "/api/rsvps/"+id, adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"store_error","message":"store error: connection refused"}}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/rsvps/"+id, adminToken, map[string]any{"name": "A", "email": "a@b.co"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "store error: connection refused")

	rec = s.do(t, http.MethodGet, "/api/rsvps", adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t, inmemory.NewInMemoryRSVPRepository(), 10)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody[struct {
		AccessToken string `json:"access_token"`
	}](t, rec)
	assert.Equal(t, adminToken, session.AccessToken)

	rec = s.do(t, http.MethodGet, "/api/auth/me", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")

	rec = s.do(t, http.MethodPost, "/api/auth/logout", session.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{adminToken}, s.auth.signedOut)
}
