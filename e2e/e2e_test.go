//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/console"
	"wedding-rsvp/internal/db"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/internal/repository/inmemory"
	rsvprepo "wedding-rsvp/internal/repository/postgres/rsvp"
	"wedding-rsvp/internal/transport/httpserver"
	"wedding-rsvp/internal/transport/httpserver/handler"
	"wedding-rsvp/internal/transport/httpserver/handler/common"
	"wedding-rsvp/internal/transport/httpserver/handler/rsvps"
	"wedding-rsvp/internal/transport/httpserver/middleware"
	"wedding-rsvp/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
	adminToken    = "admin-token"
)

type testEnv struct {
	server     *httptest.Server
	authServer *httptest.Server
	db         *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "text")
	authServer := newAuthServer(t)

	cfg := config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		DB:   config.DBConfig{DSN: dsn},
		Supabase: config.SupabaseConfig{
			URL:            authServer.URL,
			PublishableKey: "test-key",
			AuthTimeout:    2 * time.Second,
		},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	require.NoError(t, err, "db connect")

	_, err = db.Migrate(dbConn, log)
	require.NoError(t, err, "migrate")
	require.NoError(t, dbConn.WithContext(context.Background()).Exec("TRUNCATE TABLE rsvps").Error, "clean db")

	rsvpService := rsvpdomain.NewService(rsvprepo.NewPostgres(dbConn))
	authClient := auth.NewClient(cfg.Supabase)
	authMiddleware := middleware.NewSupabaseAuth(cfg.Supabase, authClient, inmemory.NewInMemorySessionCache(), log)
	handlers := handler.New(
		common.New(authClient, authMiddleware, log),
		rsvps.New(rsvpService, log),
	)
	router := httpserver.NewRouter(cfg, handlers, authMiddleware, middleware.NewRateLimiter(0, time.Minute, log))

	return &testEnv{server: httptest.NewServer(router), authServer: authServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

// newAuthServer fakes the GoTrue endpoints for one admin account.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	var (
		mu      sync.Mutex
		revoked = map[string]bool{}
	)
	user := map[string]interface{}{
		"id":            "11111111-1111-1111-1111-111111111111",
		"email":         adminEmail,
		"user_metadata": map[string]interface{}{"name": "Admin"},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

		switch r.URL.Path {
		case "/auth/v1/token":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Email != adminEmail || body.Password != adminPassword {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			delete(revoked, adminToken)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": adminToken,
				"token_type":   "bearer",
				"expires_in":   3600,
				"user":         user,
			})
		case "/auth/v1/user":
			mu.Lock()
			ok := token == adminToken && !revoked[token]
			mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(user)
		case "/auth/v1/logout":
			mu.Lock()
			revoked[token] = true
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err, "marshal payload")
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "new request")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "do request")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response")

	return resp, respBody
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type rsvpResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PrimaryDietary *string `json:"primary_dietary"`
	Guests         []struct {
		Name                string  `json:"name"`
		DietaryRestrictions *string `json:"dietary_restrictions"`
	} `json:"guests"`
	TotalGuests int       `json:"total_guests"`
	CreatedAt   time.Time `json:"created_at"`
}

type listResponse struct {
	Items       []rsvpResponse `json:"items"`
	Total       int            `json:"total"`
	TotalGuests int            `json:"total_guests"`
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, _ := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/rsvps", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", decode[errorEnvelope](t, body).Error.Code)

	resp, _ = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/auth/login", "",
		map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/auth/login", "",
		map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/auth/logout", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/rsvps", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2ERSVPLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	base := env.server.URL + "/api/rsvps"

	resp, body := requestJSON(t, client, http.MethodPost, base, "", map[string]interface{}{
		"name":            "Ana Lopez",
		"email":           "ana@example.com",
		"primary_dietary": "vegan",
		"guests": []map[string]interface{}{
			{"name": "Leo", "dietary_restrictions": "nut allergy"},
			{"name": "Mia", "dietary_restrictions": ""},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ana := decode[rsvpResponse](t, body)
	assert.Equal(t, 3, ana.TotalGuests)
	require.Len(t, ana.Guests, 2)
	assert.Nil(t, ana.Guests[1].DietaryRestrictions)

	resp, body = requestJSON(t, client, http.MethodPost, base, "", map[string]interface{}{
		"name": "Ben Ortiz", "email": "ben@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ben := decode[rsvpResponse](t, body)
	assert.Nil(t, ben.PrimaryDietary)
	assert.Empty(t, ben.Guests)

	resp, body = requestJSON(t, client, http.MethodPost, base, "", map[string]interface{}{
		"name": "", "email": "x@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", decode[errorEnvelope](t, body).Error.Code)

	resp, body = requestJSON(t, client, http.MethodGet, base, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[listResponse](t, body)
	assert.Equal(t, 2, listed.Total)
	assert.Equal(t, 4, listed.TotalGuests)
	require.Len(t, listed.Items, 2)
	assert.Equal(t, ben.ID, listed.Items[0].ID, "newest first")

	resp, body = requestJSON(t, client, http.MethodPut, base+"/"+ana.ID, adminToken, map[string]interface{}{
		"name":   "Ana Lopez",
		"email":  "ana.lopez@example.com",
		"guests": []map[string]interface{}{{"name": "Noa", "dietary_restrictions": nil}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[struct {
		Success bool         `json:"success"`
		RSVP    rsvpResponse `json:"rsvp"`
	}](t, body)
	assert.True(t, updated.Success)
	assert.Equal(t, "ana.lopez@example.com", updated.RSVP.Email)
	require.NotNil(t, updated.RSVP.PrimaryDietary)
	assert.Equal(t, "vegan", *updated.RSVP.PrimaryDietary)
	assert.Equal(t, 2, updated.RSVP.TotalGuests)
	assert.WithinDuration(t, ana.CreatedAt, updated.RSVP.CreatedAt, time.Millisecond)

	resp, _ = requestJSON(t, client, http.MethodPut, base+"/"+ana.ID, "", map[string]interface{}{
		"name": "X", "email": "x@example.com",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = requestJSON(t, client, http.MethodPut, base+"/"+ana.ID, adminToken, map[string]interface{}{
		"name": "Ana", "email": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = requestJSON(t, client, http.MethodDelete, base+"/"+ben.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"success":true}`, string(body))

	resp, body = requestJSON(t, client, http.MethodDelete, base+"/"+ben.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "rsvp_not_found", decode[errorEnvelope](t, body).Error.Code)

	resp, _ = requestJSON(t, client, http.MethodDelete, base+"/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = requestJSON(t, client, http.MethodGet, base, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed = decode[listResponse](t, body)
	assert.Equal(t, 1, listed.Total)
	assert.Equal(t, 2, listed.TotalGuests)
}

func TestE2EConsoleOverHTTP(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	ctx := context.Background()
	log := logger.New(io.Discard, slog.LevelError, "text")

	public := console.NewHTTPStore(env.server.URL, "", 5*time.Second)
	form := &console.Form{Name: "Cleo", Email: "cleo@example.com"}
	form.SetGuest(form.AddGuest(), "Dario", "")
	_, err := console.NewSubmitter(public, form, log).Submit(ctx)
	require.NoError(t, err)

	admin := console.NewHTTPStore(env.server.URL, "", 5*time.Second)
	_, _, err = admin.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	dash := console.NewDashboard(admin, log)
	require.NoError(t, dash.Load(ctx))
	assert.Equal(t, rsvpdomain.Summary{Submissions: 1, Guests: 2}, dash.Stats())

	id := dash.View()[0].ID
	prompt, err := dash.ConfirmDelete(id)
	require.NoError(t, err)
	require.NoError(t, prompt.Confirm(ctx))
	assert.Equal(t, rsvpdomain.Summary{}, dash.Stats())

	require.NoError(t, admin.Logout(ctx))
	assert.ErrorIs(t, dash.Load(ctx), console.ErrUnauthorized)
}
