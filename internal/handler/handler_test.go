package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/model"
	"github.com/bpbdbogor/portal/internal/server/middleware"
	"github.com/bpbdbogor/portal/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests"
	testPassword  = "admin123"
)

// spyStore counts credential lookups so tests can assert that rejected
// requests never reach the store.
type spyStore struct {
	*config.Store
	lookups atomic.Int32
}

func (s *spyStore) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s.lookups.Add(1)
	return s.Store.FindAdminByUsername(ctx, username)
}

// testEnv holds shared state for handler integration tests.
type testEnv struct {
	store  *spyStore
	tokens *service.TokenService
	hasher *service.BcryptHasher
	router chi.Router
}

// newTestEnv creates a fresh test environment with an in-memory store and a
// Chi router carrying the auth routes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := config.NewStore("") // in-memory SQLite
	if err != nil {
		t.Fatalf("config.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := service.NewTokenService(service.TokenConfig{Secret: testJWTSecret})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	spy := &spyStore{Store: store}
	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := service.NewAuthService(spy, hasher, tokens, logger)
	authHandler := NewAuthHandler(authSvc, logger)
	sysHandler := NewSystemHandler(store, logger)

	r := chi.NewRouter()
	r.Get("/healthz", sysHandler.Healthz)
	r.Get("/readyz", sysHandler.Readyz)
	r.Route("/api/admin/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Options("/login", authHandler.LoginOptions)
		r.With(middleware.Authenticate(tokens)).Get("/me", authHandler.Session)
	})

	return &testEnv{store: spy, tokens: tokens, hasher: hasher, router: r}
}

// seedAdmin creates the default administrator account and returns it.
func (e *testEnv) seedAdmin(t *testing.T) *model.Admin {
	t.Helper()
	hash, err := e.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &model.Admin{
		Username:     "admin",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.DefaultRole,
		IsActive:     true,
	}
	if err := e.store.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	return admin
}

// do executes an HTTP request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v; body = %s", err, rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, 200)

	var resp probeResponse
	decodeJSON(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, 200)

	var resp probeResponse
	decodeJSON(t, rr, &resp)
	if resp.Checks["store"] != "ok" {
		t.Errorf("store check = %q, want ok", resp.Checks["store"])
	}
}

func TestReadyzStoreDown(t *testing.T) {
	store, err := config.NewStore("")
	if err != nil {
		t.Fatalf("config.NewStore: %v", err)
	}
	store.Close()

	rr := httptest.NewRecorder()
	NewSystemHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).
		Readyz(rr, httptest.NewRequest("GET", "/readyz", nil))
	assertStatus(t, rr, 503)
}
