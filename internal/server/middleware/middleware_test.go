package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bpbdbogor/portal/internal/service"
)

// ---------------------------------------------------------------------------
// RequestID middleware tests
// ---------------------------------------------------------------------------

func TestRequestIDGeneratesUUID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("expected non-empty request ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	respID := rr.Header().Get("X-Request-ID")
	if len(respID) != 36 {
		t.Errorf("expected UUID-length request ID, got %q (len=%d)", respID, len(respID))
	}
}

func TestRequestIDPreservesClientID(t *testing.T) {
	clientID := "my-custom-trace-id-123"

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetRequestID(r.Context()); id != clientID {
			t.Errorf("expected context ID %q, got %q", clientID, id)
		}
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", clientID)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if respID := rr.Header().Get("X-Request-ID"); respID != clientID {
		t.Errorf("expected response X-Request-ID %q, got %q", clientID, respID)
	}
}

func TestRequestIDReplacesUnsafeClientID(t *testing.T) {
	for _, bad := range []string{strings.Repeat("a", 200), "two words", "tab\there"} {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", bad)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if got := rr.Header().Get("X-Request-ID"); got == bad || len(got) != 36 {
			t.Errorf("client ID %q: expected a generated UUID, got %q", bad, got)
		}
	}
}

func TestGetRequestIDEmptyContext(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("expected empty string from bare context, got %q", id)
	}
}

// ---------------------------------------------------------------------------
// Authenticate middleware tests
// ---------------------------------------------------------------------------

func newTokens(t *testing.T, secret string, now func() time.Time) *service.TokenService {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   secret,
		Lifetime: time.Hour,
		Now:      now,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func signTestToken(t *testing.T, tokens *service.TokenService) string {
	t.Helper()
	tok, err := tokens.Sign(service.Identity{
		AdminID:  "0190f3c2-7d8a-7b44-9a41-1c2d3e4f5a6b",
		Username: "admin",
		Role:     "admin",
		Name:     "Administrator",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return tok
}

func TestAuthenticateAcceptsBearerAndBareToken(t *testing.T) {
	tokens := newTokens(t, "middleware-test-secret", nil)
	tok := signTestToken(t, tokens)

	for _, header := range []string{"Bearer " + tok, "bearer " + tok, tok} {
		var got *Principal
		handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetPrincipal(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/admin/auth/me", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d", header[:10], rr.Code)
		}
		if got == nil {
			t.Fatal("expected principal in context")
		}
		if got.Username != "admin" || got.Role != "admin" || got.Name != "Administrator" {
			t.Errorf("unexpected principal: %+v", got)
		}
		if got.AdminID != "0190f3c2-7d8a-7b44-9a41-1c2d3e4f5a6b" {
			t.Errorf("unexpected admin ID %q", got.AdminID)
		}
	}
}

func TestAuthenticateRejects(t *testing.T) {
	tokens := newTokens(t, "middleware-test-secret", nil)
	foreign := signTestToken(t, newTokens(t, "some-other-secret", nil))
	expired := signTestToken(t, newTokens(t, "middleware-test-secret", func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("inner handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/api/admin/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), MsgUnauthenticated) {
				t.Errorf("expected unauthenticated message, got %s", rr.Body.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// GetPrincipal tests
// ---------------------------------------------------------------------------

func TestGetPrincipalWithValue(t *testing.T) {
	expected := &Principal{AdminID: "42", Username: "admin", Role: "admin"}
	ctx := context.WithValue(context.Background(), AuthPrincipalKey, expected)

	got := GetPrincipal(ctx)
	if got == nil {
		t.Fatal("expected non-nil principal")
	}
	if got.AdminID != "42" {
		t.Errorf("expected AdminID 42, got %q", got.AdminID)
	}
}

func TestGetPrincipalWithoutValue(t *testing.T) {
	if got := GetPrincipal(context.Background()); got != nil {
		t.Error("expected nil principal from bare context")
	}
}

// ---------------------------------------------------------------------------
// Logger middleware tests
// ---------------------------------------------------------------------------

func TestLoggerRecordsStatusAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"x"}`))
	}))

	req := httptest.NewRequest("POST", "/api/admin/auth/login", strings.NewReader(`{"password":"hunter2"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level for 401, got %s", out)
	}
	if !strings.Contains(out, "status=401") {
		t.Errorf("expected status=401 in log, got %s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Error("request body must not be logged")
	}
}

func TestLoggerQuietsHealthProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if buf.Len() != 0 {
		t.Errorf("expected healthz to log below info, got %s", buf.String())
	}
}
