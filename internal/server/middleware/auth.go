package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/bpbdbogor/portal/internal/service"
)

type contextKeyAuth string

const (
	// AuthPrincipalKey is the context key for the authenticated principal.
	AuthPrincipalKey contextKeyAuth = "auth_principal"
)

// MsgUnauthenticated is returned for missing, malformed or expired tokens.
const MsgUnauthenticated = "Sesi tidak valid, silakan login kembali"

// Principal represents the authenticated admin making the request.
type Principal struct {
	AdminID   string
	Username  string
	Role      string
	Name      string
	ExpiresAt time.Time
}

// Authenticate returns an HTTP middleware that requires a valid session token
// in the Authorization header ("Bearer <token>", or the bare token). On
// success a Principal is attached to the request context; otherwise a 401
// JSON message is returned. The failure cause is never disclosed.
func Authenticate(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := service.ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				writeAuthError(w)
				return
			}
			claims := tokens.Verify(raw)
			if claims == nil {
				writeAuthError(w)
				return
			}

			principal := &Principal{
				AdminID:   claims.AdminID,
				Username:  claims.Username,
				Role:      claims.Role,
				Name:      claims.Name,
				ExpiresAt: claims.ExpiresAt,
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	// Manually construct JSON to avoid import cycle with handler package
	w.Write([]byte(`{"message":"` + MsgUnauthenticated + `"}`))
}
