package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InsecureDefaultSecret is the placeholder secret older deployments shipped
// with. It is rejected so a misconfigured install cannot mint tokens that
// every other misconfigured install would accept.
const InsecureDefaultSecret = "change_me_super_secret"

const tokenIssuer = "portal"

var (
	ErrMissingSecret  = errors.New("jwt secret is not set")
	ErrInsecureSecret = errors.New("jwt secret is the published default")
	ErrInvalidToken   = errors.New("invalid token")
)

// Identity is the set of admin attributes a token vouches for.
type Identity struct {
	AdminID  string
	Username string
	Role     string
	Name     string
}

// Claims is a verified token's content.
type Claims struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenConfig configures a TokenService. Secret is required.
type TokenConfig struct {
	Secret   string
	Lifetime time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenService signs and verifies stateless HS256 session tokens. It is
// immutable after construction and safe for concurrent use.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService validates cfg and returns a ready service.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.Secret == InsecureDefaultSecret {
		return nil, ErrInsecureSecret
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultTokenLifetime
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		now:      cfg.Now,
	}, nil
}

// Lifetime returns how long issued tokens stay valid.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Sign creates a new signed token for id, valid from now for the configured
// lifetime.
func (s *TokenService) Sign(id Identity) (string, error) {
	now := s.now()
	claims := jwtClaims{
		Username: id.Username,
		Role:     id.Role,
		Name:     id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AdminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature, algorithm and expiry. Every failure wraps
// ErrInvalidToken.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		Identity: Identity{
			AdminID:  claims.Subject,
			Username: claims.Username,
			Role:     claims.Role,
			Name:     claims.Name,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// Verify is Parse without the reason: nil means unauthenticated.
func (s *TokenService) Verify(tokenStr string) *Claims {
	claims, err := s.Parse(tokenStr)
	if err != nil {
		return nil
	}
	return claims
}

// ExtractBearer pulls the token out of an Authorization header value. The
// canonical form is "Bearer <token>" (scheme matched case-insensitively);
// any other non-empty value is returned whole, so clients that send the bare
// token keep working. This leniency is a convenience, not a security
// boundary: the token is still verified.
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], true
	}
	return header, true
}

type jwtClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}
