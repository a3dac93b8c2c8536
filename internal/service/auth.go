package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bpbdbogor/portal/internal/config"
	"github.com/bpbdbogor/portal/internal/model"
)

// State is a step of the login state machine:
// Idle -> Validating -> Authenticating -> IssuingToken -> Success, with a
// Failed exit from any step.
type State string

const (
	StateIdle           State = "idle"
	StateValidating     State = "validating"
	StateAuthenticating State = "authenticating"
	StateIssuingToken   State = "issuing_token"
	StateSuccess        State = "success"
	StateFailed         State = "failed"
)

// CredentialStore looks up admin records. Implementations return
// config.ErrNotFound when no record has the username.
type CredentialStore interface {
	FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}

// Credentials is a single login submission.
type Credentials struct {
	Username string
	Password string
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token string
	Admin model.AdminProfile
}

// AuthService runs the login flow: validate input, look up the admin, verify
// the password and mint a token. It holds no per-request state.
type AuthService struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens *TokenService
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store CredentialStore, hasher PasswordHasher, tokens *TokenService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Login authenticates creds. On failure the error is a *LoginError whose
// Reason decides what the caller may reveal.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (res *LoginResult, err error) {
	start := time.Now()
	defer func() { recordLogin(err, time.Since(start)) }()

	state := StateValidating
	if creds.Username == "" || creds.Password == "" {
		return nil, s.fail(ctx, state, ReasonMissingFields, nil)
	}

	state = StateAuthenticating
	admin, err := s.store.FindAdminByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			// Spend the same bcrypt time as a real mismatch.
			s.hasher.Verify(creds.Password, s.timingHash())
			return nil, s.fail(ctx, state, ReasonInvalidCredentials, nil)
		}
		return nil, s.fail(ctx, state, ReasonInternal, err)
	}
	if !s.hasher.Verify(creds.Password, admin.PasswordHash) {
		return nil, s.fail(ctx, state, ReasonInvalidCredentials, nil)
	}

	state = StateIssuingToken
	token, err := s.tokens.Sign(Identity{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		Name:     admin.Name,
	})
	if err != nil {
		return nil, s.fail(ctx, state, ReasonInternal, err)
	}

	s.logger.DebugContext(ctx, "login succeeded", "state", StateSuccess, "admin_id", admin.ID)
	return &LoginResult{Token: token, Admin: admin.Profile()}, nil
}

func (s *AuthService) fail(ctx context.Context, at State, reason Reason, cause error) error {
	if reason == ReasonInternal {
		s.logger.ErrorContext(ctx, "login failed", "state", StateFailed, "at", at, "reason", reason, "error", cause)
	} else {
		s.logger.DebugContext(ctx, "login rejected", "state", StateFailed, "at", at, "reason", reason)
	}
	return &LoginError{Reason: reason, State: at, Err: cause}
}

// timingHash returns a digest of a throwaway password, computed once.
func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("portal-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
