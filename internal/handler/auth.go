package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bpbdbogor/portal/internal/model"
	"github.com/bpbdbogor/portal/internal/server/middleware"
	"github.com/bpbdbogor/portal/internal/service"
)

// AuthHandler serves the admin authentication API.
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// loginRequest is the expected payload for the Login endpoint. A "captcha"
// field may be present; it is checked in the browser and ignored here.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and returns a signed session token.
// POST /api/admin/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		// An undecodable body carries no usable credentials.
		h.logger.DebugContext(r.Context(), "login body rejected",
			"error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeMessage(w, http.StatusBadRequest, service.MsgMissingFields)
		return
	}

	res, err := h.authSvc.Login(r.Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		reason := service.ReasonOf(err)
		var le *service.LoginError
		if !errors.As(err, &le) {
			h.logger.ErrorContext(r.Context(), "unexpected login error",
				"error", err, "request_id", middleware.GetRequestID(r.Context()))
		}
		writeMessage(w, reason.HTTPStatus(), reason.Message())
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Token: res.Token,
		Admin: res.Admin,
	})
}

// LoginOptions answers CORS preflight for the login endpoint.
// OPTIONS /api/admin/auth/login
func (h *AuthHandler) LoginOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

// Session returns the profile carried by the caller's bearer token. It must
// be mounted behind middleware.Authenticate.
// GET /api/admin/auth/me
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeMessage(w, http.StatusUnauthorized, middleware.MsgUnauthenticated)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, sessionResponse{
		Admin: model.AdminProfile{
			ID:       p.AdminID,
			Username: p.Username,
			Name:     p.Name,
			Role:     p.Role,
		},
		ExpiresAt: p.ExpiresAt.Unix(),
	})
}

type sessionResponse struct {
	Admin     model.AdminProfile `json:"admin"`
	ExpiresAt int64              `json:"expires_at"`
}
