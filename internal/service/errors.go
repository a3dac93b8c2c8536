package service

import (
	"errors"
	"net/http"
)

// User-facing messages. InvalidCredentials is shared by the unknown-username
// and wrong-password branches so responses never reveal which one happened.
const (
	MsgMissingFields      = "Username dan password wajib diisi"
	MsgCaptchaMismatch    = "Kode captcha tidak sesuai"
	MsgInvalidCredentials = "Kredensial tidak valid"
	MsgInternalError      = "Terjadi kesalahan internal server"
)

// Reason classifies why a login attempt ended in the Failed state.
type Reason int

const (
	ReasonMissingFields Reason = iota + 1
	// ReasonCaptchaMismatch is produced by the client only; the server
	// never sees the CAPTCHA.
	ReasonCaptchaMismatch
	ReasonInvalidCredentials
	ReasonInternal
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingFields:
		return "missing_fields"
	case ReasonCaptchaMismatch:
		return "captcha_mismatch"
	case ReasonInvalidCredentials:
		return "invalid_credentials"
	case ReasonInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingFields:
		return MsgMissingFields
	case ReasonCaptchaMismatch:
		return MsgCaptchaMismatch
	case ReasonInvalidCredentials:
		return MsgInvalidCredentials
	default:
		return MsgInternalError
	}
}

// HTTPStatus maps the reason onto the login endpoint's status codes.
func (r Reason) HTTPStatus() int {
	switch r {
	case ReasonMissingFields, ReasonCaptchaMismatch:
		return http.StatusBadRequest
	case ReasonInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// LoginError is returned by AuthService.Login for every failed attempt. Err
// holds the underlying cause for logging and is never shown to users.
type LoginError struct {
	Reason Reason
	State  State
	Err    error
}

func (e *LoginError) Error() string {
	msg := "login failed: " + e.Reason.String()
	if e.State != "" {
		msg += " while " + string(e.State)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Sentinels usable with errors.Is against a *LoginError.
var (
	ErrMissingFields      = &LoginError{Reason: ReasonMissingFields}
	ErrInvalidCredentials = &LoginError{Reason: ReasonInvalidCredentials}
)

// Is matches any LoginError with the same reason.
func (e *LoginError) Is(target error) bool {
	t, ok := target.(*LoginError)
	return ok && t.Reason == e.Reason
}

// ReasonOf extracts the failure reason from err. Errors that are not a
// LoginError count as internal.
func ReasonOf(err error) Reason {
	var le *LoginError
	if errors.As(err, &le) {
		return le.Reason
	}
	return ReasonInternal
}
