// Package client drives the admin login flow from outside the browser: it
// applies the same local checks as the login page, posts the credentials and
// keeps the resulting session in client-side slots.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"

	"github.com/bpbdbogor/portal/internal/captcha"
	"github.com/bpbdbogor/portal/internal/model"
	"github.com/bpbdbogor/portal/internal/service"
)

// LoginPath is the server route the form posts to.
const LoginPath = "/api/admin/auth/login"

// Messages shown when the server gives no usable answer.
const (
	MsgLoginFailed = "Gagal login"
	MsgUnexpected  = "Terjadi kesalahan"
)

var (
	// ErrMissingFields is returned before any request when a field is empty.
	ErrMissingFields = errors.New(service.MsgMissingFields)
	// ErrCaptchaMismatch is returned when the typed code does not match; the
	// challenge has already been regenerated.
	ErrCaptchaMismatch = errors.New(service.MsgCaptchaMismatch)
	// ErrSubmissionInFlight is returned while an earlier Submit is running.
	ErrSubmissionInFlight = errors.New("login already in progress")
)

// SubmitError is a failed round trip: either the server rejected the login
// or it could not be reached. Message is what the user should see.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Form is one login form instance. It is safe for concurrent use, but only
// one submission runs at a time.
type Form struct {
	http      *resty.Client
	challenge *captcha.Challenge
	slots     Slots
	inFlight  atomic.Bool
}

// NewForm creates a form posting to baseURL. src seeds the CAPTCHA; nil uses
// the global generator. The HTTP client has no timeout of its own, so ctx is
// the only way to abandon a hung request.
func NewForm(baseURL string, slots Slots, src captcha.Source) *Form {
	return &Form{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
		challenge: captcha.New(src),
		slots:     slots,
	}
}

// Captcha returns the code the user must type.
func (f *Form) Captcha() string {
	return f.challenge.Code()
}

// RefreshCaptcha draws a new code and returns it.
func (f *Form) RefreshCaptcha() string {
	return f.challenge.Refresh()
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	return f.inFlight.Load()
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

// Submit validates the form locally, posts the credentials and, on success,
// stores the token and profile in the slots.
func (f *Form) Submit(ctx context.Context, username, password, captchaInput string) (*model.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	// A blocked re-submission must not touch the displayed code.
	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer f.inFlight.Store(false)

	if !f.challenge.Check(captchaInput) {
		return nil, ErrCaptchaMismatch
	}

	var result model.LoginResponse
	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(loginPayload{Username: username, Password: password, Captcha: captchaInput}).
		SetResult(&result).
		Post(LoginPath)
	if err != nil {
		return nil, &SubmitError{Message: MsgUnexpected, Err: err}
	}

	if !resp.IsSuccess() {
		msg := MsgLoginFailed
		var body model.MessageResponse
		if json.Unmarshal(resp.Body(), &body) == nil && body.Message != "" {
			msg = body.Message
		}
		return nil, &SubmitError{Status: resp.StatusCode(), Message: msg}
	}
	if result.Token == "" {
		return nil, &SubmitError{
			Status:  resp.StatusCode(),
			Message: MsgUnexpected,
			Err:     errors.New("response carried no token"),
		}
	}

	if err := f.persist(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (f *Form) persist(res *model.LoginResponse) error {
	profile, err := json.Marshal(res.Admin)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := f.slots.Set(SlotToken, res.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := f.slots.Set(SlotProfile, string(profile)); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}
