package otp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// User-facing texts for local checks and for failures without a server message.
const (
	MsgEmailRequired     = "Email is required."
	MsgCodeRequired      = "Please enter the OTP sent to your email."
	MsgCodeIncomplete    = "Please enter the complete 6-digit OTP."
	MsgPayloadMissing    = "Registration details are missing. Please register again."
	MsgPurposeUnknown    = "Unsupported verification request."
	FallbackRegister     = "Something went wrong!"
	FallbackRequestReset = "Unable to send OTP. Please try again later."
	FallbackVerify       = "Invalid OTP"
	FallbackVerifyReset  = "Invalid OTP. Try again."
	FallbackResend       = "Unable to resend OTP. Please try again later."
)

// API is the part of the request gateway the handler needs.
type API interface {
	Send(ctx context.Context, req gateway.Request, out any) (int, error)
}

// Result describes the challenge after an operation.
type Result struct {
	Message   string // Server message on success
	Status    int    // HTTP status, 0 when no response was received
	Challenge account.OTPChallenge
}

// Handler issues, verifies and resends one-time codes. It talks to the
// account service only and never decides navigation.
type Handler struct {
	api     API
	logger  zerolog.Logger
	nowTime func() time.Time
}

// HandlerOption modifies a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.nowTime = nowFunc
	}
}

// NewHandler creates a Handler on top of the request gateway.
func NewHandler(api API, options ...HandlerOption) (*Handler, error) {
	if api == nil {
		return nil, errors.New("[NewHandler] api is required")
	}
	h := &Handler{
		api:     api,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h, nil
}

type verifyRegistrationBody struct {
	account.PendingRegistration
	OTP string `json:"otp"`
}

type emailBody struct {
	Email string `json:"email"`
}

type verifyResetBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Issue asks the service to send a code. For registration payload is the
// full profile and is submitted as the registration request; for
// password_reset payload is ignored.
func (h *Handler) Issue(ctx context.Context, email string, purpose account.Purpose, payload *account.PendingRegistration) (Result, error) {
	res := h.result(email, purpose, account.ChallengeAwaiting)
	email = strings.TrimSpace(email)
	if email == "" {
		return res, apierr.Local(clienterrors.ErrRequiredField, MsgEmailRequired)
	}

	var req gateway.Request
	switch purpose {
	case account.PurposeRegistration:
		if payload == nil {
			return res, apierr.Local(clienterrors.ErrMissingPayload, MsgPayloadMissing)
		}
		body := payload.Clone()
		body.Email = email
		req = gateway.Request{Method: http.MethodPost, Path: gateway.PathRegister, Body: body, Fallback: FallbackRegister}
	case account.PurposePasswordReset:
		req = gateway.Request{Method: http.MethodPost, Path: gateway.PathRequestPasswordReset, Body: emailBody{Email: email}, Fallback: FallbackRequestReset}
	default:
		return res, apierr.Local(clienterrors.ErrUnsupportedPurpose, MsgPurposeUnknown)
	}

	return h.send(ctx, res, req, "otp issued")
}

// Verify submits code. For registration the whole payload is resent with the
// code so the service can create the account and consume the code in one
// step; only HTTP 201 counts as success. For password_reset only email and
// code are sent.
func (h *Handler) Verify(ctx context.Context, email, code string, purpose account.Purpose, payload *account.PendingRegistration) (Result, error) {
	res := h.result(email, purpose, account.ChallengeAwaiting)
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	if email == "" {
		return res, apierr.Local(clienterrors.ErrRequiredField, MsgEmailRequired)
	}
	if code == "" {
		return res, apierr.Local(clienterrors.ErrIncompleteOTP, MsgCodeRequired)
	}
	if !ValidCode(code) {
		return res, apierr.Local(clienterrors.ErrIncompleteOTP, MsgCodeIncomplete)
	}

	var req gateway.Request
	switch purpose {
	case account.PurposeRegistration:
		if payload == nil {
			return res, apierr.Local(clienterrors.ErrMissingPayload, MsgPayloadMissing)
		}
		body := verifyRegistrationBody{PendingRegistration: *payload, OTP: code}
		body.Email = email
		req = gateway.Request{
			Method:       http.MethodPost,
			Path:         gateway.PathVerifyOTP,
			Body:         body,
			ExpectStatus: http.StatusCreated,
			Fallback:     FallbackVerify,
		}
	case account.PurposePasswordReset:
		req = gateway.Request{Method: http.MethodPost, Path: gateway.PathVerifyResetOTP, Body: verifyResetBody{Email: email, OTP: code}, Fallback: FallbackVerifyReset}
	default:
		return res, apierr.Local(clienterrors.ErrUnsupportedPurpose, MsgPurposeUnknown)
	}

	res, err := h.send(ctx, res, req, "otp verified")
	if err != nil {
		res.Challenge.State = account.ChallengeRejected
		return res, err
	}
	res.Challenge.State = account.ChallengeVerified
	return res, nil
}

// Resend requests a fresh code. It keeps no local state, so every call is an
// independent request and rate limiting is left to the server.
func (h *Handler) Resend(ctx context.Context, email string, purpose account.Purpose) (Result, error) {
	res := h.result(email, purpose, account.ChallengeAwaiting)
	email = strings.TrimSpace(email)
	if email == "" {
		return res, apierr.Local(clienterrors.ErrRequiredField, MsgEmailRequired)
	}

	var path string
	switch purpose {
	case account.PurposeRegistration:
		path = gateway.PathResendOTP
	case account.PurposePasswordReset:
		// No dedicated resend endpoint exists for resets; a new request replaces the old code
		path = gateway.PathRequestPasswordReset
	default:
		return res, apierr.Local(clienterrors.ErrUnsupportedPurpose, MsgPurposeUnknown)
	}

	return h.send(ctx, res, gateway.Request{Method: http.MethodPost, Path: path, Body: emailBody{Email: email}, Fallback: FallbackResend}, "otp resent")
}

func (h *Handler) result(email string, purpose account.Purpose, state account.ChallengeState) Result {
	return Result{
		Challenge: account.OTPChallenge{
			Email:    strings.TrimSpace(email),
			Purpose:  purpose,
			IssuedAt: h.nowTime(),
			State:    state,
		},
	}
}

func (h *Handler) send(ctx context.Context, res Result, req gateway.Request, event string) (Result, error) {
	var out gateway.MessageResponse
	status, err := h.api.Send(ctx, req, &out)
	res.Status = status
	if err != nil {
		e := apierr.From(err, req.Fallback)
		h.logger.Info().
			Str("email", res.Challenge.Email).
			Str("purpose", string(res.Challenge.Purpose)).
			Str("kind", string(e.Kind)).
			Int("status", status).
			Msg(event + " failed")
		return res, e
	}
	res.Message = out.Message
	h.logger.Info().
		Str("email", res.Challenge.Email).
		Str("purpose", string(res.Challenge.Purpose)).
		Msg(event)
	return res, nil
}
