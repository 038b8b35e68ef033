// Package recovery drives the forgotten-password flow: request a reset code,
// verify it, then set a new password. Each step only uses the reset context
// handed over by the previous one.
package recovery

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/inflight"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/otp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MinPasswordLength is the shortest new password accepted locally.
const MinPasswordLength = 8

const (
	MsgEmailRequired   = "Please enter your email address."
	MsgFillAllFields   = "Please fill in all fields."
	MsgPasswordsDiffer = "Passwords do not match."
	MsgPasswordShort   = "Password must be at least 8 characters long."
	MsgContextMissing  = "Your reset session has expired. Please request a new code."
	MsgInFlight        = "Please wait, your request is still being processed."
	FallbackReset      = "Failed to reset password."
)

// OTP is the part of the OTP handler the controller needs.
type OTP interface {
	Issue(ctx context.Context, email string, purpose account.Purpose, payload *account.PendingRegistration) (otp.Result, error)
	Verify(ctx context.Context, email, code string, purpose account.Purpose, payload *account.PendingRegistration) (otp.Result, error)
	Resend(ctx context.Context, email string, purpose account.Purpose) (otp.Result, error)
}

// API is the part of the request gateway the controller needs.
type API interface {
	Send(ctx context.Context, req gateway.Request, out any) (int, error)
}

var (
	_ OTP = (*otp.Handler)(nil)
	_ API = (*gateway.Client)(nil)
)

type resetBody struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// Controller runs the three recovery steps.
type Controller struct {
	otp    OTP
	api    API
	logger zerolog.Logger
	guard  inflight.Guard
}

// ControllerOption modifies a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a recovery Controller.
func NewController(handler OTP, api API, options ...ControllerOption) (*Controller, error) {
	if handler == nil {
		return nil, errors.New("[recovery.NewController] otp handler is required")
	}
	if api == nil {
		return nil, errors.New("[recovery.NewController] api is required")
	}
	c := &Controller{otp: handler, api: api, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// RequestReset asks the service to mail a reset code to email.
func (c *Controller) RequestReset(ctx context.Context, email string) navigation.Outcome {
	email = strings.TrimSpace(email)
	if email == "" {
		return navigation.Fail(apierr.Local(clienterrors.ErrRequiredField, MsgEmailRequired))
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	res, err := c.otp.Issue(ctx, email, account.PurposePasswordReset, nil)
	if err != nil {
		e := apierr.From(err, otp.FallbackRequestReset)
		c.logger.Info().Str("email", email).Str("kind", string(e.Kind)).Msg("reset request rejected")
		return navigation.Fail(e)
	}

	c.logger.Info().Str("email", email).Msg("reset code requested")
	return navigation.Outcome{
		Event:   navigation.ResetRequested,
		Message: res.Message,
		Reset:   &account.PasswordResetContext{Email: email},
	}
}

// VerifyResetOTP checks code for the email carried in rc.
func (c *Controller) VerifyResetOTP(ctx context.Context, rc *account.PasswordResetContext, code string) navigation.Outcome {
	if !rc.HasEmail() {
		return c.missing()
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	res, err := c.otp.Verify(ctx, rc.Email, code, account.PurposePasswordReset, nil)
	if err != nil {
		return navigation.Fail(apierr.From(err, otp.FallbackVerifyReset))
	}

	c.logger.Info().Str("email", rc.Email).Msg("reset code verified")
	return navigation.Outcome{
		Event:   navigation.ResetOTPVerified,
		Message: res.Message,
		Reset:   rc.Verified(),
	}
}

// ResendResetOTP requests a fresh code for the email carried in rc.
func (c *Controller) ResendResetOTP(ctx context.Context, rc *account.PasswordResetContext) navigation.Outcome {
	if !rc.HasEmail() {
		return c.missing()
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	res, err := c.otp.Resend(ctx, rc.Email, account.PurposePasswordReset)
	if err != nil {
		return navigation.Fail(apierr.From(err, otp.FallbackResend))
	}
	return navigation.Outcome{Event: navigation.Stay, Message: res.Message}
}

// CompleteReset sets a new password for the email carried in rc. The
// password rules are checked in order and the first failure is reported
// without contacting the service.
func (c *Controller) CompleteReset(ctx context.Context, rc *account.PasswordResetContext, newPassword, confirmPassword string) navigation.Outcome {
	if !rc.HasEmail() {
		return c.missing()
	}
	if e := checkPassword(newPassword, confirmPassword); e != nil {
		return navigation.Fail(e)
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	email := strings.TrimSpace(rc.Email)
	var out gateway.MessageResponse
	if _, err := c.api.Send(ctx, gateway.Request{
		Method:   http.MethodPost,
		Path:     gateway.PathResetPassword,
		Body:     resetBody{Email: email, NewPassword: newPassword},
		Fallback: FallbackReset,
	}, &out); err != nil {
		e := apierr.From(err, FallbackReset)
		c.logger.Info().Str("email", email).Str("kind", string(e.Kind)).Msg("password reset rejected")
		return navigation.Fail(e)
	}

	c.logger.Info().Str("email", email).Msg("password reset")
	return navigation.Outcome{Event: navigation.ResetCompleted, Message: out.Message, Email: email}
}

func checkPassword(newPassword, confirmPassword string) *apierr.Error {
	if newPassword == "" || confirmPassword == "" {
		return apierr.Local(clienterrors.ErrRequiredField, MsgFillAllFields)
	}
	if newPassword != confirmPassword {
		return apierr.Local(clienterrors.ErrPasswordMismatch, MsgPasswordsDiffer)
	}
	if len([]rune(newPassword)) < MinPasswordLength {
		return apierr.Local(clienterrors.ErrPasswordTooShort, MsgPasswordShort)
	}
	return nil
}

func (c *Controller) missing() navigation.Outcome {
	c.logger.Debug().Msg("reset context missing")
	e := apierr.FlowContextMissing(MsgContextMissing)
	return navigation.Outcome{Event: navigation.ResetContextMissing, Message: e.Message, Err: e}
}
