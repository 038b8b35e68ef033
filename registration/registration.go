// Package registration drives sign-up: the form submission that issues an
// OTP and the verification that creates the account.
package registration

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/forms"
	"github.com/jrsteele09/planora-client/internal/inflight"
	"github.com/jrsteele09/planora-client/internal/utils"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/otp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	MsgFillAllFields  = "Please fill in all fields."
	MsgInFlight       = "Please wait, your request is still being processed."
	MsgStartAgain     = "Registration details are missing. Please register again."
	MsgDefaultIssued  = "OTP sent successfully!"
	otpSentMarker     = "OTP"
	verifySuccessText = "Registration successful!"
)

// OTP is the part of the OTP handler the controller needs.
type OTP interface {
	Issue(ctx context.Context, email string, purpose account.Purpose, payload *account.PendingRegistration) (otp.Result, error)
	Verify(ctx context.Context, email, code string, purpose account.Purpose, payload *account.PendingRegistration) (otp.Result, error)
	Resend(ctx context.Context, email string, purpose account.Purpose) (otp.Result, error)
}

var _ OTP = (*otp.Handler)(nil)

// Controller holds at most one in-flight registration.
type Controller struct {
	otp    OTP
	logger zerolog.Logger
	guard  inflight.Guard

	lock    sync.RWMutex
	pending *account.PendingRegistration
}

// ControllerOption modifies a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a registration Controller.
func NewController(handler OTP, options ...ControllerOption) (*Controller, error) {
	if handler == nil {
		return nil, errors.New("[registration.NewController] otp handler is required")
	}
	c := &Controller{otp: handler, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Pending returns a copy of the in-flight registration, or nil.
func (c *Controller) Pending() *account.PendingRegistration {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.pending.Clone()
}

// Submit starts a new registration with form, discarding any previous one.
// When the service reports that an OTP was sent the outcome carries the form
// exactly as entered.
func (c *Controller) Submit(ctx context.Context, form account.PendingRegistration) navigation.Outcome {
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	c.setPending(nil)

	if missing := forms.Missing(form); len(missing) > 0 {
		c.logger.Debug().Strs("fields", missing).Msg("registration form incomplete")
		return navigation.Fail(apierr.Local(clienterrors.ErrRequiredField, MsgFillAllFields))
	}

	res, err := c.otp.Issue(ctx, form.Email, account.PurposeRegistration, &form)
	if err != nil {
		e := apierr.From(err, otp.FallbackRegister)
		c.logger.Info().Str("email", form.Email).Str("kind", string(e.Kind)).Msg("registration rejected")
		return navigation.Fail(e)
	}

	msg := res.Message
	if msg == "" {
		msg = MsgDefaultIssued
	}
	if !strings.Contains(res.Message, otpSentMarker) {
		return navigation.Outcome{Event: navigation.Stay, Message: msg}
	}

	c.setPending(&form)
	c.logger.Info().Str("email", form.Email).Msg("registration otp sent")
	return navigation.Outcome{
		Event:        navigation.RegistrationOTPSent,
		Message:      msg,
		Registration: form.Clone(),
	}
}

// Verify submits code together with the carried registration. pending is the
// context handed over by navigation; without it there is nothing to verify
// and the user is sent back to the form.
func (c *Controller) Verify(ctx context.Context, pending *account.PendingRegistration, code string) navigation.Outcome {
	if pending == nil || utils.Blank(pending.Email) {
		return c.missing()
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	res, err := c.otp.Verify(ctx, pending.Email, code, account.PurposeRegistration, pending)
	if err != nil {
		e := apierr.From(err, otp.FallbackVerify)
		c.logger.Info().Str("email", pending.Email).Str("kind", string(e.Kind)).Msg("registration otp rejected")
		return navigation.Fail(e)
	}

	c.setPending(nil)
	msg := res.Message
	if msg == "" {
		msg = verifySuccessText
	}
	c.logger.Info().Str("email", pending.Email).Msg("registration verified")
	return navigation.Outcome{
		Event:   navigation.RegistrationVerified,
		Message: msg,
		Email:   strings.TrimSpace(pending.Email),
	}
}

// Resend asks for a fresh code for the carried registration.
func (c *Controller) Resend(ctx context.Context, pending *account.PendingRegistration) navigation.Outcome {
	if pending == nil || utils.Blank(pending.Email) {
		return c.missing()
	}
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	res, err := c.otp.Resend(ctx, pending.Email, account.PurposeRegistration)
	if err != nil {
		return navigation.Fail(apierr.From(err, otp.FallbackResend))
	}
	return navigation.Outcome{Event: navigation.Stay, Message: res.Message}
}

func (c *Controller) missing() navigation.Outcome {
	e := apierr.FlowContextMissing(MsgStartAgain)
	return navigation.Outcome{Event: navigation.RegistrationMissing, Message: e.Message, Err: e}
}

func (c *Controller) setPending(p *account.PendingRegistration) {
	c.lock.Lock()
	c.pending = p.Clone()
	c.lock.Unlock()
}
