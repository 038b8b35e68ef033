// Package login exchanges credentials for a session and ends it again.
package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/forms"
	"github.com/jrsteele09/planora-client/internal/inflight"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/session"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	MsgFillAllFields = "Please fill in all fields."
	MsgInFlight      = "Please wait, your request is still being processed."
	MsgSucceeded     = "Login successful!"
	MsgLoggedOut     = "You have been logged out."
	MsgNotSaved      = "Login succeeded but the session could not be saved. Please try again."
	FallbackLogin    = "Invalid credentials"
	FallbackLogout   = "Unable to log out. Please try again."
)

// API is the part of the request gateway the controller needs.
type API interface {
	Send(ctx context.Context, req gateway.Request, out any) (int, error)
}

// Sessions is the part of the session store the controller writes to.
type Sessions interface {
	Save(ctx context.Context, creds account.Credentials, scope storage.Scope) error
	Clear(ctx context.Context) error
}

var _ Sessions = (*session.Store)(nil)

// Form is what the login screen submits.
type Form struct {
	Identifier string `json:"identifier" validate:"notblank"` // Username or email
	Password   string `json:"password" validate:"notblank"`
}

type loginResponse struct {
	account.Credentials
	Message string `json:"message"`
}

// Controller performs login and logout, the only two operations that write
// the session store.
type Controller struct {
	api      API
	sessions Sessions
	logger   zerolog.Logger
	guard    inflight.Guard
}

// ControllerOption modifies a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a login Controller.
func NewController(api API, sessions Sessions, options ...ControllerOption) (*Controller, error) {
	if api == nil {
		return nil, errors.New("[login.NewController] api is required")
	}
	if sessions == nil {
		return nil, errors.New("[login.NewController] session store is required")
	}
	c := &Controller{api: api, sessions: sessions, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Submit logs in with identifier (username or email) and password. On success
// the returned pair replaces any stored session, under the persistent scope
// when rememberMe is set and the ephemeral scope otherwise. A failed attempt
// leaves storage untouched.
func (c *Controller) Submit(ctx context.Context, identifier, password string, rememberMe bool) navigation.Outcome {
	if err := c.guard.TryAcquire(); err != nil {
		return navigation.Fail(apierr.Local(err, MsgInFlight))
	}
	defer c.guard.Release()

	form := Form{Identifier: strings.TrimSpace(identifier), Password: password}
	if !forms.Complete(form) {
		return navigation.Fail(apierr.Local(clienterrors.ErrRequiredField, MsgFillAllFields))
	}

	var out loginResponse
	status, err := c.api.Send(ctx, gateway.Request{
		Method:   http.MethodPost,
		Path:     gateway.PathLogin,
		Body:     form,
		Fallback: FallbackLogin,
	}, &out)
	if err != nil {
		e := apierr.From(err, FallbackLogin)
		c.logger.Info().Str("identifier", form.Identifier).Str("kind", string(e.Kind)).Int("status", status).Msg("login rejected")
		return navigation.Fail(e)
	}
	if !out.Complete() {
		c.logger.Warn().Str("identifier", form.Identifier).Int("status", status).Msg("login response missing tokens")
		return navigation.Fail(&apierr.Error{
			Kind:    apierr.KindServer,
			Message: FallbackLogin,
			Status:  status,
			Cause:   errors.Wrap(clienterrors.ErrNoSession, "[Controller.Submit] incomplete token pair"),
		})
	}

	scope := storage.Ephemeral
	if rememberMe {
		scope = storage.Persistent
	}
	if err := c.sessions.Save(ctx, out.Credentials, scope); err != nil {
		c.logger.Error().Err(err).Str("identifier", form.Identifier).Msg("storing session failed")
		return navigation.Fail(&apierr.Error{Kind: apierr.KindServer, Message: MsgNotSaved, Status: status, Cause: err})
	}

	c.logger.Info().Str("identifier", form.Identifier).Str("scope", string(scope)).Msg("logged in")
	return navigation.Outcome{Event: navigation.LoginSucceeded, Message: MsgSucceeded}
}

// Logout removes the session from both scopes.
func (c *Controller) Logout(ctx context.Context) navigation.Outcome {
	if err := c.sessions.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("clearing session failed")
		return navigation.Fail(&apierr.Error{Kind: apierr.KindServer, Message: FallbackLogout, Cause: err})
	}
	c.logger.Info().Msg("logged out")
	return navigation.Outcome{Event: navigation.LoggedOut, Message: MsgLoggedOut}
}
