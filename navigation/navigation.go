// Package navigation maps flow outcomes onto the next screen. The table is
// pure; side effects (timers, rendering) live in Scheduler and the views.
package navigation

import (
	"time"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
)

// Route names a screen.
type Route string

const (
	RouteLanding        Route = "/"
	RouteRegister       Route = "/register"
	RouteVerifyOTP      Route = "/verify-otp"
	RouteLogin          Route = "/login"
	RouteDashboard      Route = "/dashboard"
	RouteForgotPassword Route = "/forgot-password"
	RouteVerifyResetOTP Route = "/verify-reset-otp"
	RouteResetPassword  Route = "/reset-password"
)

// Event is what a controller reports after handling an action.
type Event string

const (
	Stay                 Event = "stay"
	RegistrationOTPSent  Event = "registration_otp_sent"
	RegistrationVerified Event = "registration_verified"
	RegistrationMissing  Event = "registration_missing"
	LoginSucceeded       Event = "login_succeeded"
	ResetRequested       Event = "reset_requested"
	ResetOTPVerified     Event = "reset_otp_verified"
	ResetCompleted       Event = "reset_completed"
	ResetContextMissing  Event = "reset_context_missing"
	LoggedOut            Event = "logged_out"
)

// Outcome is the result of one controller action.
type Outcome struct {
	Event   Event
	Message string        // Text for the current screen (success or failure)
	Err     *apierr.Error // Set when the action failed

	// Context produced for the next screen
	Registration *account.PendingRegistration
	Reset        *account.PasswordResetContext
	Email        string
}

// Failed reports whether the action produced an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Fail builds a Stay outcome for err. Flow-context faults are not a Stay,
// callers build those with their own event.
func Fail(err *apierr.Error) Outcome {
	return Outcome{Event: Stay, Message: err.Message, Err: err}
}

// Carry is the context handed to the next screen.
type Carry struct {
	Registration *account.PendingRegistration
	Reset        *account.PasswordResetContext
	Email        string
}

// Decision is where to go next and how long to wait first.
type Decision struct {
	Navigate bool // False for Stay
	Route    Route
	Carry    Carry
	Delay    time.Duration
}

// Delays are the pauses that let success text render before moving on.
type Delays struct {
	AfterRegistration time.Duration
	AfterLogin        time.Duration
	AfterResetRequest time.Duration
	AfterResetVerify  time.Duration
	AfterReset        time.Duration
	MissingContext    time.Duration
}

// DefaultDelays returns the delays the web client uses.
func DefaultDelays() Delays {
	return Delays{
		AfterRegistration: 1500 * time.Millisecond,
		AfterLogin:        time.Second,
		AfterResetRequest: 1500 * time.Millisecond,
		AfterResetVerify:  1500 * time.Millisecond,
		AfterReset:        2 * time.Second,
		MissingContext:    2 * time.Second,
	}
}

type rule struct {
	route Route
	delay time.Duration
}

// Table is the transition table.
type Table struct {
	rules map[Event]rule
}

// NewTable builds the transition table with the given delays.
func NewTable(d Delays) *Table {
	return &Table{rules: map[Event]rule{
		RegistrationOTPSent:  {route: RouteVerifyOTP},
		RegistrationVerified: {route: RouteLogin, delay: d.AfterRegistration},
		RegistrationMissing:  {route: RouteRegister, delay: d.MissingContext},
		LoginSucceeded:       {route: RouteDashboard, delay: d.AfterLogin},
		ResetRequested:       {route: RouteVerifyResetOTP, delay: d.AfterResetRequest},
		ResetOTPVerified:     {route: RouteResetPassword, delay: d.AfterResetVerify},
		ResetCompleted:       {route: RouteLogin, delay: d.AfterReset},
		ResetContextMissing:  {route: RouteForgotPassword, delay: d.MissingContext},
		LoggedOut:            {route: RouteLogin},
	}}
}

// DefaultTable is NewTable(DefaultDelays()).
func DefaultTable() *Table {
	return NewTable(DefaultDelays())
}

// NextScreen returns the decision for o. Unknown events and Stay keep the
// current screen.
func (t *Table) NextScreen(o Outcome) Decision {
	r, ok := t.rules[o.Event]
	if !ok {
		return Decision{}
	}
	d := Decision{Navigate: true, Route: r.route, Delay: r.delay}

	switch o.Event {
	case RegistrationOTPSent:
		d.Carry.Registration = o.Registration.Clone()
	case RegistrationVerified, ResetCompleted:
		d.Carry.Email = o.Email
	case ResetRequested:
		if o.Reset != nil {
			rc := *o.Reset
			d.Carry.Reset = &rc
		}
	case ResetOTPVerified:
		if o.Reset != nil {
			d.Carry.Reset = o.Reset.Verified()
		}
	}
	return d
}
