package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/dashboard"
	"github.com/jrsteele09/planora-client/internal/utils"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/otp"
)

const (
	resendCommand = "r"
	backCommand   = "q"
)

// Step is what a screen hands back to the router.
type Step struct {
	Outcome navigation.Outcome
	Link    navigation.Route // Followed immediately when set, with no carried context
	Quit    bool
}

// Screen is one view bound to a route.
type Screen interface {
	Route() navigation.Route
	Show(ctx context.Context, p *Prompter, carry navigation.Carry) (Step, error)
}

type Registration interface {
	Submit(ctx context.Context, form account.PendingRegistration) navigation.Outcome
	Verify(ctx context.Context, pending *account.PendingRegistration, code string) navigation.Outcome
	Resend(ctx context.Context, pending *account.PendingRegistration) navigation.Outcome
}

type Login interface {
	Submit(ctx context.Context, identifier, password string, rememberMe bool) navigation.Outcome
	Logout(ctx context.Context) navigation.Outcome
}

type Recovery interface {
	RequestReset(ctx context.Context, email string) navigation.Outcome
	VerifyResetOTP(ctx context.Context, rc *account.PasswordResetContext, code string) navigation.Outcome
	ResendResetOTP(ctx context.Context, rc *account.PasswordResetContext) navigation.Outcome
	CompleteReset(ctx context.Context, rc *account.PasswordResetContext, newPassword, confirmPassword string) navigation.Outcome
}

type Dashboard interface {
	Profile(ctx context.Context) (*account.Profile, error)
	Tasks(ctx context.Context) ([]dashboard.Task, error)
	Events(ctx context.Context) ([]dashboard.Event, error)
	Roadmaps(ctx context.Context) ([]dashboard.Roadmap, error)
	CreateRoadmap(ctx context.Context, goal string) (*dashboard.Roadmap, error)
}

// Deps are the controllers the screens drive.
type Deps struct {
	Registration Registration
	Login        Login
	Recovery     Recovery
	Dashboard    Dashboard
	RememberMe   *bool // Skips the remember-me question when set
}

// Screens returns one screen per route.
func Screens(d Deps) []Screen {
	return []Screen{
		landingScreen{},
		registerScreen{reg: d.Registration},
		verifyOTPScreen{reg: d.Registration},
		loginScreen{login: d.Login, remember: d.RememberMe},
		forgotPasswordScreen{rec: d.Recovery},
		verifyResetOTPScreen{rec: d.Recovery},
		resetPasswordScreen{rec: d.Recovery},
		dashboardScreen{dash: d.Dashboard, login: d.Login},
	}
}

type landingScreen struct{}

func (landingScreen) Route() navigation.Route { return navigation.RouteLanding }

func (landingScreen) Show(_ context.Context, p *Prompter, _ navigation.Carry) (Step, error) {
	p.Title("Planora")
	links := []navigation.Route{navigation.RouteLogin, navigation.RouteRegister, navigation.RouteForgotPassword}
	i, err := p.Choose("What would you like to do?", []string{"Log in", "Create an account", "Forgot password", "Quit"})
	if err != nil {
		return Step{}, err
	}
	if i == len(links) {
		return Step{Quit: true}, nil
	}
	return Step{Link: links[i]}, nil
}

type registerScreen struct {
	reg Registration
}

func (registerScreen) Route() navigation.Route { return navigation.RouteRegister }

func (s registerScreen) Show(ctx context.Context, p *Prompter, _ navigation.Carry) (Step, error) {
	p.Title("Register")
	p.Muted("Leave the username empty to go back.")

	var form account.PendingRegistration
	var err error
	if form.Username, err = p.Line("Username", ""); err != nil {
		return Step{}, err
	}
	if utils.Blank(form.Username) {
		return Step{Link: navigation.RouteLanding}, nil
	}
	if form.Email, err = p.Line("Email", ""); err != nil {
		return Step{}, err
	}
	if form.Password, err = p.Secret("Password"); err != nil {
		return Step{}, err
	}
	if form.FullName, err = p.Line("Full name", ""); err != nil {
		return Step{}, err
	}
	if form.DateOfBirth, err = p.Line("Date of birth (YYYY-MM-DD)", ""); err != nil {
		return Step{}, err
	}
	if form.Phone, err = p.Line("Phone number", ""); err != nil {
		return Step{}, err
	}
	return Step{Outcome: s.reg.Submit(ctx, form)}, nil
}

type verifyOTPScreen struct {
	reg Registration
}

func (verifyOTPScreen) Route() navigation.Route { return navigation.RouteVerifyOTP }

func (s verifyOTPScreen) Show(ctx context.Context, p *Prompter, carry navigation.Carry) (Step, error) {
	p.Title("Verify OTP")
	if carry.Registration == nil {
		return Step{Outcome: s.reg.Verify(ctx, nil, "")}, nil
	}
	p.Muted(fmt.Sprintf("A code was sent to %s. Enter %q to resend or %q to go back.", carry.Registration.Email, resendCommand, backCommand))
	code, err := p.Line("Code", "")
	if err != nil {
		return Step{}, err
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case resendCommand:
		return Step{Outcome: s.reg.Resend(ctx, carry.Registration)}, nil
	case backCommand:
		return Step{Link: navigation.RouteRegister}, nil
	}
	return Step{Outcome: s.reg.Verify(ctx, carry.Registration, normalizeCode(code))}, nil
}

type loginScreen struct {
	login    Login
	remember *bool
}

func (loginScreen) Route() navigation.Route { return navigation.RouteLogin }

func (s loginScreen) Show(ctx context.Context, p *Prompter, carry navigation.Carry) (Step, error) {
	p.Title("Login")
	p.Muted("Leave the username empty to go back.")

	identifier, err := p.Line("Username or email", carry.Email)
	if err != nil {
		return Step{}, err
	}
	if utils.Blank(identifier) {
		return Step{Link: navigation.RouteLanding}, nil
	}
	password, err := p.Secret("Password")
	if err != nil {
		return Step{}, err
	}
	remember := utils.Value(s.remember)
	if s.remember == nil {
		if remember, err = p.Confirm("Remember me", false); err != nil {
			return Step{}, err
		}
	}
	return Step{Outcome: s.login.Submit(ctx, identifier, password, remember)}, nil
}

type forgotPasswordScreen struct {
	rec Recovery
}

func (forgotPasswordScreen) Route() navigation.Route { return navigation.RouteForgotPassword }

func (s forgotPasswordScreen) Show(ctx context.Context, p *Prompter, _ navigation.Carry) (Step, error) {
	p.Title("Forgot Password")
	p.Muted(fmt.Sprintf("Enter your registered email and we'll send you a code. Enter %q to go back.", backCommand))
	email, err := p.Line("Email address", "")
	if err != nil {
		return Step{}, err
	}
	if strings.TrimSpace(email) == backCommand {
		return Step{Link: navigation.RouteLanding}, nil
	}
	return Step{Outcome: s.rec.RequestReset(ctx, email)}, nil
}

type verifyResetOTPScreen struct {
	rec Recovery
}

func (verifyResetOTPScreen) Route() navigation.Route { return navigation.RouteVerifyResetOTP }

func (s verifyResetOTPScreen) Show(ctx context.Context, p *Prompter, carry navigation.Carry) (Step, error) {
	p.Title("Verify Reset Code")
	if !carry.Reset.HasEmail() {
		return Step{Outcome: s.rec.VerifyResetOTP(ctx, carry.Reset, "")}, nil
	}
	p.Muted(fmt.Sprintf("A code was sent to %s. Enter %q to resend or %q to go back.", carry.Reset.Email, resendCommand, backCommand))
	code, err := p.Line("Code", "")
	if err != nil {
		return Step{}, err
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case resendCommand:
		return Step{Outcome: s.rec.ResendResetOTP(ctx, carry.Reset)}, nil
	case backCommand:
		return Step{Link: navigation.RouteForgotPassword}, nil
	}
	return Step{Outcome: s.rec.VerifyResetOTP(ctx, carry.Reset, normalizeCode(code))}, nil
}

type resetPasswordScreen struct {
	rec Recovery
}

func (resetPasswordScreen) Route() navigation.Route { return navigation.RouteResetPassword }

func (s resetPasswordScreen) Show(ctx context.Context, p *Prompter, carry navigation.Carry) (Step, error) {
	p.Title("Reset Password")
	if !carry.Reset.HasEmail() {
		return Step{Outcome: s.rec.CompleteReset(ctx, carry.Reset, "", "")}, nil
	}
	password, err := p.Secret("New password")
	if err != nil {
		return Step{}, err
	}
	confirm, err := p.Secret("Confirm password")
	if err != nil {
		return Step{}, err
	}
	return Step{Outcome: s.rec.CompleteReset(ctx, carry.Reset, password, confirm)}, nil
}

type dashboardScreen struct {
	dash  Dashboard
	login Login
}

func (dashboardScreen) Route() navigation.Route { return navigation.RouteDashboard }

func (s dashboardScreen) Show(ctx context.Context, p *Prompter, _ navigation.Carry) (Step, error) {
	p.Title("Dashboard")
	i, err := p.Choose("Choose a section:", []string{"Profile", "Tasks", "Schedule", "Roadmaps", "New roadmap", "Log out", "Quit"})
	if err != nil {
		return Step{}, err
	}
	switch i {
	case 0:
		return stay(PrintProfile(ctx, p, s.dash)), nil
	case 1:
		return stay(PrintTasks(ctx, p, s.dash)), nil
	case 2:
		return stay(PrintEvents(ctx, p, s.dash)), nil
	case 3:
		return stay(PrintRoadmaps(ctx, p, s.dash)), nil
	case 4:
		goal, err := p.Line("What do you want to achieve?", "")
		if err != nil {
			return Step{}, err
		}
		return stay(CreateRoadmap(ctx, p, s.dash, goal)), nil
	case 5:
		return Step{Outcome: s.login.Logout(ctx)}, nil
	}
	return Step{Quit: true}, nil
}

// normalizeCode keeps the digits of code when they fill every slot, so
// "123 456" and "123-456" are accepted. Anything else is passed on as
// typed and rejected by verification.
func normalizeCode(code string) string {
	digits := 0
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	var d otp.Digits
	d.Paste(code)
	if digits == otp.CodeLength && d.Filled() {
		return d.Code()
	}
	return strings.TrimSpace(code)
}

func stay(err error) Step {
	if err == nil {
		return Step{Outcome: navigation.Outcome{Event: navigation.Stay}}
	}
	e := apierr.From(err, err.Error())
	return Step{Outcome: navigation.Fail(e)}
}
