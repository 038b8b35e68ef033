package recovery_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/fakeapi"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/otp"
	"github.com/jrsteele09/planora-client/recovery"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	api        *fakeapi.Server
	controller *recovery.Controller
	table      *navigation.Table
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := fakeapi.New(t)
	gw, err := gateway.New(api.BaseURL(), nil)
	require.NoError(t, err)
	h, err := otp.NewHandler(gw)
	require.NoError(t, err)
	c, err := recovery.NewController(h, gw)
	require.NoError(t, err)
	return &testFixture{api: api, controller: c, table: navigation.DefaultTable()}
}

func verified() *account.PasswordResetContext {
	return &account.PasswordResetContext{Email: "ada@example.com", OTPVerified: true}
}

func TestNewController_RequiresDependencies(t *testing.T) {
	_, err := recovery.NewController(nil, nil)
	require.Error(t, err)
}

func TestRequestReset(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRequestPasswordReset, http.StatusOK, `{"message":"Password reset OTP sent to your email."}`)

	out := f.controller.RequestReset(context.Background(), " ada@example.com ")

	require.Equal(t, navigation.ResetRequested, out.Event)
	require.Equal(t, "Password reset OTP sent to your email.", out.Message)
	d := f.table.NextScreen(out)
	require.Equal(t, navigation.RouteVerifyResetOTP, d.Route)
	require.Equal(t, "ada@example.com", d.Carry.Reset.Email)
	require.False(t, d.Carry.Reset.OTPVerified)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRequestPasswordReset, http.StatusNotFound, `{"message":"No account found with that email."}`)

	out := f.controller.RequestReset(context.Background(), "nobody@example.com")

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, apierr.KindNotFound, out.Err.Kind)
	require.Equal(t, "No account found with that email.", out.Message)
}

func TestRequestReset_EmptyEmail(t *testing.T) {
	f := setupTestFixture(t)

	out := f.controller.RequestReset(context.Background(), "   ")

	require.Equal(t, recovery.MsgEmailRequired, out.Message)
	require.Zero(t, f.api.Total())
}

func TestVerifyResetOTP(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyResetOTP, http.StatusOK, `{"message":"OTP verified successfully."}`)
	rc := &account.PasswordResetContext{Email: "ada@example.com"}

	out := f.controller.VerifyResetOTP(context.Background(), rc, "123456")

	require.Equal(t, navigation.ResetOTPVerified, out.Event)
	require.True(t, out.Reset.OTPVerified)
	d := f.table.NextScreen(out)
	require.Equal(t, navigation.RouteResetPassword, d.Route)
	require.Equal(t, "ada@example.com", d.Carry.Reset.Email)

	reqs := f.api.Requests(gateway.PathVerifyResetOTP)
	require.Len(t, reqs, 1)
	require.Equal(t, "ada@example.com", reqs[0].String("email"))
	require.Equal(t, "123456", reqs[0].String("otp"))
}

func TestVerifyResetOTP_EmptyCode(t *testing.T) {
	f := setupTestFixture(t)

	out := f.controller.VerifyResetOTP(context.Background(), &account.PasswordResetContext{Email: "ada@example.com"}, " ")

	require.Equal(t, otp.MsgCodeRequired, out.Message)
	require.Zero(t, f.api.Total())
}

func TestVerifyResetOTP_Rejected(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyResetOTP, http.StatusBadRequest, `{"message":"Invalid or expired OTP."}`)

	out := f.controller.VerifyResetOTP(context.Background(), &account.PasswordResetContext{Email: "ada@example.com"}, "000000")

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, "Invalid or expired OTP.", out.Message)
}

func TestMissingContextRedirectsToRequest(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	outcomes := []navigation.Outcome{
		f.controller.VerifyResetOTP(ctx, nil, "123456"),
		f.controller.ResendResetOTP(ctx, &account.PasswordResetContext{}),
		f.controller.CompleteReset(ctx, nil, "longpass1", "longpass1"),
		f.controller.CompleteReset(ctx, &account.PasswordResetContext{Email: "  ", OTPVerified: true}, "longpass1", "longpass1"),
	}
	for _, out := range outcomes {
		require.Equal(t, navigation.ResetContextMissing, out.Event)
		require.True(t, apierr.IsFlowContextMissing(out.Err))
		require.Equal(t, navigation.RouteForgotPassword, f.table.NextScreen(out).Route)
	}
	require.Zero(t, f.api.Total())
}

func TestCompleteReset_LocalRules(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name     string
		password string
		confirm  string
		sentinel error
		message  string
	}{
		{"empty", "", "longpass1", clienterrors.ErrRequiredField, recovery.MsgFillAllFields},
		{"too short", "abc", "abc", clienterrors.ErrPasswordTooShort, recovery.MsgPasswordShort},
		{"mismatch", "longpass1", "longpass2", clienterrors.ErrPasswordMismatch, recovery.MsgPasswordsDiffer},
		{"mismatch before length", "abc", "abd", clienterrors.ErrPasswordMismatch, recovery.MsgPasswordsDiffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.controller.CompleteReset(context.Background(), verified(), tt.password, tt.confirm)
			require.Equal(t, navigation.Stay, out.Event)
			require.ErrorIs(t, out.Err, tt.sentinel)
			require.Equal(t, tt.message, out.Message)
		})
	}
	require.Zero(t, f.api.Total())
}

func TestCompleteReset_IssuesOneCall(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathResetPassword, http.StatusOK, `{"message":"Password reset successful."}`)

	out := f.controller.CompleteReset(context.Background(), verified(), "longpass1", "longpass1")

	require.Equal(t, navigation.ResetCompleted, out.Event)
	require.Equal(t, "Password reset successful.", out.Message)
	d := f.table.NextScreen(out)
	require.Equal(t, navigation.RouteLogin, d.Route)
	require.Equal(t, "ada@example.com", d.Carry.Email)

	reqs := f.api.Requests(gateway.PathResetPassword)
	require.Len(t, reqs, 1)
	require.Equal(t, "ada@example.com", reqs[0].String("email"))
	require.Equal(t, "longpass1", reqs[0].String("new_password"))
	require.Equal(t, 1, f.api.Total())
}

func TestCompleteReset_Fallback(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathResetPassword, http.StatusInternalServerError, ``)

	out := f.controller.CompleteReset(context.Background(), verified(), "longpass1", "longpass1")

	require.Equal(t, recovery.FallbackReset, out.Message)
	require.Equal(t, apierr.KindServer, out.Err.Kind)
}

func TestResendResetOTP_TwiceIsTwoRequests(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRequestPasswordReset, http.StatusOK, `{"message":"Password reset OTP sent to your email."}`)
	rc := &account.PasswordResetContext{Email: "ada@example.com"}

	f.controller.ResendResetOTP(context.Background(), rc)
	out := f.controller.ResendResetOTP(context.Background(), rc)

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, 2, f.api.Count(gateway.PathRequestPasswordReset))
}
