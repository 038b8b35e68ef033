package otp_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/fakeapi"
	"github.com/jrsteele09/planora-client/otp"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	api     *fakeapi.Server
	handler *otp.Handler
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := fakeapi.New(t)
	gw, err := gateway.New(api.BaseURL(), nil)
	require.NoError(t, err)
	h, err := otp.NewHandler(gw, otp.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return &testFixture{api: api, handler: h}
}

func pending() *account.PendingRegistration {
	return &account.PendingRegistration{
		Username:    "ada",
		Email:       "ada@example.com",
		Password:    "s3cretpass",
		FullName:    "Ada Lovelace",
		DateOfBirth: "1990-12-10",
		Phone:       "+441234567890",
	}
}

func TestNewHandler_RequiresAPI(t *testing.T) {
	_, err := otp.NewHandler(nil)
	require.Error(t, err)
}

func TestIssue_Registration(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRegister, http.StatusOK, `{"message":"OTP sent successfully to email"}`)

	res, err := f.handler.Issue(context.Background(), "ada@example.com", account.PurposeRegistration, pending())

	require.NoError(t, err)
	require.Equal(t, "OTP sent successfully to email", res.Message)
	require.Equal(t, account.ChallengeAwaiting, res.Challenge.State)
	require.Equal(t, fixedNow, res.Challenge.IssuedAt)
	reqs := f.api.Requests(gateway.PathRegister)
	require.Len(t, reqs, 1)
	require.Equal(t, "ada", reqs[0].String("username"))
	require.Equal(t, "1990-12-10", reqs[0].String("dob"))
}

func TestIssue_PasswordReset(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRequestPasswordReset, http.StatusOK, `{"message":"OTP sent"}`)

	_, err := f.handler.Issue(context.Background(), " ada@example.com ", account.PurposePasswordReset, nil)

	require.NoError(t, err)
	reqs := f.api.Requests(gateway.PathRequestPasswordReset)
	require.Len(t, reqs, 1)
	require.Equal(t, "ada@example.com", reqs[0].String("email"))
}

func TestIssue_LocalChecks(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.handler.Issue(context.Background(), "  ", account.PurposePasswordReset, nil)
	require.ErrorIs(t, err, clienterrors.ErrRequiredField)

	_, err = f.handler.Issue(context.Background(), "a@b.com", account.PurposeRegistration, nil)
	require.ErrorIs(t, err, clienterrors.ErrMissingPayload)

	_, err = f.handler.Issue(context.Background(), "a@b.com", account.Purpose("signup"), nil)
	require.ErrorIs(t, err, clienterrors.ErrUnsupportedPurpose)

	require.Zero(t, f.api.Total())
}

func TestVerify_IncompleteCodeMakesNoCall(t *testing.T) {
	f := setupTestFixture(t)

	for _, code := range []string{"", "12345", "12a456", "1234567"} {
		_, err := f.handler.Verify(context.Background(), "ada@example.com", code, account.PurposeRegistration, pending())
		e := apierr.From(err, "")
		require.NotNil(t, e, code)
		require.True(t, e.Local, code)
		require.ErrorIs(t, err, clienterrors.ErrIncompleteOTP, code)
	}
	require.Zero(t, f.api.Total())
}

func TestVerify_RegistrationSendsFullPayload(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyOTP, http.StatusCreated, `{"message":"Registration successful!"}`)

	res, err := f.handler.Verify(context.Background(), "ada@example.com", "123456", account.PurposeRegistration, pending())

	require.NoError(t, err)
	require.Equal(t, account.ChallengeVerified, res.Challenge.State)
	require.Equal(t, "Registration successful!", res.Message)

	reqs := f.api.Requests(gateway.PathVerifyOTP)
	require.Len(t, reqs, 1)
	body := reqs[0]
	require.Equal(t, "123456", body.String("otp"))
	require.Equal(t, "ada", body.String("username"))
	require.Equal(t, "ada@example.com", body.String("email"))
	require.Equal(t, "s3cretpass", body.String("password"))
	require.Equal(t, "Ada Lovelace", body.String("full_name"))
	require.Equal(t, "1990-12-10", body.String("dob"))
	require.Equal(t, "+441234567890", body.String("phone"))
}

func TestVerify_RegistrationRequiresCreated(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyOTP, http.StatusOK, `{"message":"Registration successful!"}`)

	res, err := f.handler.Verify(context.Background(), "ada@example.com", "123456", account.PurposeRegistration, pending())

	require.Error(t, err)
	require.Equal(t, account.ChallengeRejected, res.Challenge.State)
	require.Equal(t, http.StatusOK, res.Status)
}

func TestVerify_ServerRejection(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyOTP, http.StatusBadRequest, `{"error":"OTP has expired"}`)

	_, err := f.handler.Verify(context.Background(), "ada@example.com", "123456", account.PurposeRegistration, pending())

	e := apierr.From(err, "")
	require.Equal(t, apierr.KindValidation, e.Kind)
	require.Equal(t, "OTP has expired", e.Message)
}

func TestVerify_FallbackMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathVerifyResetOTP, http.StatusBadRequest, `{}`)

	_, err := f.handler.Verify(context.Background(), "ada@example.com", "654321", account.PurposePasswordReset, nil)

	e := apierr.From(err, "")
	require.Equal(t, otp.FallbackVerifyReset, e.Message)
	reqs := f.api.Requests(gateway.PathVerifyResetOTP)
	require.Len(t, reqs, 1)
	require.Equal(t, "654321", reqs[0].String("otp"))
	require.Empty(t, reqs[0].String("username"))
}

func TestResend_EachCallIsARequest(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathResendOTP, http.StatusOK, `{"message":"OTP resent"}`)

	for i := 0; i < 2; i++ {
		res, err := f.handler.Resend(context.Background(), "ada@example.com", account.PurposeRegistration)
		require.NoError(t, err)
		require.Equal(t, "OTP resent", res.Message)
	}
	require.Equal(t, 2, f.api.Count(gateway.PathResendOTP))
}

func TestResend_PasswordResetReissues(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRequestPasswordReset, http.StatusOK, `{"message":"OTP sent"}`)

	_, err := f.handler.Resend(context.Background(), "ada@example.com", account.PurposePasswordReset)

	require.NoError(t, err)
	require.Equal(t, 1, f.api.Count(gateway.PathRequestPasswordReset))
}

func TestDigits(t *testing.T) {
	var d otp.Digits
	require.False(t, d.Filled())

	for i, r := range "12345" {
		require.NoError(t, d.Set(i, r))
	}
	require.False(t, d.Filled())
	require.Error(t, d.Set(5, 'x'))
	require.Error(t, d.Set(6, '1'))
	require.NoError(t, d.Set(5, '6'))
	require.True(t, d.Filled())
	require.Equal(t, "123456", d.Code())

	d.Clear(2)
	require.False(t, d.Filled())
	require.Equal(t, "12456", d.Code())

	d.Paste("98-76 54 3")
	require.True(t, d.Filled())
	require.Equal(t, "987654", d.Code())

	d.Paste("12")
	require.False(t, d.Filled())
	require.Equal(t, "12", d.Code())
}

func TestValidCode(t *testing.T) {
	require.True(t, otp.ValidCode("000000"))
	require.False(t, otp.ValidCode("00000"))
	require.False(t, otp.ValidCode("٠١٢٣٤٥"))
	require.False(t, otp.ValidCode("12 456"))
}
