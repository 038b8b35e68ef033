package login_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/planora-client/account"
	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/fakeapi"
	"github.com/jrsteele09/planora-client/login"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/jrsteele09/planora-client/session"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/jrsteele09/planora-client/storage/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const tokenPair = `{"access":"acc-1","refresh":"ref-1","message":"Login successful","user":{"id":7,"username":"ada","email":"ada@example.com"}}`

type testFixture struct {
	api        *fakeapi.Server
	ephemeral  *memory.Store
	persistent *memory.Store
	sessions   *session.Store
	controller *login.Controller
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := fakeapi.New(t)
	eph, per := memory.New(), memory.New()
	kv, err := storage.NewScoped(eph, per)
	require.NoError(t, err)
	sessions, err := session.NewStore(kv)
	require.NoError(t, err)
	gw, err := gateway.New(api.BaseURL(), sessions)
	require.NoError(t, err)
	c, err := login.NewController(gw, sessions)
	require.NoError(t, err)
	return &testFixture{api: api, ephemeral: eph, persistent: per, sessions: sessions, controller: c}
}

func (f *testFixture) pairs() int {
	return (f.ephemeral.Len() + f.persistent.Len()) / 2
}

type brokenSessions struct{}

func (brokenSessions) Save(context.Context, account.Credentials, storage.Scope) error {
	return errors.New("disk full")
}

func (brokenSessions) Clear(context.Context) error {
	return errors.New("disk full")
}

func TestNewController_RequiresDependencies(t *testing.T) {
	_, err := login.NewController(nil, nil)
	require.Error(t, err)

	gw, err := gateway.New("http://127.0.0.1:1", nil)
	require.NoError(t, err)
	_, err = login.NewController(gw, nil)
	require.Error(t, err)
}

func TestSubmit_EphemeralWithoutRememberMe(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)

	out := f.controller.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, navigation.LoginSucceeded, out.Event)
	require.Equal(t, login.MsgSucceeded, out.Message)
	require.Equal(t, 2, f.ephemeral.Len())
	require.Zero(t, f.persistent.Len())
	require.Equal(t, 1, f.pairs())

	reqs := f.api.Requests(gateway.PathLogin)
	require.Len(t, reqs, 1)
	require.Equal(t, "ada", reqs[0].String("identifier"))
	require.Equal(t, "s3cretpass", reqs[0].String("password"))
}

func TestSubmit_PersistentWithRememberMe(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)

	out := f.controller.Submit(context.Background(), "ada@example.com", "s3cretpass", true)

	require.Equal(t, navigation.LoginSucceeded, out.Event)
	require.Zero(t, f.ephemeral.Len())
	require.Equal(t, 2, f.persistent.Len())

	sess, err := f.sessions.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "acc-1", sess.AccessToken)
	require.Equal(t, storage.Persistent, sess.Scope)
}

func TestSubmit_ReplacesPreviousSession(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)

	f.controller.Submit(context.Background(), "ada", "s3cretpass", true)
	f.controller.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, 1, f.pairs())
	require.Zero(t, f.persistent.Len())
}

func TestSubmit_FailureStoresNothing(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusBadRequest, `{"error":"Invalid credentials"}`)

	out := f.controller.Submit(context.Background(), "ada", "wrong", true)

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, "Invalid credentials", out.Message)
	require.Equal(t, apierr.KindValidation, out.Err.Kind)
	require.Zero(t, f.pairs())
	require.False(t, navigation.DefaultTable().NextScreen(out).Navigate)
}

func TestSubmit_InactiveAccount(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusForbidden, `{"error":"Account not active. Please verify your OTP first."}`)

	out := f.controller.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, apierr.KindUnauthorized, out.Err.Kind)
	require.Equal(t, "Account not active. Please verify your OTP first.", out.Message)
	require.Zero(t, f.pairs())
}

func TestSubmit_MissingTokenIsServerFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, `{"access":"acc-only"}`)

	out := f.controller.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, apierr.KindServer, out.Err.Kind)
	require.Zero(t, f.pairs())
}

func TestSubmit_EmptyFieldsMakeNoCall(t *testing.T) {
	f := setupTestFixture(t)

	for _, creds := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"ada", ""}} {
		out := f.controller.Submit(context.Background(), creds[0], creds[1], false)
		require.ErrorIs(t, out.Err, clienterrors.ErrRequiredField)
		require.Equal(t, login.MsgFillAllFields, out.Message)
	}
	require.Zero(t, f.api.Total())
}

func TestSubmit_NetworkFailure(t *testing.T) {
	eph, per := memory.New(), memory.New()
	kv, err := storage.NewScoped(eph, per)
	require.NoError(t, err)
	sessions, err := session.NewStore(kv)
	require.NoError(t, err)
	gw, err := gateway.New("http://127.0.0.1:1/api", sessions)
	require.NoError(t, err)
	c, err := login.NewController(gw, sessions)
	require.NoError(t, err)

	out := c.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, apierr.KindNetwork, out.Err.Kind)
	require.Equal(t, apierr.NetworkMessage, out.Message)
	require.Zero(t, eph.Len()+per.Len())
}

func TestLogout_ClearsBothScopes(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)
	f.controller.Submit(context.Background(), "ada", "s3cretpass", true)
	require.Equal(t, 1, f.pairs())

	out := f.controller.Logout(context.Background())

	require.Equal(t, navigation.LoggedOut, out.Event)
	require.Zero(t, f.pairs())
	require.Equal(t, navigation.RouteLogin, navigation.DefaultTable().NextScreen(out).Route)
}

func TestSubmit_AuthenticatesLaterCalls(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)
	f.api.Respond(gateway.PathProfile, http.StatusOK, `{"id":7,"username":"ada"}`)
	gw, err := gateway.New(f.api.BaseURL(), f.sessions)
	require.NoError(t, err)

	f.controller.Submit(context.Background(), "ada", "s3cretpass", false)
	_, err = gw.Get(context.Background(), gateway.PathProfile, nil, "")
	require.NoError(t, err)

	require.Empty(t, f.api.Requests(gateway.PathLogin)[0].Authorization)
	require.Equal(t, "Bearer acc-1", f.api.Requests(gateway.PathProfile)[0].Authorization)
}

func TestSubmit_StorageFailureIsNotReportedAsBadCredentials(t *testing.T) {
	api := fakeapi.New(t)
	api.Respond(gateway.PathLogin, http.StatusOK, tokenPair)
	gw, err := gateway.New(api.BaseURL(), nil)
	require.NoError(t, err)
	c, err := login.NewController(gw, brokenSessions{})
	require.NoError(t, err)

	out := c.Submit(context.Background(), "ada", "s3cretpass", false)

	require.Equal(t, navigation.Stay, out.Event)
	require.Equal(t, login.MsgNotSaved, out.Message)
	require.NotEqual(t, login.FallbackLogin, out.Message)

	out = c.Logout(context.Background())
	require.Equal(t, login.FallbackLogout, out.Message)
}
