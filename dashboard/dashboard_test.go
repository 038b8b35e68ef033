package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/planora-client/apierr"
	"github.com/jrsteele09/planora-client/dashboard"
	"github.com/jrsteele09/planora-client/gateway"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/fakeapi"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) AccessToken(context.Context) string { return string(s) }

type testFixture struct {
	api    *fakeapi.Server
	client *dashboard.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := fakeapi.New(t)
	gw, err := gateway.New(api.BaseURL(), staticTokens("acc-1"))
	require.NoError(t, err)
	c, err := dashboard.NewClient(gw)
	require.NoError(t, err)
	return &testFixture{api: api, client: c}
}

func TestNewClient_RequiresAPI(t *testing.T) {
	_, err := dashboard.NewClient(nil)
	require.Error(t, err)
}

func TestProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathProfile, http.StatusOK, `{"id":7,"username":"ada","email":"ada@example.com","is_active":true,"date_joined":"2026-01-02T03:04:05Z"}`)

	p, err := f.client.Profile(context.Background())

	require.NoError(t, err)
	require.Equal(t, 7, p.ID)
	require.Equal(t, "ada", p.Username)
	require.True(t, p.IsActive)
	require.Equal(t, "Bearer acc-1", f.api.Requests(gateway.PathProfile)[0].Authorization)
}

func TestProfile_Unauthorized(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathProfile, http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`)

	_, err := f.client.Profile(context.Background())

	require.ErrorIs(t, err, clienterrors.ErrUnauthorized)
	require.Equal(t, "Authentication credentials were not provided.", err.Error())
}

func TestTasksAndEvents(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathTasks, http.StatusOK, `[{"id":1,"user":7,"title":"Essay","status":"in_progress","due_date":"2026-03-02","created_at":"2026-03-01T10:00:00.123456Z","updated_at":"2026-03-01T10:00:00Z"}]`)
	f.api.Respond(gateway.PathEvents, http.StatusOK, `[{"id":3,"user":7,"title":"Lecture","start_time":"2026-03-01T09:00:00Z","end_time":"2026-03-01T10:00:00Z","linked_task":1}]`)

	tasks, err := f.client.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, dashboard.TaskInProgress, tasks[0].Status)
	require.Equal(t, "2026-03-02", tasks[0].DueDate)

	events, err := f.client.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 1, *events[0].LinkedTask)
	require.Equal(t, 9, events[0].StartTime.Hour())
}

func TestRoadmaps(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathRoadmaps, http.StatusOK, `[{"id":2,"title":"Go","goal":"Go","steps":[{"id":1,"title":"Tour","order":1}]}]`)

	roadmaps, err := f.client.Roadmaps(context.Background())

	require.NoError(t, err)
	require.Len(t, roadmaps, 1)
	require.Len(t, roadmaps[0].Steps, 1)
}

func TestCreateRoadmap(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathCreateRoadmap, http.StatusCreated, `{"id":9,"title":"Learn Go","goal":"Learn Go","steps":[]}`)

	r, err := f.client.CreateRoadmap(context.Background(), " Learn Go ")

	require.NoError(t, err)
	require.Equal(t, 9, r.ID)
	req := f.api.Requests(gateway.PathCreateRoadmap)[0]
	require.Equal(t, "Learn Go", req.String("title"))
	require.Equal(t, "Learn Go", req.String("goal"))
}

func TestCreateRoadmap_EmptyGoal(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.CreateRoadmap(context.Background(), "")

	require.ErrorIs(t, err, clienterrors.ErrRequiredField)
	require.Zero(t, f.api.Total())
}

func TestCreateRoadmap_ValidationErrors(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Respond(gateway.PathCreateRoadmap, http.StatusBadRequest, `{"title":["This field may not be blank."]}`)

	_, err := f.client.CreateRoadmap(context.Background(), "x")

	e := apierr.From(err, "")
	require.Equal(t, apierr.KindValidation, e.Kind)
	require.Equal(t, dashboard.FallbackCreate, e.Message)
}
