// Package dashboard is the authenticated side of the client: the calls the
// dashboard makes once a session exists.
package dashboard

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

const (
	MsgGoalRequired  = "Please enter a goal."
	FallbackProfile  = "Unable to load your profile."
	FallbackTasks    = "Unable to load tasks."
	FallbackEvents   = "Unable to load events."
	FallbackRoadmaps = "Unable to load roadmaps."
	FallbackCreate   = "Unable to create roadmap."
)

// TaskStatus is the progress of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type Task struct {
	ID          int        `json:"id"`
	User        int        `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     string     `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Event is a scheduler entry.
type Event struct {
	ID          int       `json:"id"`
	User        int       `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsCompleted bool      `json:"is_completed"`
	LinkedTask  *int      `json:"linked_task"`
}

type RoadmapStep struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
	ResourceLink string `json:"resource_link,omitempty"`
	IsCompleted  bool   `json:"is_completed"`
}

// Roadmap is a learning plan towards Goal.
type Roadmap struct {
	ID        int           `json:"id"`
	User      int           `json:"user"`
	Title     string        `json:"title"`
	Goal      string        `json:"goal"`
	CreatedAt time.Time     `json:"created_at"`
	Steps     []RoadmapStep `json:"steps"`
}

// API is the part of the request gateway the client needs.
type API interface {
	Send(ctx context.Context, req gateway.Request, out any) (int, error)
}

var _ API = (*gateway.Client)(nil)

// Client fetches dashboard data for the stored session.
type Client struct {
	api    API
	logger zerolog.Logger
}

// Option modifies a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a dashboard Client.
func NewClient(api API, options ...Option) (*Client, error) {
	if api == nil {
		return nil, errors.New("[dashboard.NewClient] api is required")
	}
	c := &Client{api: api, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Profile returns the logged in user.
func (c *Client) Profile(ctx context.Context) (*account.Profile, error) {
	var p account.Profile
	if err := c.get(ctx, gateway.PathProfile, &p, FallbackProfile); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.get(ctx, gateway.PathTasks, &tasks, FallbackTasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, gateway.PathEvents, &events, FallbackEvents); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) Roadmaps(ctx context.Context) ([]Roadmap, error) {
	var roadmaps []Roadmap
	if err := c.get(ctx, gateway.PathRoadmaps, &roadmaps, FallbackRoadmaps); err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// CreateRoadmap creates a roadmap titled after goal.
func (c *Client) CreateRoadmap(ctx context.Context, goal string) (*Roadmap, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, apierr.Local(clienterrors.ErrRequiredField, MsgGoalRequired)
	}
	var r Roadmap
	_, err := c.api.Send(ctx, gateway.Request{
		Method:       http.MethodPost,
		Path:         gateway.PathCreateRoadmap,
		Body:         map[string]string{"title": goal, "goal": goal},
		ExpectStatus: http.StatusCreated,
		Fallback:     FallbackCreate,
	}, &r)
	if err != nil {
		return nil, c.failed(gateway.PathCreateRoadmap, err, FallbackCreate)
	}
	c.logger.Info().Int("roadmap_id", r.ID).Msg("roadmap created")
	return &r, nil
}

func (c *Client) get(ctx context.Context, path string, out any, fallback string) error {
	_, err := c.api.Send(ctx, gateway.Request{Method: http.MethodGet, Path: path, Fallback: fallback}, out)
	if err != nil {
		return c.failed(path, err, fallback)
	}
	return nil
}

func (c *Client) failed(path string, err error, fallback string) *apierr.Error {
	e := apierr.From(err, fallback)
	c.logger.Info().Str("path", path).Str("kind", string(e.Kind)).Int("status", e.Status).Msg("dashboard call failed")
	return e
}
