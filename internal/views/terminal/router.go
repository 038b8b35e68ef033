package terminal

import (
	"context"
	"io"

	"github.com/jrsteele09/planora-client/navigation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Router shows screens and follows the navigation decision of every
// outcome. Context handed over by a decision lives only as long as the
// router does.
type Router struct {
	prompter  *Prompter
	table     *navigation.Table
	scheduler *navigation.Scheduler
	screens   map[navigation.Route]Screen
	logger    zerolog.Logger
}

// RouterOption modifies a Router.
type RouterOption func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router over screens.
func NewRouter(p *Prompter, table *navigation.Table, scheduler *navigation.Scheduler, screens []Screen, options ...RouterOption) (*Router, error) {
	if p == nil || table == nil || scheduler == nil {
		return nil, errors.New("[terminal.NewRouter] prompter, table and scheduler are required")
	}
	r := &Router{
		prompter:  p,
		table:     table,
		scheduler: scheduler,
		screens:   make(map[navigation.Route]Screen, len(screens)),
		logger:    zerolog.Nop(),
	}
	for _, s := range screens {
		r.screens[s.Route()] = s
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Run shows start with carry and keeps going until a screen quits, input
// ends or ctx is done.
func (r *Router) Run(ctx context.Context, start navigation.Route, carry navigation.Carry) error {
	route := start
	for {
		screen, ok := r.screens[route]
		if !ok {
			return errors.Errorf("[Router.Run] no screen for %s", route)
		}
		r.logger.Debug().Str("route", string(route)).Msg("showing screen")

		step, err := screen.Show(ctx, r.prompter, carry)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "[Router.Run] %s", route)
		}
		if step.Quit {
			return nil
		}
		if step.Link != "" {
			route, carry = step.Link, navigation.Carry{}
			continue
		}

		r.report(step.Outcome)
		decision := r.table.NextScreen(step.Outcome)
		if !decision.Navigate {
			continue
		}
		if decision, err = r.wait(ctx, decision); err != nil {
			return err
		}
		route, carry = decision.Route, decision.Carry
	}
}

// wait holds the current screen until the decision's delay has passed.
// Leaving early cancels the pending navigation.
func (r *Router) wait(ctx context.Context, d navigation.Decision) (navigation.Decision, error) {
	if d.Delay > 0 {
		r.prompter.Muted("Redirecting...")
	}
	fired := make(chan navigation.Decision, 1)
	cancel := r.scheduler.Schedule(d, func(d navigation.Decision) {
		fired <- d
	})
	select {
	case d = <-fired:
		return d, nil
	case <-ctx.Done():
		cancel()
		return d, ctx.Err()
	}
}

func (r *Router) report(o navigation.Outcome) {
	if o.Message == "" {
		return
	}
	if o.Failed() {
		r.prompter.Failure(o.Message)
		return
	}
	r.prompter.Success(o.Message)
}
