package navigation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	timerPending int32 = iota
	timerFired
	timerCanceled
)

// CancelFunc stops a scheduled navigation. It reports whether the navigation
// was prevented; once it returns, the fire callback will not start.
type CancelFunc func() bool

// Scheduler runs one timer per navigation decision.
type Scheduler struct {
	logger zerolog.Logger

	lock    sync.Mutex
	pending map[uint64]CancelFunc
	nextID  uint64
}

// SchedulerOption modifies a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		logger:  zerolog.Nop(),
		pending: make(map[uint64]CancelFunc),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Schedule calls fire with d after d.Delay on its own goroutine. Decisions
// that do not navigate never fire.
func (s *Scheduler) Schedule(d Decision, fire func(Decision)) CancelFunc {
	if !d.Navigate || fire == nil {
		return func() bool { return false }
	}

	var state atomic.Int32
	s.lock.Lock()
	id := s.nextID
	s.nextID++
	s.lock.Unlock()

	timer := time.AfterFunc(d.Delay, func() {
		if !state.CompareAndSwap(timerPending, timerFired) {
			return
		}
		s.forget(id)
		s.logger.Debug().Str("route", string(d.Route)).Msg("navigating")
		fire(d)
	})

	cancel := func() bool {
		if !state.CompareAndSwap(timerPending, timerCanceled) {
			return false
		}
		timer.Stop()
		s.forget(id)
		s.logger.Debug().Str("route", string(d.Route)).Msg("navigation canceled")
		return true
	}

	s.lock.Lock()
	if state.Load() == timerPending {
		s.pending[id] = cancel
	}
	s.lock.Unlock()
	return cancel
}

// Pending returns the number of navigations that have neither fired nor
// been canceled.
func (s *Scheduler) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.pending)
}

// CancelAll cancels every pending navigation, as when the screen that
// scheduled them is torn down.
func (s *Scheduler) CancelAll() {
	s.lock.Lock()
	cancels := make([]CancelFunc, 0, len(s.pending))
	for _, c := range s.pending {
		cancels = append(cancels, c)
	}
	s.lock.Unlock()

	for _, c := range cancels {
		c()
	}
}

func (s *Scheduler) forget(id uint64) {
	s.lock.Lock()
	delete(s.pending, id)
	s.lock.Unlock()
}
