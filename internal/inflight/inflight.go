// Package inflight provides the per-form submission guard.
package inflight

import (
	"sync/atomic"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
)

// Guard admits one submission at a time. The zero value is ready to use.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire claims the guard, failing with ErrSubmissionInFlight while
// another submission holds it.
func (g *Guard) TryAcquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return clienterrors.ErrSubmissionInFlight
	}
	return nil
}

// Release frees the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a submission is outstanding.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
