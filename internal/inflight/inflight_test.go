package inflight_test

import (
	"sync"
	"sync/atomic"
	"testing"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/inflight"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	var g inflight.Guard
	require.False(t, g.Busy())

	require.NoError(t, g.TryAcquire())
	require.True(t, g.Busy())
	require.ErrorIs(t, g.TryAcquire(), clienterrors.ErrSubmissionInFlight)

	g.Release()
	require.False(t, g.Busy())
	require.NoError(t, g.TryAcquire())
}

func TestGuard_OneWinner(t *testing.T) {
	var g inflight.Guard
	var won atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() == nil {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), won.Load())
}
