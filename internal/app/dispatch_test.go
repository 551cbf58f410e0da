package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsTasks(t *testing.T) {
	req := require.New(t)
	d := NewDispatcher(2, 16, time.Second)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Go("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Close()

	req.Equal(int32(5), ran.Load())
}

func TestDispatcher_CloseWaitsForInFlight(t *testing.T) {
	req := require.New(t)
	d := NewDispatcher(1, 16, time.Second)

	var done atomic.Bool
	d.Go("slow", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
		return nil
	})
	d.Close()

	req.True(done.Load())
}

func TestDispatcher_TaskErrorsDoNotPropagate(t *testing.T) {
	d := NewDispatcher(1, 16, time.Second)
	d.Go("failing", func(ctx context.Context) error {
		return errors.New("collaborator down")
	})
	// Logged, swallowed; Close must still return cleanly.
	d.Close()
}

func TestDispatcher_TaskSeesTimeout(t *testing.T) {
	req := require.New(t)
	d := NewDispatcher(1, 16, 10*time.Millisecond)

	deadline := make(chan bool, 1)
	d.Go("probe", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		deadline <- ok
		return nil
	})
	d.Close()

	req.True(<-deadline, "tasks must run under a bounded timeout")
}
