package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher runs fire-and-forget side effects (persistence flushes,
// PDF/email hand-off) on a bounded worker pool so a slow collaborator
// never stalls the socket handlers. Each task gets its own timeout;
// failures are logged, never surfaced to the relay.
type Dispatcher struct {
	tasks   chan task
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

func NewDispatcher(workers, queue int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 256
	}
	d := &Dispatcher{
		tasks:   make(chan task, queue),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for t := range d.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := t.fn(ctx); err != nil {
			log.Error().Err(err).Str("module", "app.dispatch").Str("task", t.name).Msg("background task failed")
		}
		cancel()
	}
}

// Go enqueues a task without blocking. When the queue is saturated the
// task is dropped and logged; the relay's event loop takes priority
// over side effects.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	select {
	case d.tasks <- task{name: name, fn: fn}:
	default:
		log.Error().Str("module", "app.dispatch").Str("task", name).Msg("dispatcher saturated, task dropped")
	}
}

// Close stops intake and waits for in-flight tasks to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.tasks) })
	d.wg.Wait()
}
