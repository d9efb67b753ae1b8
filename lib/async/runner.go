// Package async provides the single-flight repeating scheduler backing the
// panel's polling views.
package async

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wealthocean/tradepanel/errs"
)

// Task represents the unit of work executed on every scheduler run. The
// task must honour ctx cancellation; a cancelled run is expected to return
// promptly and leave no state behind.
type Task func(ctx context.Context) error

// Option configures a Runner.
type Option func(*Runner)

// WithVisibility gates scheduled ticks behind the provided predicate.
// Hidden views skip ticks entirely; explicit RunNow calls are not gated.
func WithVisibility(visible func() bool) Option {
	return func(r *Runner) {
		r.visible = visible
	}
}

// Runner executes a task on a fixed cadence with single-flight semantics:
// at most one run is in flight, a tick arriving mid-run is dropped (not
// queued), and RunNow cancels-and-replaces the current run.
type Runner struct {
	interval time.Duration
	task     Task
	visible  func() bool

	ctx      context.Context
	cancel   context.CancelFunc
	requests chan struct{}
	busy     atomic.Bool
	wg       sync.WaitGroup

	mu        sync.Mutex
	cancelRun context.CancelFunc
	started   bool

	stopOnce sync.Once
}

// NewRunner creates a scheduler running task every interval once started.
func NewRunner(interval time.Duration, task Task, opts ...Option) (*Runner, error) {
	if interval <= 0 {
		return nil, errs.New("lib/async", errs.CodeInvalid, errs.WithMessage("interval must be >0"))
	}
	if task == nil {
		return nil, errs.New("lib/async", errs.CodeInvalid, errs.WithMessage("task must not be nil"))
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		interval: interval,
		task:     task,
		visible:  nil,
		ctx:      ctx,
		cancel:   cancel,
		requests: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.wg.Add(1)
	go r.worker()
	return r, nil
}

// Start begins the recurring tick loop. Starting twice is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.Trigger()
			}
		}
	}()
}

// Trigger requests one run. The request is dropped when a run is already in
// flight or the visibility gate reports hidden. Reports whether the run was
// accepted.
func (r *Runner) Trigger() bool {
	if r.ctx.Err() != nil {
		return false
	}
	if r.visible != nil && !r.visible() {
		return false
	}
	select {
	case r.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// RunNow cancels any in-flight run and schedules a fresh one. The
// replacement run starts as soon as the cancelled run drains.
func (r *Runner) RunNow() {
	if r.ctx.Err() != nil {
		return
	}
	r.mu.Lock()
	if r.cancelRun != nil {
		r.cancelRun()
	}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		select {
		case r.requests <- struct{}{}:
		case <-r.ctx.Done():
		}
	}()
}

// Busy reports whether a run is currently in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Stop cancels the tick loop and any in-flight run, then waits for all
// scheduler goroutines to drain. The runner cannot be restarted.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.requests:
			runCtx, cancelRun := context.WithCancel(r.ctx)
			r.mu.Lock()
			r.cancelRun = cancelRun
			r.mu.Unlock()

			r.busy.Store(true)
			_ = r.task(runCtx)
			r.busy.Store(false)

			r.mu.Lock()
			r.cancelRun = nil
			r.mu.Unlock()
			cancelRun()
		}
	}
}
