package orderbook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/session"
	"github.com/wealthocean/tradepanel/internal/telemetry"
	"github.com/wealthocean/tradepanel/lib/async"
)

const defaultPollInterval = 3 * time.Second

// Fetcher fetches the bucketed order book. *rest.Client satisfies it.
type Fetcher interface {
	Orders(ctx context.Context) (schema.OrderBook, error)
}

// Synchronizer keeps a local snapshot of the backend order book fresh via
// single-flight polling with change suppression. It owns the snapshot
// exclusively; readers receive clones.
type Synchronizer struct {
	fetch    Fetcher
	store    session.Store
	interval time.Duration
	visible  func() bool
	logger   observability.Logger
	metrics  *telemetry.Metrics

	onUpdate      func(schema.OrderBook)
	onAuthExpired func()

	runner *async.Runner

	mu          sync.RWMutex
	snapshot    schema.OrderBook
	fingerprint string

	terminated atomic.Bool
	authOnce   sync.Once
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithInterval overrides the poll cadence.
func WithInterval(d time.Duration) SyncOption {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithVisibility gates polling ticks behind the predicate; hidden views
// skip ticks without rescheduling.
func WithVisibility(visible func() bool) SyncOption {
	return func(s *Synchronizer) {
		s.visible = visible
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger observability.Logger) SyncOption {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches the panel metric instruments.
func WithMetrics(m *telemetry.Metrics) SyncOption {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// WithOnUpdate registers the callback invoked with a fresh snapshot after
// every applied (non-suppressed) refresh.
func WithOnUpdate(fn func(schema.OrderBook)) SyncOption {
	return func(s *Synchronizer) {
		s.onUpdate = fn
	}
}

// WithOnAuthExpired registers the redirect signal fired exactly once when
// the backend rejects the session token.
func WithOnAuthExpired(fn func()) SyncOption {
	return func(s *Synchronizer) {
		s.onAuthExpired = fn
	}
}

// NewSynchronizer builds a synchronizer over fetch using store for the
// 401-handling path.
func NewSynchronizer(fetch Fetcher, store session.Store, opts ...SyncOption) (*Synchronizer, error) {
	if fetch == nil {
		return nil, errs.New("orderbook/sync", errs.CodeInvalid, errs.WithMessage("fetcher required"))
	}
	if store == nil {
		return nil, errs.New("orderbook/sync", errs.CodeInvalid, errs.WithMessage("session store required"))
	}
	s := &Synchronizer{
		fetch:    fetch,
		store:    store,
		interval: defaultPollInterval,
		visible:  nil,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	runnerOpts := []async.Option{}
	if s.visible != nil {
		runnerOpts = append(runnerOpts, async.WithVisibility(s.visible))
	}
	runner, err := async.NewRunner(s.interval, s.refresh, runnerOpts...)
	if err != nil {
		return nil, err
	}
	s.runner = runner
	return s, nil
}

// Start begins polling on the configured interval.
func (s *Synchronizer) Start() {
	s.runner.Start()
}

// RefreshNow forces an immediate refresh, cancelling any in-flight poll.
func (s *Synchronizer) RefreshNow() {
	s.runner.RunNow()
}

// Stop cancels the poll timer and any in-flight request and waits for them
// to drain. No state is mutated after Stop returns.
func (s *Synchronizer) Stop() {
	s.runner.Stop()
}

// Snapshot returns a clone of the last applied order book.
func (s *Synchronizer) Snapshot() schema.OrderBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBook(s.snapshot)
}

// Terminated reports whether the session was invalidated by a 401.
func (s *Synchronizer) Terminated() bool {
	return s.terminated.Load()
}

func (s *Synchronizer) refresh(ctx context.Context) error {
	if s.terminated.Load() {
		return nil
	}

	start := time.Now()
	book, err := s.fetch.Orders(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			// cancelled by a newer refresh or teardown: settle silently
			return nil
		}
		if errs.IsAuth(err) {
			s.expireSession()
			return err
		}
		s.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		s.logger.Error("order book poll failed", observability.F("err", err))
		return err
	}

	// A response settling after cancellation must not touch state.
	if ctx.Err() != nil {
		return nil
	}

	fp, err := Fingerprint(book)
	if err != nil {
		s.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		return err
	}

	s.mu.Lock()
	if fp == s.fingerprint {
		s.mu.Unlock()
		s.metrics.RecordPoll(ctx, telemetry.PollSuppressed, elapsed)
		return nil
	}
	s.snapshot = cloneBook(book)
	s.fingerprint = fp
	s.mu.Unlock()

	s.metrics.RecordPoll(ctx, telemetry.PollApplied, elapsed)
	if s.onUpdate != nil {
		s.onUpdate(cloneBook(book))
	}
	return nil
}

// expireSession clears the stored token and fires the redirect signal
// exactly once; the session is terminal afterwards and refreshes no-op.
func (s *Synchronizer) expireSession() {
	s.authOnce.Do(func() {
		s.terminated.Store(true)
		if err := s.store.Clear(); err != nil {
			s.logger.Error("clear session token", observability.F("err", err))
		}
		s.logger.Info("session expired, redirecting to login")
		if s.onAuthExpired != nil {
			s.onAuthExpired()
		}
	})
}
