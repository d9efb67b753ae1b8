// Package portfolio keeps the positions and holdings views fresh and
// coordinates the batch actions issued against them.
package portfolio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/telemetry"
	"github.com/wealthocean/tradepanel/lib/async"
)

const defaultRefreshInterval = 5 * time.Second

// Source fetches the portfolio views. *rest.Client satisfies it.
type Source interface {
	Positions(ctx context.Context) (schema.PositionBook, error)
	Holdings(ctx context.Context) (schema.HoldingsReport, error)
}

// ViewOption configures a polling view.
type ViewOption func(*viewConfig)

type viewConfig struct {
	interval time.Duration
	visible  func() bool
	logger   observability.Logger
	metrics  *telemetry.Metrics
}

// WithRefreshInterval overrides the poll cadence.
func WithRefreshInterval(d time.Duration) ViewOption {
	return func(c *viewConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithViewVisibility gates scheduled ticks behind the predicate.
func WithViewVisibility(visible func() bool) ViewOption {
	return func(c *viewConfig) {
		c.visible = visible
	}
}

// WithViewLogger attaches a structured logger.
func WithViewLogger(logger observability.Logger) ViewOption {
	return func(c *viewConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithViewMetrics attaches the panel metric instruments.
func WithViewMetrics(m *telemetry.Metrics) ViewOption {
	return func(c *viewConfig) {
		c.metrics = m
	}
}

func buildConfig(opts []ViewOption) viewConfig {
	cfg := viewConfig{
		interval: defaultRefreshInterval,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// digest fingerprints a view payload for change suppression. Buckets must
// be normalized before hashing so a nil and an empty slice hash the same.
func digest(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errs.New("portfolio/digest", errs.CodeInvalid, errs.WithCause(err))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// PositionsView polls the position book with single-flight semantics and
// suppresses refreshes whose payload is unchanged.
type PositionsView struct {
	source  Source
	cfg     viewConfig
	runner  *async.Runner
	onApply func(schema.PositionBook)

	mu          sync.RWMutex
	snapshot    schema.PositionBook
	fingerprint string
}

// NewPositionsView builds a positions view over source. onApply, when
// non-nil, receives a clone of every applied (non-suppressed) snapshot.
func NewPositionsView(source Source, onApply func(schema.PositionBook), opts ...ViewOption) (*PositionsView, error) {
	if source == nil {
		return nil, errs.New("portfolio/positions", errs.CodeInvalid, errs.WithMessage("source required"))
	}
	v := &PositionsView{source: source, cfg: buildConfig(opts), onApply: onApply}
	runnerOpts := []async.Option{}
	if v.cfg.visible != nil {
		runnerOpts = append(runnerOpts, async.WithVisibility(v.cfg.visible))
	}
	runner, err := async.NewRunner(v.cfg.interval, v.refresh, runnerOpts...)
	if err != nil {
		return nil, err
	}
	v.runner = runner
	return v, nil
}

// Start begins polling on the configured interval.
func (v *PositionsView) Start() { v.runner.Start() }

// RefreshNow forces an immediate refresh, cancelling any in-flight poll.
func (v *PositionsView) RefreshNow() { v.runner.RunNow() }

// Stop drains the poller. No state is mutated after Stop returns.
func (v *PositionsView) Stop() { v.runner.Stop() }

// Snapshot returns a clone of the last applied position book.
func (v *PositionsView) Snapshot() schema.PositionBook {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return clonePositions(v.snapshot)
}

func (v *PositionsView) refresh(ctx context.Context) error {
	start := time.Now()
	book, err := v.source.Positions(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		v.cfg.logger.Error("positions poll failed", observability.F("err", err))
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	book.EnsureBuckets()
	fp, err := digest(book)
	if err != nil {
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		return err
	}

	v.mu.Lock()
	if fp == v.fingerprint {
		v.mu.Unlock()
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollSuppressed, elapsed)
		return nil
	}
	v.snapshot = clonePositions(book)
	v.fingerprint = fp
	v.mu.Unlock()

	v.cfg.metrics.RecordPoll(ctx, telemetry.PollApplied, elapsed)
	if v.onApply != nil {
		v.onApply(clonePositions(book))
	}
	return nil
}

func clonePositions(book schema.PositionBook) schema.PositionBook {
	out := schema.PositionBook{
		Open:   make([]schema.Position, len(book.Open)),
		Closed: make([]schema.Position, len(book.Closed)),
	}
	copy(out.Open, book.Open)
	copy(out.Closed, book.Closed)
	return out
}

// HoldingsView polls DP holdings plus the per-client summaries computed
// alongside them, with the same suppression scheme as PositionsView.
type HoldingsView struct {
	source  Source
	cfg     viewConfig
	runner  *async.Runner
	onApply func(schema.HoldingsReport)

	mu          sync.RWMutex
	snapshot    schema.HoldingsReport
	fingerprint string
}

// NewHoldingsView builds a holdings view over source.
func NewHoldingsView(source Source, onApply func(schema.HoldingsReport), opts ...ViewOption) (*HoldingsView, error) {
	if source == nil {
		return nil, errs.New("portfolio/holdings", errs.CodeInvalid, errs.WithMessage("source required"))
	}
	v := &HoldingsView{source: source, cfg: buildConfig(opts), onApply: onApply}
	runnerOpts := []async.Option{}
	if v.cfg.visible != nil {
		runnerOpts = append(runnerOpts, async.WithVisibility(v.cfg.visible))
	}
	runner, err := async.NewRunner(v.cfg.interval, v.refresh, runnerOpts...)
	if err != nil {
		return nil, err
	}
	v.runner = runner
	return v, nil
}

// Start begins polling on the configured interval.
func (v *HoldingsView) Start() { v.runner.Start() }

// RefreshNow forces an immediate refresh, cancelling any in-flight poll.
func (v *HoldingsView) RefreshNow() { v.runner.RunNow() }

// Stop drains the poller.
func (v *HoldingsView) Stop() { v.runner.Stop() }

// Snapshot returns a clone of the last applied holdings report.
func (v *HoldingsView) Snapshot() schema.HoldingsReport {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneHoldings(v.snapshot)
}

func (v *HoldingsView) refresh(ctx context.Context) error {
	start := time.Now()
	report, err := v.source.Holdings(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		v.cfg.logger.Error("holdings poll failed", observability.F("err", err))
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	report.EnsureBuckets()
	fp, err := digest(report)
	if err != nil {
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollFailed, elapsed)
		return err
	}

	v.mu.Lock()
	if fp == v.fingerprint {
		v.mu.Unlock()
		v.cfg.metrics.RecordPoll(ctx, telemetry.PollSuppressed, elapsed)
		return nil
	}
	v.snapshot = cloneHoldings(report)
	v.fingerprint = fp
	v.mu.Unlock()

	v.cfg.metrics.RecordPoll(ctx, telemetry.PollApplied, elapsed)
	if v.onApply != nil {
		v.onApply(cloneHoldings(report))
	}
	return nil
}

func cloneHoldings(report schema.HoldingsReport) schema.HoldingsReport {
	out := schema.HoldingsReport{
		Holdings: make([]schema.Holding, len(report.Holdings)),
		Summary:  make([]schema.AccountSummary, len(report.Summary)),
	}
	copy(out.Holdings, report.Holdings)
	copy(out.Summary, report.Summary)
	return out
}
