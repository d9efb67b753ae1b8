package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	apimetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/wealthocean/tradepanel"

// PollOutcome labels the result of one synchronizer refresh.
type PollOutcome string

const (
	// PollApplied means the refresh produced a new snapshot.
	PollApplied PollOutcome = "applied"
	// PollSuppressed means the refresh matched the previous fingerprint.
	PollSuppressed PollOutcome = "suppressed"
	// PollSkipped means the tick was skipped (busy or hidden).
	PollSkipped PollOutcome = "skipped"
	// PollFailed means the refresh errored.
	PollFailed PollOutcome = "failed"
)

// Metrics bundles the panel's metric instruments.
type Metrics struct {
	polls        apimetric.Int64Counter
	pollDuration apimetric.Float64Histogram
	mutations    apimetric.Int64Counter
}

// NewMetrics registers the panel instruments on the provider. A nil provider
// yields noop instruments.
func NewMetrics(provider apimetric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter(meterName)

	polls, err := meter.Int64Counter("panel.poll.total",
		apimetric.WithDescription("Order-book poll attempts by outcome"))
	if err != nil {
		return nil, err
	}
	pollDuration, err := meter.Float64Histogram("panel.poll.duration",
		apimetric.WithDescription("Order-book refresh latency"),
		apimetric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	mutations, err := meter.Int64Counter("panel.batch.mutations",
		apimetric.WithDescription("Batch mutation submissions by action"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		polls:        polls,
		pollDuration: pollDuration,
		mutations:    mutations,
	}, nil
}

// RecordPoll records one refresh attempt and its latency.
func (m *Metrics) RecordPoll(ctx context.Context, outcome PollOutcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := apimetric.WithAttributes(attribute.String("outcome", string(outcome)))
	m.polls.Add(ctx, 1, attrs)
	if elapsed > 0 {
		m.pollDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// RecordMutation records a batch mutation submission.
func (m *Metrics) RecordMutation(ctx context.Context, action string, orders int) {
	if m == nil {
		return
	}
	m.mutations.Add(ctx, int64(orders),
		apimetric.WithAttributes(attribute.String("action", action)))
}
