package portfolio

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/telemetry"
)

// Mutator issues the position mutations. *rest.Client satisfies it.
type Mutator interface {
	ClosePositions(ctx context.Context, positions []schema.Position) (schema.AckResponse, error)
	ConvertPositions(ctx context.Context, conversions []schema.ConvertPosition) (schema.AckResponse, error)
}

// Refresher forces an immediate view refresh. Both view types satisfy it.
type Refresher interface {
	RefreshNow()
}

// Actions coordinates close and convert submissions against the selected
// position rows. Every submission, failed or not, is followed by a forced
// refresh of the registered views so the panel converges on what the
// backend actually applied.
type Actions struct {
	api     Mutator
	views   []Refresher
	logger  observability.Logger
	metrics *telemetry.Metrics
}

// ActionsOption configures Actions.
type ActionsOption func(*Actions)

// WithActionsLogger attaches a structured logger.
func WithActionsLogger(logger observability.Logger) ActionsOption {
	return func(a *Actions) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithActionsMetrics attaches the panel metric instruments.
func WithActionsMetrics(m *telemetry.Metrics) ActionsOption {
	return func(a *Actions) {
		a.metrics = m
	}
}

// NewActions wires the mutation API to the views it must reconcile.
func NewActions(api Mutator, views []Refresher, opts ...ActionsOption) (*Actions, error) {
	if api == nil {
		return nil, errs.New("portfolio/actions", errs.CodeInvalid, errs.WithMessage("api required"))
	}
	a := &Actions{api: api, views: views, logger: observability.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// CloseAll squares off the selected open positions in one bulk request.
func (a *Actions) CloseAll(ctx context.Context, selected []schema.Position) ([]string, error) {
	if len(selected) == 0 {
		return nil, errs.New("portfolio/close", errs.CodeInvalid, errs.WithMessage("no positions selected"))
	}
	defer a.reconcile(ctx)

	ack, err := a.api.ClosePositions(ctx, selected)
	if err != nil {
		a.logger.Error("close positions failed", observability.F("err", err))
		return nil, err
	}
	a.metrics.RecordMutation(ctx, "close", len(selected))
	return ack.Message, nil
}

// Convert switches the product type of the selected positions in one bulk
// request.
func (a *Actions) Convert(ctx context.Context, conversions []schema.ConvertPosition) ([]string, error) {
	if len(conversions) == 0 {
		return nil, errs.New("portfolio/convert", errs.CodeInvalid, errs.WithMessage("no positions selected"))
	}
	for _, conv := range conversions {
		if conv.OldProduct == conv.NewProduct {
			return nil, errs.New("portfolio/convert", errs.CodeInvalid,
				errs.WithMessage("conversion keeps the same product type"))
		}
	}
	defer a.reconcile(ctx)

	ack, err := a.api.ConvertPositions(ctx, conversions)
	if err != nil {
		a.logger.Error("convert positions failed", observability.F("err", err))
		return nil, err
	}
	a.metrics.RecordMutation(ctx, "convert", len(conversions))
	return ack.Message, nil
}

// reconcile forces every registered view to refresh. Views refresh in
// parallel; RefreshNow blocks only until the replacement run is queued.
func (a *Actions) reconcile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	var wg conc.WaitGroup
	for _, view := range a.views {
		wg.Go(view.RefreshNow)
	}
	wg.Wait()
}
