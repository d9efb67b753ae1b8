package orderbook

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/symbol"
	"github.com/wealthocean/tradepanel/internal/telemetry"
)

// API is the mutation surface the coordinator drives. *rest.Client
// satisfies it.
type API interface {
	CancelOrders(ctx context.Context, orders []schema.Order) (schema.AckResponse, error)
	ModifyOrder(ctx context.Context, patch schema.OrderPatch) (schema.AckResponse, error)
	LTP(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Refresher triggers a reconciling order-book refresh. *Synchronizer
// satisfies it.
type Refresher interface {
	RefreshNow()
}

// BatchModify is one modify submission over the selected orders. Changes
// carries only the fields the user edited.
type BatchModify struct {
	Orders  []schema.Order
	Changes schema.ModifyChanges
}

// BatchResult aggregates one batch submission. Dispatched counts requests
// that reached the wire; Failed counts those that did not. Per-order
// backend outcomes are not tracked here: the reconciling refresh reveals
// which mutations actually applied.
type BatchResult struct {
	Dispatched int
	Failed     int
	Messages   []string
}

// Coordinator validates and dispatches batch mutations over the current
// selection, then reconciles by forcing a refresh.
type Coordinator struct {
	api       API
	refresher Refresher
	selection *SelectionSet
	logger    observability.Logger
	metrics   *telemetry.Metrics
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger attaches a structured logger.
func WithCoordinatorLogger(logger observability.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCoordinatorMetrics attaches the panel metric instruments.
func WithCoordinatorMetrics(m *telemetry.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// NewCoordinator wires the mutation surface, the reconciling refresher, and
// the selection the coordinator clears after each submission.
func NewCoordinator(api API, refresher Refresher, selection *SelectionSet, opts ...CoordinatorOption) (*Coordinator, error) {
	if api == nil {
		return nil, errs.New("orderbook/coordinator", errs.CodeInvalid, errs.WithMessage("api required"))
	}
	if refresher == nil {
		return nil, errs.New("orderbook/coordinator", errs.CodeInvalid, errs.WithMessage("refresher required"))
	}
	if selection == nil {
		selection = NewSelectionSet()
	}
	c := &Coordinator{
		api:       api,
		refresher: refresher,
		selection: selection,
		logger:    observability.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Selection exposes the selection set the coordinator clears on completion.
func (c *Coordinator) Selection() *SelectionSet { return c.selection }

// ReferencePrice best-effort fetches the live price for the shared symbol
// before a modify flow opens. Failures are silent; the price is advisory
// display only and never blocks the flow.
func (c *Coordinator) ReferencePrice(ctx context.Context, raw string) decimal.Decimal {
	ltp, err := c.api.LTP(ctx, raw)
	if err != nil {
		c.logger.Debug("reference price lookup failed", observability.F("symbol", raw), observability.F("err", err))
		return decimal.Zero
	}
	return ltp
}

// Cancel submits one bulk cancel for the selected orders. The backend
// cancels natively in bulk, so unlike Modify this is a single request.
func (c *Coordinator) Cancel(ctx context.Context, selected []schema.Order) (BatchResult, error) {
	if len(selected) == 0 {
		return BatchResult{}, errs.New("orderbook/cancel", errs.CodeInvalid, errs.WithMessage("no orders selected"))
	}
	defer c.finish(ctx)

	ack, err := c.api.CancelOrders(ctx, selected)
	if err != nil {
		return BatchResult{Failed: len(selected)}, err
	}
	c.metrics.RecordMutation(ctx, "cancel", len(selected))
	return BatchResult{Dispatched: len(selected), Messages: ack.Message}, nil
}

// Modify validates that every selected order shares one canonical symbol
// group, then dispatches one partial-patch request per order concurrently
// with settle-all semantics: an individual failure neither cancels nor
// rolls back sibling mutations. The reconciling refresh that follows is
// the source of truth for what actually applied.
func (c *Coordinator) Modify(ctx context.Context, target BatchModify) (BatchResult, error) {
	if err := validateBatch(target); err != nil {
		return BatchResult{}, err
	}
	defer c.finish(ctx)

	var (
		mu       sync.Mutex
		result   BatchResult
		wg       conc.WaitGroup
	)
	for _, order := range target.Orders {
		patch := buildPatch(order, target.Changes)
		wg.Go(func() {
			ack, err := c.api.ModifyOrder(ctx, patch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				c.logger.Error("modify dispatch failed",
					observability.F("order_id", patch.OrderID),
					observability.F("err", err))
				return
			}
			result.Dispatched++
			result.Messages = append(result.Messages, ack.Message...)
		})
	}
	wg.Wait()

	c.metrics.RecordMutation(ctx, "modify", result.Dispatched)
	return result, nil
}

// finish clears the selection and forces a reconciling refresh regardless
// of how the batch settled.
func (c *Coordinator) finish(ctx context.Context) {
	c.selection.Clear()
	if ctx.Err() == nil {
		c.refresher.RefreshNow()
	}
}

func validateBatch(target BatchModify) error {
	if len(target.Orders) == 0 {
		return errs.New("orderbook/modify", errs.CodeInvalid, errs.WithMessage("no orders selected"))
	}
	if target.Changes.Empty() {
		return errs.New("orderbook/modify", errs.CodeInvalid, errs.WithMessage("no fields changed"))
	}
	base := symbol.Key(target.Orders[0].Symbol, symbol.KeyOptions{})
	for _, order := range target.Orders[1:] {
		if symbol.Key(order.Symbol, symbol.KeyOptions{}) != base {
			return errs.New("orderbook/modify", errs.CodeInvalid,
				errs.WithMessage("selected orders span multiple symbol groups"))
		}
	}
	return nil
}

// buildPatch copies the order identity and attaches only the fields the
// user actually changed, so the backend applies a partial patch rather
// than a full overwrite.
func buildPatch(order schema.Order, changes schema.ModifyChanges) schema.OrderPatch {
	return schema.OrderPatch{
		OrderID:      order.OrderID,
		Name:         order.Name,
		Symbol:       order.Symbol,
		Broker:       order.Broker,
		ClientID:     order.ClientID,
		Quantity:     changes.Quantity,
		Price:        changes.Price,
		TriggerPrice: changes.TriggerPrice,
		OrderType:    changes.OrderType,
		Validity:     changes.Validity,
	}
}
