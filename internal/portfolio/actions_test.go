package portfolio

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

type fakeMutator struct {
	mu       sync.Mutex
	closes   [][]schema.Position
	converts [][]schema.ConvertPosition
	closeErr error
}

func (f *fakeMutator) ClosePositions(ctx context.Context, positions []schema.Position) (schema.AckResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes = append(f.closes, positions)
	if f.closeErr != nil {
		return schema.AckResponse{}, f.closeErr
	}
	return schema.AckResponse{Message: []string{"closed"}}, nil
}

func (f *fakeMutator) ConvertPositions(ctx context.Context, conversions []schema.ConvertPosition) (schema.AckResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.converts = append(f.converts, conversions)
	return schema.AckResponse{Message: []string{"converted"}}, nil
}

type countingRefresher struct {
	refreshes atomic.Int32
}

func (r *countingRefresher) RefreshNow() { r.refreshes.Add(1) }

func TestCloseAllIsSingleBulkRequest(t *testing.T) {
	api := &fakeMutator{}
	positionsView := &countingRefresher{}
	holdingsView := &countingRefresher{}
	actions, err := NewActions(api, []Refresher{positionsView, holdingsView})
	if err != nil {
		t.Fatal(err)
	}

	selected := []schema.Position{
		{ClientID: "c1", Symbol: "NIFTY NOV 2024 FUT", Quantity: 50},
		{ClientID: "c2", Symbol: "NIFTY NOV 2024 FUT", Quantity: 25},
	}
	messages, err := actions.CloseAll(context.Background(), selected)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %v", messages)
	}
	if len(api.closes) != 1 || len(api.closes[0]) != 2 {
		t.Fatal("close must be one bulk request carrying all selected positions")
	}
	if positionsView.refreshes.Load() != 1 || holdingsView.refreshes.Load() != 1 {
		t.Error("every registered view must refresh after the submission")
	}
}

func TestCloseAllEmptySelectionRejected(t *testing.T) {
	api := &fakeMutator{}
	view := &countingRefresher{}
	actions, _ := NewActions(api, []Refresher{view})

	_, err := actions.CloseAll(context.Background(), nil)
	if !errs.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(api.closes) != 0 {
		t.Error("empty selection must issue zero network calls")
	}
	if view.refreshes.Load() != 0 {
		t.Error("rejected submission must not trigger a refresh")
	}
}

func TestCloseAllFailureStillReconciles(t *testing.T) {
	api := &fakeMutator{closeErr: errs.New("rest/close_positions", errs.CodeNetwork)}
	view := &countingRefresher{}
	actions, _ := NewActions(api, []Refresher{view})

	_, err := actions.CloseAll(context.Background(), []schema.Position{{ClientID: "c1"}})
	if err == nil {
		t.Fatal("expected transport error")
	}
	// partial state on the backend is reconciled by the forced refresh
	if view.refreshes.Load() != 1 {
		t.Error("failed submission must still trigger a refresh")
	}
}

func TestConvertRejectsNoopConversion(t *testing.T) {
	api := &fakeMutator{}
	actions, _ := NewActions(api, nil)

	_, err := actions.Convert(context.Background(), []schema.ConvertPosition{
		{Symbol: "RELIANCE", OldProduct: "DELIVERY", NewProduct: "DELIVERY"},
	})
	if !errs.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(api.converts) != 0 {
		t.Error("noop conversion must issue zero network calls")
	}
}

func TestConvertDispatchesBulk(t *testing.T) {
	api := &fakeMutator{}
	view := &countingRefresher{}
	actions, _ := NewActions(api, []Refresher{view})

	conversions := []schema.ConvertPosition{
		{Name: "acct-a", Symbol: "RELIANCE", Quantity: 10, OldProduct: "INTRADAY", NewProduct: "DELIVERY"},
		{Name: "acct-b", Symbol: "RELIANCE", Quantity: 5, OldProduct: "INTRADAY", NewProduct: "DELIVERY"},
	}
	messages, err := actions.Convert(context.Background(), conversions)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %v", messages)
	}
	if len(api.converts) != 1 || len(api.converts[0]) != 2 {
		t.Fatal("convert must be one bulk request")
	}
	if view.refreshes.Load() != 1 {
		t.Error("a reconciling refresh must follow the conversion")
	}
}

func TestCancelledContextSkipsReconcile(t *testing.T) {
	api := &fakeMutator{}
	view := &countingRefresher{}
	actions, _ := NewActions(api, []Refresher{view})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = actions.CloseAll(ctx, []schema.Position{{ClientID: "c1"}})
	if view.refreshes.Load() != 0 {
		t.Error("teardown must not trigger post-cancellation refreshes")
	}
}
