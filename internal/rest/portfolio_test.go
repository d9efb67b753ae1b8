package rest

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

func TestPositionsDefaultsMissingBuckets(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_positions", r.URL.Path)
		_, _ = w.Write([]byte(`{"open":[{"client_id":"c1","symbol":"NIFTY NOV 2024 FUT","quantity":50,"pnl":"125.5"}]}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	book, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, book.Open, 1)
	assert.True(t, book.Open[0].PnL.Equal(decimal.RequireFromString("125.5")))
	assert.NotNil(t, book.Closed)
}

func TestHoldingsDefaultsMissingBuckets(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_holdings", r.URL.Path)
		_, _ = w.Write([]byte(`{"holdings":[{"client_id":"c1","symbol":"RELIANCE","quantity":10}]}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	report, err := c.Holdings(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Holdings, 1)
	assert.NotNil(t, report.Summary)
}

func TestSummaryUnwrapsEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_summary", r.URL.Path)
		_, _ = w.Write([]byte(`{"summary":[{"client_id":"c1","balance":"10000","margin_used":"2500"}]}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	summary, err := c.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.True(t, summary[0].Balance.Equal(decimal.RequireFromString("10000")))
}

func TestClosePositionsBulkBody(t *testing.T) {
	var body schema.ClosePositionsRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/close_positions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":["closed c1","closed c2"]}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	positions := []schema.Position{
		{ClientID: "c1", Symbol: "NIFTY NOV 2024 FUT", Quantity: 50},
		{ClientID: "c2", Symbol: "NIFTY NOV 2024 FUT", Quantity: 25},
	}
	ack, err := c.ClosePositions(context.Background(), positions)
	require.NoError(t, err)
	assert.Len(t, ack.Message, 2)
	require.Len(t, body.Positions, 2, "close is one bulk request, not per-position calls")
}

func TestClosePositionsEmptySelectionNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	c, _ := newTestClient(t, handler, "tok")

	_, err := c.ClosePositions(context.Background(), nil)
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, calls.Load())
}

func TestConvertPositionsBody(t *testing.T) {
	var body schema.ConvertPositionsRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/convert_position", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":["converted"]}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	conversions := []schema.ConvertPosition{
		{Name: "acct-a", Symbol: "RELIANCE", Quantity: 10, OldProduct: "INTRADAY", NewProduct: "DELIVERY"},
	}
	_, err := c.ConvertPositions(context.Background(), conversions)
	require.NoError(t, err)
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "DELIVERY", body.Positions[0].NewProduct)
}
