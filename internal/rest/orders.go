package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

// Orders fetches the bucketed order book. Missing buckets come back as
// empty slices, never nil.
func (c *Client) Orders(ctx context.Context) (schema.OrderBook, error) {
	var book schema.OrderBook
	if err := c.do(ctx, "rest/get_orders", http.MethodGet, "/users/get_orders", nil, nil, &book); err != nil {
		return schema.OrderBook{}, err
	}
	book.EnsureBuckets()
	return book, nil
}

// CancelOrders cancels the selected orders in one bulk request. The ack is
// best effort; the next poll reconciles against backend truth.
func (c *Client) CancelOrders(ctx context.Context, orders []schema.Order) (schema.AckResponse, error) {
	if len(orders) == 0 {
		return schema.AckResponse{}, errs.New("rest/cancel_order", errs.CodeInvalid, errs.WithMessage("no orders selected"))
	}
	var ack schema.AckResponse
	req := schema.CancelRequest{Orders: orders}
	if err := c.do(ctx, "rest/cancel_order", http.MethodPost, "/users/cancel_order", nil, req, &ack); err != nil {
		return schema.AckResponse{}, err
	}
	return ack, nil
}

// ModifyOrder submits one per-order partial patch.
func (c *Client) ModifyOrder(ctx context.Context, patch schema.OrderPatch) (schema.AckResponse, error) {
	if strings.TrimSpace(patch.OrderID) == "" && strings.TrimSpace(patch.Name) == "" {
		return schema.AckResponse{}, errs.New("rest/modify_order", errs.CodeInvalid, errs.WithMessage("order identity required"))
	}
	var ack schema.AckResponse
	req := schema.ModifyRequest{Order: patch}
	if err := c.do(ctx, "rest/modify_order", http.MethodPost, "/users/modify_order", nil, req, &ack); err != nil {
		return schema.AckResponse{}, err
	}
	return ack, nil
}

// LTP fetches the advisory last traded price for a raw symbol.
func (c *Client) LTP(ctx context.Context, symbol string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return decimal.Zero, errs.New("rest/ltp", errs.CodeInvalid, errs.WithMessage("symbol required"))
	}
	query := url.Values{}
	query.Set("symbol", trimmed)
	var quote schema.Quote
	if err := c.do(ctx, "rest/ltp", http.MethodGet, "/users/ltp", query, nil, &quote); err != nil {
		return decimal.Zero, err
	}
	return quote.LTP, nil
}

// PlaceOrders fans one order entry out to the selected clients or groups.
// A correlation id is generated when the caller did not supply one so the
// backend can tag the batch.
func (c *Client) PlaceOrders(ctx context.Context, req schema.PlaceOrderRequest) (schema.AckResponse, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return schema.AckResponse{}, errs.New("rest/place_orders", errs.CodeInvalid, errs.WithMessage("symbol required"))
	}
	if req.GroupAccounts {
		if len(req.Groups) == 0 {
			return schema.AckResponse{}, errs.New("rest/place_orders", errs.CodeInvalid, errs.WithMessage("no groups selected"))
		}
	} else if len(req.Clients) == 0 {
		return schema.AckResponse{}, errs.New("rest/place_orders", errs.CodeInvalid, errs.WithMessage("no clients selected"))
	}
	if strings.TrimSpace(req.CorrelationID) == "" {
		req.CorrelationID = uuid.NewString()
	}
	var ack schema.AckResponse
	if err := c.do(ctx, "rest/place_orders", http.MethodPost, "/place_orders", nil, req, &ack); err != nil {
		return schema.AckResponse{}, err
	}
	return ack, nil
}
