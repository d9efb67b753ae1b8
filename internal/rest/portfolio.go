package rest

import (
	"context"
	"net/http"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

// Positions fetches open and closed positions across all clients.
func (c *Client) Positions(ctx context.Context) (schema.PositionBook, error) {
	var book schema.PositionBook
	if err := c.do(ctx, "rest/get_positions", http.MethodGet, "/get_positions", nil, nil, &book); err != nil {
		return schema.PositionBook{}, err
	}
	book.EnsureBuckets()
	return book, nil
}

// Holdings fetches DP holdings plus the per-client account summaries the
// backend computes alongside them.
func (c *Client) Holdings(ctx context.Context) (schema.HoldingsReport, error) {
	var report schema.HoldingsReport
	if err := c.do(ctx, "rest/get_holdings", http.MethodGet, "/get_holdings", nil, nil, &report); err != nil {
		return schema.HoldingsReport{}, err
	}
	report.EnsureBuckets()
	return report, nil
}

// Summary returns the cached per-client account summaries. The backend
// refreshes this cache on every holdings fetch.
func (c *Client) Summary(ctx context.Context) ([]schema.AccountSummary, error) {
	var resp struct {
		Summary []schema.AccountSummary `json:"summary"`
	}
	if err := c.do(ctx, "rest/get_summary", http.MethodGet, "/get_summary", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Summary == nil {
		resp.Summary = []schema.AccountSummary{}
	}
	return resp.Summary, nil
}

// ClosePositions squares off the selected positions in one bulk request.
func (c *Client) ClosePositions(ctx context.Context, positions []schema.Position) (schema.AckResponse, error) {
	if len(positions) == 0 {
		return schema.AckResponse{}, errs.New("rest/close_positions", errs.CodeInvalid, errs.WithMessage("no positions selected"))
	}
	var ack schema.AckResponse
	req := schema.ClosePositionsRequest{Positions: positions}
	if err := c.do(ctx, "rest/close_positions", http.MethodPost, "/close_positions", nil, req, &ack); err != nil {
		return schema.AckResponse{}, err
	}
	return ack, nil
}

// ConvertPositions changes product type for the selected positions.
func (c *Client) ConvertPositions(ctx context.Context, conversions []schema.ConvertPosition) (schema.AckResponse, error) {
	if len(conversions) == 0 {
		return schema.AckResponse{}, errs.New("rest/convert_position", errs.CodeInvalid, errs.WithMessage("no positions selected"))
	}
	var ack schema.AckResponse
	req := schema.ConvertPositionsRequest{Positions: conversions}
	if err := c.do(ctx, "rest/convert_position", http.MethodPost, "/convert_position", nil, req, &ack); err != nil {
		return schema.AckResponse{}, err
	}
	return ack, nil
}
