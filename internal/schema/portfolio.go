package schema

import "github.com/shopspring/decimal"

// Position is one open or closed position row.
type Position struct {
	ClientID   string          `json:"client_id"`
	Name       string          `json:"name"`
	Broker     string          `json:"broker"`
	Symbol     string          `json:"symbol"`
	Exchange   string          `json:"exchange"`
	Product    string          `json:"product"`
	Quantity   int             `json:"quantity"`
	BuyAvg     decimal.Decimal `json:"buy_avg"`
	SellAvg    decimal.Decimal `json:"sell_avg"`
	LTP        decimal.Decimal `json:"ltp"`
	PnL        decimal.Decimal `json:"pnl"`
	SecurityID string          `json:"security_id,omitempty"`
}

// PositionBook holds open and closed positions.
type PositionBook struct {
	Open   []Position `json:"open"`
	Closed []Position `json:"closed"`
}

// EnsureBuckets replaces nil buckets with empty slices.
func (b *PositionBook) EnsureBuckets() {
	if b.Open == nil {
		b.Open = []Position{}
	}
	if b.Closed == nil {
		b.Closed = []Position{}
	}
}

// Holding is one DP holding row.
type Holding struct {
	ClientID string          `json:"client_id"`
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	Quantity int             `json:"quantity"`
	BuyAvg   decimal.Decimal `json:"buy_avg"`
	LTP      decimal.Decimal `json:"ltp"`
	PnL      decimal.Decimal `json:"pnl"`
}

// AccountSummary is one per-client funds/margin summary row.
type AccountSummary struct {
	ClientID   string          `json:"client_id"`
	Name       string          `json:"name"`
	Broker     string          `json:"broker"`
	Balance    decimal.Decimal `json:"balance"`
	MarginUsed decimal.Decimal `json:"margin_used"`
	Collateral decimal.Decimal `json:"collateral"`
	PnL        decimal.Decimal `json:"pnl"`
}

// HoldingsReport bundles holdings with the per-client summaries the
// backend computes alongside them.
type HoldingsReport struct {
	Holdings []Holding        `json:"holdings"`
	Summary  []AccountSummary `json:"summary"`
}

// EnsureBuckets replaces nil slices with empty ones.
func (r *HoldingsReport) EnsureBuckets() {
	if r.Holdings == nil {
		r.Holdings = []Holding{}
	}
	if r.Summary == nil {
		r.Summary = []AccountSummary{}
	}
}

// ClosePositionsRequest carries the selected position rows verbatim.
type ClosePositionsRequest struct {
	Positions []Position `json:"positions"`
}

// ConvertPosition describes one product-type conversion.
type ConvertPosition struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Quantity   int    `json:"quantity"`
	Exchange   string `json:"exchange"`
	OldProduct string `json:"oldproduct"`
	NewProduct string `json:"newproduct"`
}

// ConvertPositionsRequest carries one or more conversions.
type ConvertPositionsRequest struct {
	Positions []ConvertPosition `json:"positions"`
}
