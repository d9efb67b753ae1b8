// Package schema defines the wire types exchanged with the panel backend.
package schema

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus partitions the order book.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusTraded    OrderStatus = "traded"
	StatusRejected  OrderStatus = "rejected"
	StatusCancelled OrderStatus = "cancelled"
	StatusOther     OrderStatus = "others"
)

// NormalizeStatus folds backend status strings into the panel partition.
func NormalizeStatus(raw string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "open", "confirm", "trigger pending":
		return StatusPending
	case "traded", "complete", "executed":
		return StatusTraded
	case "rejected", "error":
		return StatusRejected
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusOther
	}
}

// Order is one broker-side order as reported by the backend. The panel
// observes orders, it never constructs them; they change only through
// explicit modify/cancel requests.
type Order struct {
	OrderID         string          `json:"order_id"`
	ClientID        string          `json:"client_id"`
	Name            string          `json:"name"`
	Broker          string          `json:"broker"`
	Symbol          string          `json:"symbol"`
	TransactionType string          `json:"action"`
	Exchange        string          `json:"exchange"`
	OrderType       string          `json:"ordertype"`
	ProductType     string          `json:"producttype"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TriggerPrice    decimal.Decimal `json:"triggerprice"`
	Status          string          `json:"status"`
}

// OrderBook holds the bucketed order-book response.
type OrderBook struct {
	Pending   []Order `json:"pending"`
	Traded    []Order `json:"traded"`
	Rejected  []Order `json:"rejected"`
	Cancelled []Order `json:"cancelled"`
	Others    []Order `json:"others"`
}

// EnsureBuckets replaces nil buckets with empty slices so downstream
// consumers and the fingerprint never see a nil/empty distinction.
func (b *OrderBook) EnsureBuckets() {
	if b.Pending == nil {
		b.Pending = []Order{}
	}
	if b.Traded == nil {
		b.Traded = []Order{}
	}
	if b.Rejected == nil {
		b.Rejected = []Order{}
	}
	if b.Cancelled == nil {
		b.Cancelled = []Order{}
	}
	if b.Others == nil {
		b.Others = []Order{}
	}
}

// Counts reports bucket sizes in partition order.
func (b OrderBook) Counts() map[OrderStatus]int {
	return map[OrderStatus]int{
		StatusPending:   len(b.Pending),
		StatusTraded:    len(b.Traded),
		StatusRejected:  len(b.Rejected),
		StatusCancelled: len(b.Cancelled),
		StatusOther:     len(b.Others),
	}
}

// OrderPatch is the partial per-order payload for a modify request. Unset
// fields are omitted so the backend applies a patch, not an overwrite.
type OrderPatch struct {
	OrderID      string           `json:"order_id"`
	Name         string           `json:"name"`
	Symbol       string           `json:"symbol"`
	Broker       string           `json:"broker"`
	ClientID     string           `json:"client_id"`
	Quantity     *int             `json:"quantity,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	TriggerPrice *decimal.Decimal `json:"triggerPrice,omitempty"`
	OrderType    string           `json:"orderType,omitempty"`
	Validity     string           `json:"validity,omitempty"`
}

// ModifyChanges carries the fields the user actually edited in the modify
// dialog. Zero values mean "leave unchanged".
type ModifyChanges struct {
	Quantity     *int
	Price        *decimal.Decimal
	TriggerPrice *decimal.Decimal
	OrderType    string
	Validity     string
}

// Empty reports whether no field was edited.
func (c ModifyChanges) Empty() bool {
	return c.Quantity == nil && c.Price == nil && c.TriggerPrice == nil &&
		strings.TrimSpace(c.OrderType) == "" && strings.TrimSpace(c.Validity) == ""
}

// CancelRequest is the bulk cancel body.
type CancelRequest struct {
	Orders []Order `json:"orders"`
}

// ModifyRequest wraps one per-order patch.
type ModifyRequest struct {
	Order OrderPatch `json:"order"`
}

// AckResponse is the backend's best-effort acknowledgement: a list of
// human-readable per-order messages, not per-order outcomes.
type AckResponse struct {
	Message []string `json:"message"`
}

// Quote is the advisory last-traded-price lookup result.
type Quote struct {
	LTP decimal.Decimal `json:"ltp"`
}

// PlaceOrderRequest mirrors the backend's batch order-entry payload.
// Targets are either group identifiers (GroupAccounts true) or individual
// client ids.
type PlaceOrderRequest struct {
	Symbol            string         `json:"symbol"`
	SymbolToken       string         `json:"symboltoken,omitempty"`
	Exchange          string         `json:"exchange,omitempty"`
	Action            string         `json:"action"`
	OrderType         string         `json:"ordertype"`
	ProductType       string         `json:"producttype,omitempty"`
	OrderDuration     string         `json:"orderduration,omitempty"`
	Price             decimal.Decimal `json:"price"`
	TriggerPrice      decimal.Decimal `json:"triggerprice"`
	DisclosedQuantity int            `json:"disclosedquantity"`
	Quantity          int            `json:"quantityinlot"`
	GroupAccounts     bool           `json:"groupacc"`
	Groups            []string       `json:"groups,omitempty"`
	Clients           []string       `json:"clients,omitempty"`
	PerClientQty      map[string]int `json:"perClientQty,omitempty"`
	PerGroupQty       map[string]int `json:"perGroupQty,omitempty"`
	AMOOrder          string         `json:"amoorder,omitempty"`
	CorrelationID     string         `json:"correlationId,omitempty"`
}
