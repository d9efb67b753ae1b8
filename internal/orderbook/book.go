// Package orderbook implements the order-management core: poll-and-diff
// synchronization of the backend order book, stable row selection, and
// batch mutation coordination over the selected orders.
package orderbook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/wealthocean/tradepanel/internal/schema"
)

// Fingerprint computes a structural hash of the partitioned order book.
// Buckets are normalised first so a nil and an empty bucket hash the same;
// field order of the struct serialization makes the encoding stable.
func Fingerprint(book schema.OrderBook) (string, error) {
	book.EnsureBuckets()
	raw, err := json.Marshal(book)
	if err != nil {
		return "", fmt.Errorf("serialize order book: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// cloneBook copies the bucket slices so callers can hold a snapshot while
// the synchronizer swaps in fresh polls underneath.
func cloneBook(book schema.OrderBook) schema.OrderBook {
	clone := schema.OrderBook{
		Pending:   append([]schema.Order(nil), book.Pending...),
		Traded:    append([]schema.Order(nil), book.Traded...),
		Rejected:  append([]schema.Order(nil), book.Rejected...),
		Cancelled: append([]schema.Order(nil), book.Cancelled...),
		Others:    append([]schema.Order(nil), book.Others...),
	}
	clone.EnsureBuckets()
	return clone
}
