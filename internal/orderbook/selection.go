package orderbook

import (
	"strings"
	"sync"

	"github.com/wealthocean/tradepanel/internal/schema"
)

// RowID derives the stable row identity used by the selection set. It
// depends only on fields that do not change between polls for unmodified
// orders, so checkboxes survive refreshes. Orders without a backend id
// fall back to a name+symbol+status composite.
func RowID(o schema.Order) string {
	if id := strings.TrimSpace(o.OrderID); id != "" {
		return id
	}
	return strings.Join([]string{o.Name, o.Symbol, o.Status}, "|")
}

// SelectionSet is the ephemeral checked-rows state of the order view.
type SelectionSet struct {
	mu   sync.RWMutex
	rows map[string]struct{}
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{rows: make(map[string]struct{})}
}

// Select marks the order's row as checked.
func (s *SelectionSet) Select(o schema.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[RowID(o)] = struct{}{}
}

// Deselect unchecks the order's row.
func (s *SelectionSet) Deselect(o schema.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, RowID(o))
}

// Toggle flips the order's row and reports the new state.
func (s *SelectionSet) Toggle(o schema.Order) bool {
	id := RowID(o)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; ok {
		delete(s.rows, id)
		return false
	}
	s.rows[id] = struct{}{}
	return true
}

// Selected reports whether the order's row is checked.
func (s *SelectionSet) Selected(o schema.Order) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[RowID(o)]
	return ok
}

// Len reports the number of checked rows.
func (s *SelectionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Clear unchecks every row.
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string]struct{})
}

// Resolve returns the subset of rows that are currently checked, in row
// order. Selections referencing rows no longer present simply resolve to
// nothing; the next poll already removed them from the book.
func (s *SelectionSet) Resolve(rows []schema.Order) []schema.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.Order, 0, len(s.rows))
	for _, o := range rows {
		if _, ok := s.rows[RowID(o)]; ok {
			out = append(out, o)
		}
	}
	return out
}
