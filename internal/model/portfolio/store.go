package portfolio

import "strings"

// Store exposes portfolio positions for HTTP handlers and the terminal client.
type Store interface {
	List() []Position
	FindBySymbol(symbol string) (Position, bool)
	TotalValue() float64
}

// MemoryStore implements Store over an immutable in-memory slice.
type MemoryStore struct {
	items []Position
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied positions.
func NewMemoryStore(items []Position) *MemoryStore {
	return &MemoryStore{items: append([]Position(nil), items...)}
}

// List returns a copy of the positions in their original order.
func (s *MemoryStore) List() []Position {
	return append([]Position(nil), s.items...)
}

// FindBySymbol looks up a position by ticker, ignoring case.
func (s *MemoryStore) FindBySymbol(symbol string) (Position, bool) {
	for _, item := range s.items {
		if strings.EqualFold(item.Symbol, symbol) {
			return item, true
		}
	}
	return Position{}, false
}

// TotalValue sums the held value of every position. Positions without a
// value count as zero.
func (s *MemoryStore) TotalValue() float64 {
	var total float64
	for _, item := range s.items {
		if item.Value != nil {
			total += *item.Value
		}
	}
	return total
}
