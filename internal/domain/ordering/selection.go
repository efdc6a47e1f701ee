package ordering

import (
	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// Selection is the ordered set of line items one customer is building before
// submission (the cart/notepad). It is owned by exactly one device-scoped
// ordering session; items merge by line key and keep insertion order for
// display.
type Selection struct {
	ID    uuid.UUID
	items []*LineItem
	index map[string]int
}

// NewSelection creates an empty selection
func NewSelection(id uuid.UUID) *Selection {
	return &Selection{
		ID:    id,
		index: make(map[string]int),
	}
}

// RestoreSelection rebuilds a selection from persisted line items,
// preserving their stored order.
func RestoreSelection(id uuid.UUID, items []*LineItem) *Selection {
	s := NewSelection(id)
	for _, item := range items {
		s.index[item.Key] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// Add inserts a line item or merges quantities when the same product with the
// same customization set is already present. Returns the resulting line item.
func (s *Selection) Add(product Product, quantity int, customizations []Customization) (*LineItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	key := DeriveLineKey(product.ID, customizationIDs(customizations))
	if pos, ok := s.index[key]; ok {
		s.items[pos].Quantity += quantity
		return s.items[pos], nil
	}

	item, err := NewLineItem(product, quantity, customizations)
	if err != nil {
		return nil, err
	}
	s.index[item.Key] = len(s.items)
	s.items = append(s.items, item)
	return item, nil
}

// Increment adds one unit of the given (product, customizations) pairing.
func (s *Selection) Increment(product Product, customizations []Customization) (*LineItem, error) {
	return s.Add(product, 1, customizations)
}

// Decrement lowers the quantity of the keyed line item by one, removing the
// line item entirely at quantity 1. Decrementing an absent key is a no-op
// (UI double-taps are expected). Returns true if the selection changed.
func (s *Selection) Decrement(key string) bool {
	pos, ok := s.index[key]
	if !ok {
		return false
	}
	if s.items[pos].Quantity > 1 {
		s.items[pos].Quantity--
		return true
	}
	s.removeAt(pos)
	return true
}

// Remove deletes the keyed line item regardless of quantity.
// Removing an absent key is a no-op. Returns true if the selection changed.
func (s *Selection) Remove(key string) bool {
	pos, ok := s.index[key]
	if !ok {
		return false
	}
	s.removeAt(pos)
	return true
}

// Clear removes all line items. Returns true if the selection was non-empty.
func (s *Selection) Clear() bool {
	if len(s.items) == 0 {
		return false
	}
	s.items = nil
	s.index = make(map[string]int)
	return true
}

// Toggle adds the pairing if absent and removes it if present.
// Returns the resulting membership.
func (s *Selection) Toggle(product Product, customizations []Customization) (bool, error) {
	key := DeriveLineKey(product.ID, customizationIDs(customizations))
	if _, ok := s.index[key]; ok {
		s.Remove(key)
		return false, nil
	}
	if _, err := s.Add(product, 1, customizations); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether the keyed line item is present.
func (s *Selection) Contains(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Item returns the keyed line item, or nil when absent.
func (s *Selection) Item(key string) *LineItem {
	if pos, ok := s.index[key]; ok {
		return s.items[pos]
	}
	return nil
}

// Items returns the line items in insertion order.
func (s *Selection) Items() []*LineItem {
	return s.items
}

// Count is the sum of all quantities (the badge value), not the line count.
func (s *Selection) Count() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the selection holds no line items.
func (s *Selection) IsEmpty() bool {
	return len(s.items) == 0
}

// Subtotal is the sum of all extended line prices, rounded to cents.
func (s *Selection) Subtotal() valueobject.Money {
	subtotal := valueobject.Zero(valueobject.DefaultCurrency)
	if len(s.items) > 0 {
		subtotal = valueobject.Zero(s.items[0].Product.Price.Currency())
	}
	for _, item := range s.items {
		subtotal = subtotal.MustAdd(item.LineTotal())
	}
	return subtotal.RoundCents()
}

func (s *Selection) removeAt(pos int) {
	delete(s.index, s.items[pos].Key)
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].Key] = i
	}
}
