package ordering

import (
	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared"
)

// Event types emitted by the ordering context
const (
	EventSelectionChanged   = "ordering.selection.changed"
	EventOrderSubmitted     = "ordering.order.submitted"
	EventOrderStatusChanged = "ordering.order.status_changed"
)

// SelectionChangeKind describes what mutated a selection.
type SelectionChangeKind string

const (
	ChangeItemAdded   SelectionChangeKind = "item_added"
	ChangeItemRemoved SelectionChangeKind = "item_removed"
	ChangeItemUpdated SelectionChangeKind = "item_updated"
	ChangeCleared     SelectionChangeKind = "cleared"
)

// SelectionChangedEvent is published after every selection mutation so UI
// consumers can refresh badges and cart views.
type SelectionChangedEvent struct {
	shared.BaseDomainEvent
	Change    SelectionChangeKind `json:"change"`
	LineKey   string              `json:"line_key,omitempty"`
	ItemCount int                 `json:"item_count"`
}

// NewSelectionChangedEvent creates a selection change event
func NewSelectionChangedEvent(selectionID uuid.UUID, change SelectionChangeKind, lineKey string, itemCount int) *SelectionChangedEvent {
	return &SelectionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSelectionChanged, "Selection", selectionID),
		Change:          change,
		LineKey:         lineKey,
		ItemCount:       itemCount,
	}
}

// OrderSubmittedEvent is published once per confirmed submission,
// remote or local.
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	HumanCode string      `json:"human_code"`
	Origin    OrderOrigin `json:"origin"`
	Total     string      `json:"total"`
}

// NewOrderSubmittedEvent creates an order submitted event
func NewOrderSubmittedEvent(order *SubmittedOrder) *OrderSubmittedEvent {
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderSubmitted, "SubmittedOrder", order.ID),
		HumanCode:       order.HumanCode,
		Origin:          order.Origin,
		Total:           order.Total.String(),
	}
}

// OrderStatusChangedEvent is published when the status watcher observes a
// backend-driven status transition.
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	From OrderStatus `json:"from"`
	To   OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates an order status change event
func NewOrderStatusChangedEvent(orderID uuid.UUID, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderStatusChanged, "SubmittedOrder", orderID),
		From:            from,
		To:              to,
	}
}
