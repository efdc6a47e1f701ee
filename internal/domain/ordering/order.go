package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the kitchen-side status of a submitted order.
// Transitions are driven externally (staff system); this engine only
// validates and records them.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status can never change again.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusPreparing || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPreparing || target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusCancelled
	case OrderStatusReady:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return false
}

// OrderOrigin records whether an order was created on the remote backend or
// synthesized locally because the backend was unavailable. The two code
// spaces are never merged or compared.
type OrderOrigin string

const (
	OriginRemote OrderOrigin = "remote"
	OriginLocal  OrderOrigin = "local"
)

// ConsumptionType distinguishes dine-in from takeaway orders.
type ConsumptionType string

const (
	ConsumptionDineIn   ConsumptionType = "dine-in"
	ConsumptionTakeaway ConsumptionType = "takeaway"
)

// ServiceType is how the order reaches the customer.
type ServiceType string

const (
	ServiceTableService  ServiceType = "table-service"
	ServiceCounterPickup ServiceType = "counter-pickup"
	ServiceTakeaway      ServiceType = "takeaway"
)

// TableContext is the table-side context captured at submit time.
type TableContext struct {
	TableNumber     string
	CustomerName    string
	ConsumptionType ConsumptionType
	ServiceType     ServiceType
}

// DeviceContext identifies the ordering device without requiring login.
// It is passed explicitly into the submission coordinator; the engine keeps
// no ambient device state.
type DeviceContext struct {
	SessionID   string
	Fingerprint string
}

// SubmittedItem is the denormalized snapshot of one line item inside a
// submitted order.
type SubmittedItem struct {
	Name        string
	ProductID   string
	Quantity    int
	UnitPrice   valueobject.Money
	ExtrasTotal valueobject.Money
	LineTotal   valueobject.Money
	Extras      []Customization
	ImageURL    string
}

// SubmittedOrder is created exactly once per successful submission attempt
// and never mutated by this engine afterwards; status updates arrive from
// the staff system.
type SubmittedOrder struct {
	ID            uuid.UUID
	HumanCode     string
	Status        OrderStatus
	Origin        OrderOrigin
	Total         valueobject.Money
	Subtotal      valueobject.Money
	Items         []SubmittedItem
	Table         TableContext
	Device        DeviceContext
	CustomerNotes string
	SubmittedAt   time.Time
}

// SubmittedItemsFrom converts selection line items to their order snapshots.
func SubmittedItemsFrom(items []*LineItem) []SubmittedItem {
	out := make([]SubmittedItem, len(items))
	for i, li := range items {
		out[i] = SubmittedItem{
			Name:        li.Product.Name,
			ProductID:   li.Product.ID,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice(),
			ExtrasTotal: li.ExtrasTotal(),
			LineTotal:   li.LineTotal(),
			Extras:      li.Customizations,
			ImageURL:    li.Product.ImageURL,
		}
	}
	return out
}
