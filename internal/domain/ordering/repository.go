package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// SelectionRepository persists in-progress selections across page reloads.
type SelectionRepository interface {
	// FindByID loads a selection. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Selection, error)
	// Save persists the full selection state
	Save(ctx context.Context, selection *Selection) error
	// Delete removes the selection and its line items
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderHistoryRepository is the local order mirror used for offline
// "my orders" viewing. Orders are append-only; only status may change,
// driven by the remote backend.
type OrderHistoryRepository interface {
	// Append stores a confirmed order exactly once.
	// Appending an existing order ID returns shared.ErrAlreadyExists.
	Append(ctx context.Context, order *SubmittedOrder) error
	// FindByID loads a mirrored order. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*SubmittedOrder, error)
	// ListByDevice returns the device's orders, newest first
	ListByDevice(ctx context.Context, device DeviceContext) ([]*SubmittedOrder, error)
	// ListActive returns mirrored remote orders not yet in a terminal status
	ListActive(ctx context.Context) ([]*SubmittedOrder, error)
	// UpdateStatus records an externally driven status transition
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

// OrderCounter is the persisted monotonic sequence behind local order codes.
// Initialized on first use; Reset exists for venue-side day rollover.
type OrderCounter interface {
	// Next increments the counter and returns the new value (1-based)
	Next(ctx context.Context) (uint64, error)
	// Current returns the counter without incrementing
	Current(ctx context.Context) (uint64, error)
	// Reset sets the counter back to zero
	Reset(ctx context.Context) error
}

// RemoteOrder is the backend's view of a created order. HumanCode is an
// opaque backend-assigned string, distinct from the local code space.
type RemoteOrder struct {
	ID          uuid.UUID
	HumanCode   string
	Status      OrderStatus
	Total       valueobject.Money
	SubmittedAt time.Time
}

// RemoteOrderDraft is the payload sent to the backend on order creation.
type RemoteOrderDraft struct {
	Subtotal      valueobject.Money
	Total         valueobject.Money
	Table         TableContext
	Device        DeviceContext
	CustomerNotes string
}

// RemoteOrderGateway is the optional remote order backend. Its absence or
// failure must degrade to local-only mode without surfacing errors to the
// customer.
type RemoteOrderGateway interface {
	// CreateOrder creates the order record on the backend
	CreateOrder(ctx context.Context, draft RemoteOrderDraft) (*RemoteOrder, error)
	// CreateOrderItems attaches line items to a created order. A failure
	// here is a reporting gap, not a fatal error.
	CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []SubmittedItem) error
	// FetchStatus reads the current backend status of an order
	FetchStatus(ctx context.Context, orderID uuid.UUID) (OrderStatus, error)
}
