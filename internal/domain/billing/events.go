package billing

import (
	"github.com/tableside/backend/internal/domain/shared"
)

// Event types emitted by the billing context
const (
	EventSessionPaid = "billing.session.paid"
)

// SessionPaidEvent is published when a payment lands against a billing
// session, carrying the derived order-level payment status.
type SessionPaidEvent struct {
	shared.BaseDomainEvent
	SessionStatus PaymentStatus `json:"session_status"`
	OrderStatus   PaymentStatus `json:"order_status"`
}

// NewSessionPaidEvent creates a session paid event
func NewSessionPaidEvent(session *Session, orderStatus PaymentStatus) *SessionPaidEvent {
	return &SessionPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSessionPaid, "Session", session.ID),
		SessionStatus:   session.PaymentStatus,
		OrderStatus:     orderStatus,
	}
}
