package billing

import (
	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// PaymentStatus tracks how much of a billing session has been settled.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// Session is a named subset of line items at a shared table, used for
// splitting payment. Every line item belongs to at most one session; the
// unassigned pool is implicit.
type Session struct {
	ID            uuid.UUID
	SelectionID   uuid.UUID
	Label         string
	LineItemKeys  []string
	PaymentStatus PaymentStatus
	PaidAmount    valueobject.Money
}

// NewSession creates an unpaid session for a selection
func NewSession(selectionID uuid.UUID, label string) *Session {
	return &Session{
		ID:            uuid.New(),
		SelectionID:   selectionID,
		Label:         label,
		PaymentStatus: PaymentUnpaid,
		PaidAmount:    valueobject.Zero(valueobject.DefaultCurrency),
	}
}

// Assign adds a line item key to the session. Assigning an already-member
// key is a no-op.
func (s *Session) Assign(key string) {
	for _, k := range s.LineItemKeys {
		if k == key {
			return
		}
	}
	s.LineItemKeys = append(s.LineItemKeys, key)
}

// Unassign removes a line item key from the session.
// Removing an absent key is a no-op.
func (s *Session) Unassign(key string) {
	for i, k := range s.LineItemKeys {
		if k == key {
			s.LineItemKeys = append(s.LineItemKeys[:i], s.LineItemKeys[i+1:]...)
			return
		}
	}
}

// Contains reports whether the key is assigned to this session.
func (s *Session) Contains(key string) bool {
	for _, k := range s.LineItemKeys {
		if k == key {
			return true
		}
	}
	return false
}

// RecordPayment applies a payment against the session's share. Paying the
// full share (or more) marks the session paid; anything less marks it
// partial. Paying against an already-paid session is rejected.
func (s *Session) RecordPayment(amount, share valueobject.Money) error {
	if s.PaymentStatus == PaymentPaid {
		return shared.ErrInvalidState
	}
	if !amount.IsPositive() {
		return shared.ErrInvalidInput
	}
	s.PaidAmount = s.PaidAmount.MustAdd(amount).RoundCents()
	if covered, _ := s.PaidAmount.GreaterThan(share); covered || s.PaidAmount.Equals(share) {
		s.PaymentStatus = PaymentPaid
	} else {
		s.PaymentStatus = PaymentPartial
	}
	return nil
}

// OrderPaymentStatus derives the parent order's payment state: paid only
// when every session is paid, partial as soon as any payment landed.
func OrderPaymentStatus(sessions []*Session) PaymentStatus {
	if len(sessions) == 0 {
		return PaymentUnpaid
	}
	allPaid := true
	anyPayment := false
	for _, s := range sessions {
		switch s.PaymentStatus {
		case PaymentPaid:
			anyPayment = true
		case PaymentPartial:
			anyPayment = true
			allPaid = false
		default:
			allPaid = false
		}
	}
	if allPaid {
		return PaymentPaid
	}
	if anyPayment {
		return PaymentPartial
	}
	return PaymentUnpaid
}
