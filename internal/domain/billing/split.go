package billing

import (
	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// SplitEqual divides a total into n payer shares with an exact-sum
// guarantee: every payer gets the floor-cent base and the first
// `total*100 mod n` payers get one extra cent. Shares never differ by more
// than one cent and always sum to the total. Naive per-payer rounding is
// deliberately not used; it can under- or over-allocate the whole.
func SplitEqual(total valueobject.Money, n int) ([]valueobject.Money, error) {
	if n <= 0 {
		return nil, shared.ErrNoPayers
	}
	currency := total.Currency()
	cents := total.RoundCents().Cents()

	base := cents / int64(n)
	remainder := cents % int64(n)

	shares := make([]valueobject.Money, n)
	for i := range shares {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = valueobject.FromCents(c, currency)
	}
	return shares, nil
}

// SessionShare is one billing session's slice of an order's totals.
type SessionShare struct {
	SessionID           uuid.UUID
	Label               string
	Subtotal            valueobject.Money
	TaxAmount           valueobject.Money
	ServiceChargeAmount valueobject.Money
	TipAmount           valueobject.Money
	Total               valueobject.Money
}

// SplitBySessions computes each session's share: the sum of its member line
// items' extended prices, plus a proportional slice of tax, service charge
// and tip based on the session's fraction of the grand subtotal. Each
// component is rounded per session; leftover cents from rounding go to the
// largest session so components still sum exactly to the order's amounts.
// lineTotals maps line item keys to their extended prices.
func SplitBySessions(sessions []*Session, lineTotals map[string]valueobject.Money, totals Totals) ([]SessionShare, error) {
	currency := totals.Subtotal.Currency()

	shares := make([]SessionShare, len(sessions))
	subtotals := make([]valueobject.Money, len(sessions))
	assigned := 0
	largest := 0
	for i, session := range sessions {
		sub := valueobject.Zero(currency)
		for _, key := range session.LineItemKeys {
			if lineTotal, ok := lineTotals[key]; ok {
				sub = sub.MustAdd(lineTotal)
				assigned++
			}
		}
		sub = sub.RoundCents()
		subtotals[i] = sub
		shares[i] = SessionShare{
			SessionID:           session.ID,
			Label:               session.Label,
			Subtotal:            sub,
			TaxAmount:           valueobject.Zero(currency),
			ServiceChargeAmount: valueobject.Zero(currency),
			TipAmount:           valueobject.Zero(currency),
		}
		// strict comparison: on equal subtotals the first largest session
		// keeps the leftover cents, so allocation is deterministic
		if bigger, _ := sub.GreaterThan(subtotals[largest]); bigger {
			largest = i
		}
	}
	if assigned == 0 {
		return nil, shared.ErrNoAssignedItems
	}

	allocate(subtotals, totals.Subtotal, totals.TaxAmount, largest, func(i int, m valueobject.Money) {
		shares[i].TaxAmount = m
	})
	allocate(subtotals, totals.Subtotal, totals.ServiceChargeAmount, largest, func(i int, m valueobject.Money) {
		shares[i].ServiceChargeAmount = m
	})
	allocate(subtotals, totals.Subtotal, totals.TipAmount, largest, func(i int, m valueobject.Money) {
		shares[i].TipAmount = m
	})

	for i := range shares {
		shares[i].Total = shares[i].Subtotal.
			MustAdd(shares[i].TaxAmount).
			MustAdd(shares[i].ServiceChargeAmount).
			MustAdd(shares[i].TipAmount).
			RoundCents()
	}
	return shares, nil
}

// allocate distributes amount across sessions proportionally to their
// subtotals, rounding per session and assigning the leftover cents to the
// largest session.
func allocate(subtotals []valueobject.Money, grandSubtotal, amount valueobject.Money, largest int, set func(int, valueobject.Money)) {
	currency := amount.Currency()
	if amount.IsZero() || grandSubtotal.IsZero() {
		return
	}

	allocated := valueobject.Zero(currency)
	parts := make([]valueobject.Money, len(subtotals))
	for i, sub := range subtotals {
		parts[i] = valueobject.Zero(currency)
		fraction, err := sub.Divide(grandSubtotal.Amount())
		if err != nil {
			continue
		}
		part := amount.Multiply(fraction.Amount()).RoundCents()
		parts[i] = part
		allocated = allocated.MustAdd(part)
	}

	leftover := amount.MustSubtract(allocated)
	if !leftover.IsZero() {
		parts[largest] = parts[largest].MustAdd(leftover)
	}
	for i, part := range parts {
		set(i, part)
	}
}
