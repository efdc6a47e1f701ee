package billing

import (
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// TipMode is how the customer expressed their tip. Preset and custom are
// mutually exclusive in UI state; the resolver itself carries no memory of
// prior selections.
type TipMode string

const (
	TipNone   TipMode = "none"
	TipPreset TipMode = "preset"
	TipCustom TipMode = "custom"
)

// TipResult is the resolved (amount, percentage) pair. Both sides are always
// populated so the UI can display either representation.
type TipResult struct {
	Mode       TipMode
	Amount     valueobject.Money
	Percentage decimal.Decimal
}

// TipBase returns the amount a tip is computed against: the subtotal alone,
// or subtotal plus tax when the merchant configured a post-tax base.
func TipBase(subtotal, taxAmount valueobject.Money, cfg TipConfig) valueobject.Money {
	if cfg.Base == BasePostTax {
		return subtotal.MustAdd(taxAmount).RoundCents()
	}
	return subtotal.RoundCents()
}

// ResolveTip derives the tip amount/percentage pair from one of three input
// modes. Pure function: preset takes value as a percentage, custom takes it
// as a free-form amount, none ignores it. Negative values are rejected.
func ResolveTip(mode TipMode, value decimal.Decimal, base valueobject.Money) (TipResult, error) {
	currency := base.Currency()
	if mode != TipNone && value.IsNegative() {
		return TipResult{}, shared.ErrInvalidInput
	}
	switch mode {
	case TipNone:
		return TipResult{
			Mode:       TipNone,
			Amount:     valueobject.Zero(currency),
			Percentage: decimal.Zero,
		}, nil

	case TipPreset:
		return TipResult{
			Mode:       TipPreset,
			Amount:     percentOf(base, value),
			Percentage: value,
		}, nil

	case TipCustom:
		amount, err := valueobject.NewMoney(value, currency)
		if err != nil {
			return TipResult{}, shared.ErrInvalidInput
		}
		amount = amount.RoundCents()
		percentage := decimal.Zero
		if !base.IsZero() {
			percentage = amount.Amount().Div(base.Amount()).Mul(hundred).Round(2)
		}
		return TipResult{
			Mode:       TipCustom,
			Amount:     amount,
			Percentage: percentage,
		}, nil
	}
	return TipResult{}, shared.ErrInvalidInput
}
