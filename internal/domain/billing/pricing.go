package billing

import (
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// TaxDisplayMode controls whether tax is added on top of displayed prices or
// already baked into them.
type TaxDisplayMode string

const (
	// TaxExclusive adds tax on top of the subtotal
	TaxExclusive TaxDisplayMode = "exclusive"
	// TaxInclusive treats prices as tax-inclusive; the breakdown is
	// informational and never added to the total
	TaxInclusive TaxDisplayMode = "inclusive"
)

// ChargeBase selects the amount a percentage charge is computed against.
type ChargeBase string

const (
	BasePreTax  ChargeBase = "pre_tax"
	BasePostTax ChargeBase = "post_tax"
)

// TaxConfig is the merchant tax block. A missing block decodes as disabled.
type TaxConfig struct {
	Enabled     bool
	Percentage  decimal.Decimal
	DisplayMode TaxDisplayMode
}

// ServiceChargeConfig is the merchant service charge block.
type ServiceChargeConfig struct {
	Enabled    bool
	Percentage decimal.Decimal
	Base       ChargeBase
}

// TipConfig is the merchant tip block.
type TipConfig struct {
	Enabled     bool
	Presets     []decimal.Decimal
	AllowCustom bool
	Base        ChargeBase
}

// PricingConfig is supplied by the merchant settings service and never
// mutated by the engine.
type PricingConfig struct {
	Tax           TaxConfig
	ServiceCharge ServiceChargeConfig
	Tip           TipConfig
}

// Totals is the price breakdown for a selection. Every field is rounded to
// cents at its own pipeline stage, not only at the end, so that identical
// inputs always reproduce identical breakdowns and split allocation is exact.
type Totals struct {
	Subtotal            valueobject.Money
	TaxAmount           valueobject.Money
	TaxIncludedPortion  valueobject.Money
	ServiceChargeAmount valueobject.Money
	TipAmount           valueobject.Money
	Total               valueobject.Money
}

var hundred = decimal.NewFromInt(100)

// percentOf computes base * pct / 100 rounded to cents.
// Zero and negative percentages yield zero.
func percentOf(base valueobject.Money, pct decimal.Decimal) valueobject.Money {
	if pct.Sign() <= 0 {
		return valueobject.Zero(base.Currency())
	}
	return base.Multiply(pct.Div(hundred)).RoundCents()
}

// TaxAmountFor computes the additive tax for a subtotal. Inclusive tax adds
// nothing; its informational portion comes from taxIncludedPortion.
func TaxAmountFor(subtotal valueobject.Money, cfg TaxConfig) valueobject.Money {
	if !cfg.Enabled || cfg.DisplayMode == TaxInclusive {
		return valueobject.Zero(subtotal.Currency())
	}
	return percentOf(subtotal, cfg.Percentage)
}

// taxIncludedPortion extracts the tax share already contained in an
// inclusive-tax subtotal: subtotal - subtotal / (1 + pct/100), in cents.
func taxIncludedPortion(subtotal valueobject.Money, pct decimal.Decimal) valueobject.Money {
	if pct.Sign() <= 0 {
		return valueobject.Zero(subtotal.Currency())
	}
	divisor := decimal.NewFromInt(1).Add(pct.Div(hundred))
	net, err := subtotal.Divide(divisor)
	if err != nil {
		return valueobject.Zero(subtotal.Currency())
	}
	return subtotal.MustSubtract(net).RoundCents()
}

// ComputeTotals runs the pricing pipeline: tax, then service charge, then the
// caller-resolved tip, each stage rounded to cents before feeding the next.
// The engine never infers a tip itself; resolve it with ResolveTip first.
func ComputeTotals(subtotal valueobject.Money, cfg PricingConfig, tip valueobject.Money) Totals {
	currency := subtotal.Currency()
	subtotal = subtotal.RoundCents()

	totals := Totals{
		Subtotal:            subtotal,
		TaxAmount:           valueobject.Zero(currency),
		TaxIncludedPortion:  valueobject.Zero(currency),
		ServiceChargeAmount: valueobject.Zero(currency),
		TipAmount:           tip.RoundCents(),
	}

	if cfg.Tax.Enabled {
		switch cfg.Tax.DisplayMode {
		case TaxInclusive:
			totals.TaxIncludedPortion = taxIncludedPortion(subtotal, cfg.Tax.Percentage)
		default:
			totals.TaxAmount = percentOf(subtotal, cfg.Tax.Percentage)
		}
	}

	if cfg.ServiceCharge.Enabled {
		base := subtotal
		// A post-tax base is meaningless under inclusive display: the tax is
		// already in the subtotal, so it falls back to the subtotal alone.
		if cfg.ServiceCharge.Base == BasePostTax && cfg.Tax.Enabled && cfg.Tax.DisplayMode == TaxExclusive {
			base = subtotal.MustAdd(totals.TaxAmount)
		}
		totals.ServiceChargeAmount = percentOf(base, cfg.ServiceCharge.Percentage)
	}

	totals.Total = subtotal.
		MustAdd(totals.TaxAmount).
		MustAdd(totals.ServiceChargeAmount).
		MustAdd(totals.TipAmount).
		RoundCents()
	return totals
}
