package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/billing"
)

// QuoteRequest asks for a price breakdown of the current selection
type QuoteRequest struct {
	TipMode  string          `form:"tip_mode" json:"tip_mode" binding:"omitempty,tipmode"`
	TipValue decimal.Decimal `form:"tip_value" json:"tip_value" binding:"gte=0"`
}

// TaxConfigResponse is the merchant tax block in API responses
type TaxConfigResponse struct {
	Enabled     bool            `json:"enabled"`
	Percentage  decimal.Decimal `json:"percentage"`
	DisplayMode string          `json:"display_mode"`
}

// ServiceChargeConfigResponse is the merchant service charge block in API
// responses
type ServiceChargeConfigResponse struct {
	Enabled    bool            `json:"enabled"`
	Percentage decimal.Decimal `json:"percentage"`
	Base       string          `json:"base"`
}

// TipConfigResponse is the merchant tip block in API responses. Presets and
// AllowCustom drive which tip inputs the UI offers.
type TipConfigResponse struct {
	Enabled     bool              `json:"enabled"`
	Presets     []decimal.Decimal `json:"presets"`
	AllowCustom bool              `json:"allow_custom"`
	Base        string            `json:"base"`
}

// PricingConfigResponse is the merchant pricing configuration as served to
// the UI
type PricingConfigResponse struct {
	Tax           TaxConfigResponse           `json:"tax"`
	ServiceCharge ServiceChargeConfigResponse `json:"service_charge"`
	Tip           TipConfigResponse           `json:"tip"`
}

// TipResponse is the resolved tip in API responses
type TipResponse struct {
	Mode       string          `json:"mode"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// QuoteResponse is the stage-by-stage price breakdown
type QuoteResponse struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	TaxIncludedPortion  decimal.Decimal `json:"tax_included_portion"`
	ServiceChargeAmount decimal.Decimal `json:"service_charge_amount"`
	Tip                 TipResponse     `json:"tip"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
}

// EqualSplitRequest splits the quoted total across n payers
type EqualSplitRequest struct {
	Payers   int             `json:"payers" binding:"required,min=1"`
	TipMode  string          `json:"tip_mode" binding:"omitempty,tipmode"`
	TipValue decimal.Decimal `json:"tip_value" binding:"gte=0"`
}

// EqualSplitResponse is the list of per-payer shares, exact-sum guaranteed
type EqualSplitResponse struct {
	Total    decimal.Decimal   `json:"total"`
	Shares   []decimal.Decimal `json:"shares"`
	Currency string            `json:"currency"`
}

// CreateSessionRequest opens a named billing session for a selection
type CreateSessionRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100"`
}

// AssignItemRequest assigns a line item to a session
type AssignItemRequest struct {
	LineItemKey string `json:"line_item_key" binding:"required,min=1"`
}

// PaymentRequest records a payment against a session
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

// SessionResponse is a billing session in API responses
type SessionResponse struct {
	ID            uuid.UUID       `json:"id"`
	SelectionID   uuid.UUID       `json:"selection_id"`
	Label         string          `json:"label"`
	LineItemKeys  []string        `json:"line_item_keys"`
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// SessionShareResponse is one session's slice of the order totals
type SessionShareResponse struct {
	SessionID           uuid.UUID       `json:"session_id"`
	Label               string          `json:"label"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	ServiceChargeAmount decimal.Decimal `json:"service_charge_amount"`
	TipAmount           decimal.Decimal `json:"tip_amount"`
	Total               decimal.Decimal `json:"total"`
}

// SessionSplitResponse is the full by-session split with the derived
// order-level payment status
type SessionSplitResponse struct {
	Shares             []SessionShareResponse `json:"shares"`
	OrderPaymentStatus string                 `json:"order_payment_status"`
	Currency           string                 `json:"currency"`
}

// ToQuoteResponse converts computed totals and a resolved tip to the API view
func ToQuoteResponse(totals billing.Totals, tip billing.TipResult) QuoteResponse {
	return QuoteResponse{
		Subtotal:            totals.Subtotal.Amount(),
		TaxAmount:           totals.TaxAmount.Amount(),
		TaxIncludedPortion:  totals.TaxIncludedPortion.Amount(),
		ServiceChargeAmount: totals.ServiceChargeAmount.Amount(),
		Tip: TipResponse{
			Mode:       string(tip.Mode),
			Amount:     tip.Amount.Amount(),
			Percentage: tip.Percentage,
		},
		Total:    totals.Total.Amount(),
		Currency: string(totals.Total.Currency()),
	}
}

// ToPricingConfigResponse converts the merchant pricing configuration to its
// API view
func ToPricingConfigResponse(cfg billing.PricingConfig) PricingConfigResponse {
	presets := cfg.Tip.Presets
	if presets == nil {
		presets = []decimal.Decimal{}
	}
	return PricingConfigResponse{
		Tax: TaxConfigResponse{
			Enabled:     cfg.Tax.Enabled,
			Percentage:  cfg.Tax.Percentage,
			DisplayMode: string(cfg.Tax.DisplayMode),
		},
		ServiceCharge: ServiceChargeConfigResponse{
			Enabled:    cfg.ServiceCharge.Enabled,
			Percentage: cfg.ServiceCharge.Percentage,
			Base:       string(cfg.ServiceCharge.Base),
		},
		Tip: TipConfigResponse{
			Enabled:     cfg.Tip.Enabled,
			Presets:     presets,
			AllowCustom: cfg.Tip.AllowCustom,
			Base:        string(cfg.Tip.Base),
		},
	}
}

// ToSessionResponse converts a billing session to its API view
func ToSessionResponse(s *billing.Session) SessionResponse {
	keys := s.LineItemKeys
	if keys == nil {
		keys = []string{}
	}
	return SessionResponse{
		ID:            s.ID,
		SelectionID:   s.SelectionID,
		Label:         s.Label,
		LineItemKeys:  keys,
		PaymentStatus: string(s.PaymentStatus),
		PaidAmount:    s.PaidAmount.Amount(),
	}
}

// ToSessionShareResponses converts session shares to their API views
func ToSessionShareResponses(shares []billing.SessionShare) []SessionShareResponse {
	out := make([]SessionShareResponse, len(shares))
	for i, share := range shares {
		out[i] = SessionShareResponse{
			SessionID:           share.SessionID,
			Label:               share.Label,
			Subtotal:            share.Subtotal.Amount(),
			TaxAmount:           share.TaxAmount.Amount(),
			ServiceChargeAmount: share.ServiceChargeAmount.Amount(),
			TipAmount:           share.TipAmount.Amount(),
			Total:               share.Total.Amount(),
		}
	}
	return out
}
