package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// ProductInput is the catalog snapshot supplied by the UI when adding an
// item. The engine never looks the product up; it trusts the snapshot.
type ProductInput struct {
	ID       string          `json:"id" binding:"required,min=1,max=100"`
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	Price    decimal.Decimal `json:"price" binding:"gte=0"`
	Category string          `json:"category"`
	ImageURL string          `json:"image_url"`
}

// CustomizationInput is one selected modifier in an add request
type CustomizationInput struct {
	ID    string          `json:"id" binding:"required,min=1,max=100"`
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" binding:"gte=0"`
	Group string          `json:"group"`
}

// AddItemRequest adds (or merges) a line item into a selection
type AddItemRequest struct {
	Product        ProductInput         `json:"product" binding:"required"`
	Quantity       int                  `json:"quantity" binding:"omitempty,min=1"`
	Customizations []CustomizationInput `json:"customizations" binding:"omitempty,dive"`
}

// ToggleItemRequest toggles membership of a (product, customizations) pairing
type ToggleItemRequest struct {
	Product        ProductInput         `json:"product" binding:"required"`
	Customizations []CustomizationInput `json:"customizations" binding:"omitempty,dive"`
}

// SubmitOrderRequest places the order built in a selection. AttemptID is the
// client-generated idempotency key for this logical submission.
type SubmitOrderRequest struct {
	AttemptID         string          `json:"attempt_id" binding:"required,min=1,max=100"`
	TableNumber       string          `json:"table_number"`
	CustomerName      string          `json:"customer_name" binding:"omitempty,max=200"`
	ConsumptionType   string          `json:"consumption_type" binding:"omitempty,oneof=dine-in takeaway"`
	ServiceType       string          `json:"service_type" binding:"omitempty,oneof=table-service counter-pickup takeaway"`
	CustomerNotes     string          `json:"customer_notes" binding:"omitempty,max=1000"`
	TipMode           string          `json:"tip_mode" binding:"omitempty,tipmode"`
	TipValue          decimal.Decimal `json:"tip_value" binding:"gte=0"`
	SessionID         string          `json:"session_id"`
	DeviceFingerprint string          `json:"device_fingerprint"`
}

// TableContext converts the request's table fields to the domain context
func (r SubmitOrderRequest) TableContext() ordering.TableContext {
	return ordering.TableContext{
		TableNumber:     r.TableNumber,
		CustomerName:    r.CustomerName,
		ConsumptionType: ordering.ConsumptionType(r.ConsumptionType),
		ServiceType:     ordering.ServiceType(r.ServiceType),
	}
}

// DeviceContext converts the request's device fields to the domain context
func (r SubmitOrderRequest) DeviceContext() ordering.DeviceContext {
	return ordering.DeviceContext{
		SessionID:   r.SessionID,
		Fingerprint: r.DeviceFingerprint,
	}
}

// CustomizationResponse is one modifier in API responses
type CustomizationResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Group string          `json:"group,omitempty"`
}

// LineItemResponse is one selection line in API responses
type LineItemResponse struct {
	Key            string                  `json:"key"`
	ProductID      string                  `json:"product_id"`
	Name           string                  `json:"name"`
	Quantity       int                     `json:"quantity"`
	UnitPrice      decimal.Decimal         `json:"unit_price"`
	ExtrasTotal    decimal.Decimal         `json:"extras_total"`
	LineTotal      decimal.Decimal         `json:"line_total"`
	Customizations []CustomizationResponse `json:"customizations,omitempty"`
	ImageURL       string                  `json:"image_url,omitempty"`
}

// SelectionResponse is the full cart view
type SelectionResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []LineItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Currency  string             `json:"currency"`
}

// SubmittedItemResponse is one order line snapshot in API responses
type SubmittedItemResponse struct {
	Name        string          `json:"name"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExtrasTotal decimal.Decimal `json:"extras_total"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse is a submitted order in API responses
type OrderResponse struct {
	ID            uuid.UUID               `json:"id"`
	HumanCode     string                  `json:"human_code"`
	Status        string                  `json:"status"`
	Origin        string                  `json:"origin"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	Total         decimal.Decimal         `json:"total"`
	Currency      string                  `json:"currency"`
	Items         []SubmittedItemResponse `json:"items"`
	TableNumber   string                  `json:"table_number,omitempty"`
	CustomerName  string                  `json:"customer_name,omitempty"`
	CustomerNotes string                  `json:"customer_notes,omitempty"`
	SubmittedAt   time.Time               `json:"submitted_at"`
}

func toCustomizations(inputs []CustomizationInput) []ordering.Customization {
	if len(inputs) == 0 {
		return nil
	}
	out := make([]ordering.Customization, len(inputs))
	for i, in := range inputs {
		out[i] = ordering.Customization{
			ID:    in.ID,
			Name:  in.Name,
			Price: valueobject.NewMoneyEUR(in.Price),
			Group: in.Group,
		}
	}
	return out
}

func toProduct(in ProductInput) ordering.Product {
	return ordering.Product{
		ID:       in.ID,
		Name:     in.Name,
		Price:    valueobject.NewMoneyEUR(in.Price),
		Category: in.Category,
		ImageURL: in.ImageURL,
	}
}

// ToSelectionResponse converts a selection aggregate to its API view
func ToSelectionResponse(s *ordering.Selection) SelectionResponse {
	items := make([]LineItemResponse, len(s.Items()))
	for i, li := range s.Items() {
		customizations := make([]CustomizationResponse, len(li.Customizations))
		for j, c := range li.Customizations {
			customizations[j] = CustomizationResponse{
				ID:    c.ID,
				Name:  c.Name,
				Price: c.Price.Amount(),
				Group: c.Group,
			}
		}
		items[i] = LineItemResponse{
			Key:            li.Key,
			ProductID:      li.Product.ID,
			Name:           li.Product.Name,
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice().Amount(),
			ExtrasTotal:    li.ExtrasTotal().Amount(),
			LineTotal:      li.LineTotal().Amount(),
			Customizations: customizations,
			ImageURL:       li.Product.ImageURL,
		}
	}
	subtotal := s.Subtotal()
	return SelectionResponse{
		ID:        s.ID,
		Items:     items,
		ItemCount: s.Count(),
		Subtotal:  subtotal.Amount(),
		Currency:  string(subtotal.Currency()),
	}
}

// ToOrderResponse converts a submitted order to its API view
func ToOrderResponse(o *ordering.SubmittedOrder) OrderResponse {
	items := make([]SubmittedItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = SubmittedItemResponse{
			Name:        it.Name,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.Amount(),
			ExtrasTotal: it.ExtrasTotal.Amount(),
			LineTotal:   it.LineTotal.Amount(),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		HumanCode:     o.HumanCode,
		Status:        o.Status.String(),
		Origin:        string(o.Origin),
		Subtotal:      o.Subtotal.Amount(),
		Total:         o.Total.Amount(),
		Currency:      string(o.Total.Currency()),
		Items:         items,
		TableNumber:   o.Table.TableNumber,
		CustomerName:  o.Table.CustomerName,
		CustomerNotes: o.CustomerNotes,
		SubmittedAt:   o.SubmittedAt,
	}
}
