package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// SelectionModel is the persistence model for a selection aggregate
type SelectionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SelectionModel) TableName() string {
	return "selections"
}

// LineItemModel is one persisted selection line. Position preserves the
// display order across reloads.
type LineItemModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	SelectionID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_selection_key,priority:1"`
	LineKey        string          `gorm:"type:varchar(500);not null;uniqueIndex:idx_line_selection_key,priority:2"`
	ProductID      string          `gorm:"type:varchar(100);not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	ProductPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	Category       string          `gorm:"type:varchar(100)"`
	ImageURL       string          `gorm:"type:varchar(500)"`
	Quantity       int             `gorm:"not null;default:1"`
	Position       int             `gorm:"not null;default:0"`
	Customizations string          `gorm:"type:text"`
	AddedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "selection_line_items"
}

// customizationJSON is the stored form of one customization
type customizationJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Group string          `json:"group,omitempty"`
}

// ToDomain converts the persisted line to a domain line item
func (m *LineItemModel) ToDomain() (*ordering.LineItem, error) {
	currency := valueobject.Currency(m.Currency)

	var storedCustomizations []customizationJSON
	if m.Customizations != "" {
		if err := json.Unmarshal([]byte(m.Customizations), &storedCustomizations); err != nil {
			return nil, err
		}
	}
	customizations := make([]ordering.Customization, len(storedCustomizations))
	for i, c := range storedCustomizations {
		price, err := valueobject.NewMoney(c.Price, currency)
		if err != nil {
			return nil, err
		}
		customizations[i] = ordering.Customization{
			ID:    c.ID,
			Name:  c.Name,
			Price: price,
			Group: c.Group,
		}
	}

	price, err := valueobject.NewMoney(m.ProductPrice, currency)
	if err != nil {
		return nil, err
	}
	return &ordering.LineItem{
		Key: m.LineKey,
		Product: ordering.Product{
			ID:       m.ProductID,
			Name:     m.ProductName,
			Price:    price,
			Category: m.Category,
			ImageURL: m.ImageURL,
		},
		Quantity:       m.Quantity,
		Customizations: customizations,
		AddedAt:        m.AddedAt,
	}, nil
}

// LineItemModelFromDomain creates a persistence model from a domain line item
func LineItemModelFromDomain(selectionID uuid.UUID, item *ordering.LineItem, position int) (*LineItemModel, error) {
	stored := make([]customizationJSON, len(item.Customizations))
	for i, c := range item.Customizations {
		stored[i] = customizationJSON{
			ID:    c.ID,
			Name:  c.Name,
			Price: c.Price.Amount(),
			Group: c.Group,
		}
	}
	serialized := ""
	if len(stored) > 0 {
		raw, err := json.Marshal(stored)
		if err != nil {
			return nil, err
		}
		serialized = string(raw)
	}
	return &LineItemModel{
		SelectionID:    selectionID,
		LineKey:        item.Key,
		ProductID:      item.Product.ID,
		ProductName:    item.Product.Name,
		ProductPrice:   item.Product.Price.Amount(),
		Currency:       string(item.Product.Price.Currency()),
		Category:       item.Product.Category,
		ImageURL:       item.Product.ImageURL,
		Quantity:       item.Quantity,
		Position:       position,
		Customizations: serialized,
		AddedAt:        item.AddedAt,
	}, nil
}

// OrderModel is the persistence model for a mirrored submitted order
type OrderModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	HumanCode         string          `gorm:"type:varchar(50);not null;index"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	Origin            string          `gorm:"type:varchar(10);not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	TableNumber       string          `gorm:"type:varchar(20)"`
	CustomerName      string          `gorm:"type:varchar(200)"`
	ConsumptionType   string          `gorm:"type:varchar(20)"`
	ServiceType       string          `gorm:"type:varchar(20)"`
	SessionID         string          `gorm:"type:varchar(100);index"`
	DeviceFingerprint string          `gorm:"type:varchar(200);index"`
	CustomerNotes     string          `gorm:"type:text"`
	SubmittedAt       time.Time       `gorm:"not null;index"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one denormalized order line snapshot
type OrderItemModel struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	ProductID   string          `gorm:"type:varchar(100);not null"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExtrasTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Extras      string          `gorm:"type:text"`
	ImageURL    string          `gorm:"type:varchar(500)"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persisted order to a domain submitted order
func (m *OrderModel) ToDomain() (*ordering.SubmittedOrder, error) {
	currency := valueobject.Currency(m.Currency)
	subtotal, err := valueobject.NewMoney(m.Subtotal, currency)
	if err != nil {
		return nil, err
	}
	total, err := valueobject.NewMoney(m.Total, currency)
	if err != nil {
		return nil, err
	}

	items := make([]ordering.SubmittedItem, len(m.Items))
	for i, im := range m.Items {
		var storedExtras []customizationJSON
		if im.Extras != "" {
			if err := json.Unmarshal([]byte(im.Extras), &storedExtras); err != nil {
				return nil, err
			}
		}
		extras := make([]ordering.Customization, len(storedExtras))
		for j, c := range storedExtras {
			price, err := valueobject.NewMoney(c.Price, currency)
			if err != nil {
				return nil, err
			}
			extras[j] = ordering.Customization{ID: c.ID, Name: c.Name, Price: price, Group: c.Group}
		}
		unitPrice, err := valueobject.NewMoney(im.UnitPrice, currency)
		if err != nil {
			return nil, err
		}
		extrasTotal, err := valueobject.NewMoney(im.ExtrasTotal, currency)
		if err != nil {
			return nil, err
		}
		lineTotal, err := valueobject.NewMoney(im.LineTotal, currency)
		if err != nil {
			return nil, err
		}
		items[i] = ordering.SubmittedItem{
			Name:        im.Name,
			ProductID:   im.ProductID,
			Quantity:    im.Quantity,
			UnitPrice:   unitPrice,
			ExtrasTotal: extrasTotal,
			LineTotal:   lineTotal,
			Extras:      extras,
			ImageURL:    im.ImageURL,
		}
	}

	return &ordering.SubmittedOrder{
		ID:        m.ID,
		HumanCode: m.HumanCode,
		Status:    ordering.OrderStatus(m.Status),
		Origin:    ordering.OrderOrigin(m.Origin),
		Total:     total,
		Subtotal:  subtotal,
		Items:     items,
		Table: ordering.TableContext{
			TableNumber:     m.TableNumber,
			CustomerName:    m.CustomerName,
			ConsumptionType: ordering.ConsumptionType(m.ConsumptionType),
			ServiceType:     ordering.ServiceType(m.ServiceType),
		},
		Device: ordering.DeviceContext{
			SessionID:   m.SessionID,
			Fingerprint: m.DeviceFingerprint,
		},
		CustomerNotes: m.CustomerNotes,
		SubmittedAt:   m.SubmittedAt,
	}, nil
}

// OrderModelFromDomain creates a persistence model from a domain order
func OrderModelFromDomain(order *ordering.SubmittedOrder) (*OrderModel, error) {
	items := make([]OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		stored := make([]customizationJSON, len(item.Extras))
		for j, c := range item.Extras {
			stored[j] = customizationJSON{ID: c.ID, Name: c.Name, Price: c.Price.Amount(), Group: c.Group}
		}
		serialized := ""
		if len(stored) > 0 {
			raw, err := json.Marshal(stored)
			if err != nil {
				return nil, err
			}
			serialized = string(raw)
		}
		items[i] = OrderItemModel{
			OrderID:     order.ID,
			Name:        item.Name,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Amount(),
			ExtrasTotal: item.ExtrasTotal.Amount(),
			LineTotal:   item.LineTotal.Amount(),
			Extras:      serialized,
			ImageURL:    item.ImageURL,
			Position:    i,
		}
	}
	return &OrderModel{
		ID:                order.ID,
		HumanCode:         order.HumanCode,
		Status:            order.Status.String(),
		Origin:            string(order.Origin),
		Subtotal:          order.Subtotal.Amount(),
		Total:             order.Total.Amount(),
		Currency:          string(order.Total.Currency()),
		TableNumber:       order.Table.TableNumber,
		CustomerName:      order.Table.CustomerName,
		ConsumptionType:   string(order.Table.ConsumptionType),
		ServiceType:       string(order.Table.ServiceType),
		SessionID:         order.Device.SessionID,
		DeviceFingerprint: order.Device.Fingerprint,
		CustomerNotes:     order.CustomerNotes,
		SubmittedAt:       order.SubmittedAt,
		Items:             items,
	}, nil
}

// CounterModel is the single-row persisted order counter
type CounterModel struct {
	ID        uint      `gorm:"primaryKey"`
	Value     uint64    `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CounterModel) TableName() string {
	return "order_counters"
}

// BillingSessionModel is the persistence model for a billing session
type BillingSessionModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	SelectionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label         string          `gorm:"type:varchar(100);not null"`
	LineItemKeys  string          `gorm:"type:text"`
	PaymentStatus string          `gorm:"type:varchar(10);not null;default:'unpaid'"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillingSessionModel) TableName() string {
	return "billing_sessions"
}

// ToDomain converts the persisted session to a domain session
func (m *BillingSessionModel) ToDomain() (*billing.Session, error) {
	var keys []string
	if m.LineItemKeys != "" {
		if err := json.Unmarshal([]byte(m.LineItemKeys), &keys); err != nil {
			return nil, err
		}
	}
	paid, err := valueobject.NewMoney(m.PaidAmount, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	return &billing.Session{
		ID:            m.ID,
		SelectionID:   m.SelectionID,
		Label:         m.Label,
		LineItemKeys:  keys,
		PaymentStatus: billing.PaymentStatus(m.PaymentStatus),
		PaidAmount:    paid,
	}, nil
}

// BillingSessionModelFromDomain creates a persistence model from a domain session
func BillingSessionModelFromDomain(session *billing.Session) (*BillingSessionModel, error) {
	serialized := ""
	if len(session.LineItemKeys) > 0 {
		raw, err := json.Marshal(session.LineItemKeys)
		if err != nil {
			return nil, err
		}
		serialized = string(raw)
	}
	return &BillingSessionModel{
		ID:            session.ID,
		SelectionID:   session.SelectionID,
		Label:         session.Label,
		LineItemKeys:  serialized,
		PaymentStatus: string(session.PaymentStatus),
		PaidAmount:    session.PaidAmount.Amount(),
		Currency:      string(session.PaidAmount.Currency()),
	}, nil
}
