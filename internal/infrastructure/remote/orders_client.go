package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

const defaultClientTimeout = 30 * time.Second

// OrdersClient implements RemoteOrderGateway against the venue's central
// order backend over JSON.
type OrdersClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOrdersClient creates a client for the given base URL
func NewOrdersClient(baseURL string) *OrdersClient {
	return &OrdersClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
}

// NewOrdersClientWithHTTPClient creates a client with a custom HTTP client
func NewOrdersClientWithHTTPClient(baseURL string, httpClient *http.Client) *OrdersClient {
	return &OrdersClient{baseURL: baseURL, httpClient: httpClient}
}

type createOrderRequest struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	TableNumber     string          `json:"table_number,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	ConsumptionType string          `json:"consumption_type,omitempty"`
	ServiceType     string          `json:"service_type,omitempty"`
	SessionID       string          `json:"session_id,omitempty"`
	Fingerprint     string          `json:"device_fingerprint,omitempty"`
	CustomerNotes   string          `json:"customer_notes,omitempty"`
}

type createOrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	HumanCode   string          `json:"human_code"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

type createOrderItemRequest struct {
	Name        string          `json:"name"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExtrasTotal decimal.Decimal `json:"extras_total"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Extras      []orderExtra    `json:"extras,omitempty"`
}

type orderExtra struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Group string          `json:"group,omitempty"`
}

type orderStatusResponse struct {
	Status string `json:"status"`
}

// CreateOrder creates the order record on the backend
func (c *OrdersClient) CreateOrder(ctx context.Context, draft ordering.RemoteOrderDraft) (*ordering.RemoteOrder, error) {
	payload := createOrderRequest{
		Subtotal:        draft.Subtotal.Amount(),
		Total:           draft.Total.Amount(),
		Currency:        string(draft.Total.Currency()),
		TableNumber:     draft.Table.TableNumber,
		CustomerName:    draft.Table.CustomerName,
		ConsumptionType: string(draft.Table.ConsumptionType),
		ServiceType:     string(draft.Table.ServiceType),
		SessionID:       draft.Device.SessionID,
		Fingerprint:     draft.Device.Fingerprint,
		CustomerNotes:   draft.CustomerNotes,
	}

	var resp createOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/orders", payload, &resp); err != nil {
		return nil, err
	}

	currency := valueobject.Currency(resp.Currency)
	if currency == "" {
		currency = draft.Total.Currency()
	}
	total, err := valueobject.NewMoney(resp.Total, currency)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid total in response: %w", err)
	}
	return &ordering.RemoteOrder{
		ID:          resp.ID,
		HumanCode:   resp.HumanCode,
		Status:      ordering.OrderStatus(resp.Status),
		Total:       total,
		SubmittedAt: resp.SubmittedAt,
	}, nil
}

// CreateOrderItems attaches line items to a created order
func (c *OrdersClient) CreateOrderItems(ctx context.Context, orderID uuid.UUID, items []ordering.SubmittedItem) error {
	payload := make([]createOrderItemRequest, len(items))
	for i, item := range items {
		extras := make([]orderExtra, len(item.Extras))
		for j, e := range item.Extras {
			extras[j] = orderExtra{ID: e.ID, Name: e.Name, Price: e.Price.Amount(), Group: e.Group}
		}
		payload[i] = createOrderItemRequest{
			Name:        item.Name,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Amount(),
			ExtrasTotal: item.ExtrasTotal.Amount(),
			LineTotal:   item.LineTotal.Amount(),
			Extras:      extras,
		}
	}
	path := fmt.Sprintf("/api/v1/orders/%s/items", orderID)
	return c.doJSON(ctx, http.MethodPost, path, payload, nil)
}

// FetchStatus reads the current backend status of an order
func (c *OrdersClient) FetchStatus(ctx context.Context, orderID uuid.UUID) (ordering.OrderStatus, error) {
	var resp orderStatusResponse
	path := fmt.Sprintf("/api/v1/orders/%s/status", orderID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return ordering.OrderStatus(resp.Status), nil
}

func (c *OrdersClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("remote: backend returned HTTP %d: %s", resp.StatusCode, truncate(respBody, 200))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("remote: failed to parse response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ ordering.RemoteOrderGateway = (*OrdersClient)(nil)
