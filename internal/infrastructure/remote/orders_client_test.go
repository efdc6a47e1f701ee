package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

func clientMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(amount, valueobject.EUR)
	require.NoError(t, err)
	return m
}

func TestOrdersClient_CreateOrder(t *testing.T) {
	orderID := uuid.New()
	submittedAt := time.Now().UTC().Truncate(time.Second)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "10.8", payload["total"])
		assert.Equal(t, "EUR", payload["currency"])
		assert.Equal(t, "12", payload["table_number"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           orderID,
			"human_code":   "ORD-2026-0042",
			"status":       "confirmed",
			"total":        "10.80",
			"currency":     "EUR",
			"submitted_at": submittedAt,
		})
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL)
	order, err := client.CreateOrder(context.Background(), ordering.RemoteOrderDraft{
		Subtotal: clientMoney(t, "9.00"),
		Total:    clientMoney(t, "10.80"),
		Table:    ordering.TableContext{TableNumber: "12"},
	})

	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, "ORD-2026-0042", order.HumanCode)
	assert.Equal(t, ordering.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "10.80 EUR", order.Total.String())
	assert.True(t, submittedAt.Equal(order.SubmittedAt))
}

func TestOrdersClient_CreateOrder_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL)
	order, err := client.CreateOrder(context.Background(), ordering.RemoteOrderDraft{
		Subtotal: clientMoney(t, "9.00"),
		Total:    clientMoney(t, "9.00"),
	})

	assert.Nil(t, order)
	assert.ErrorContains(t, err, "HTTP 503")
}

func TestOrdersClient_CreateOrderItems(t *testing.T) {
	orderID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders/"+orderID.String()+"/items", r.URL.Path)

		var payload []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload, 1)
		assert.Equal(t, "Latte", payload[0]["name"])
		assert.Equal(t, float64(2), payload[0]["quantity"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL)
	err := client.CreateOrderItems(context.Background(), orderID, []ordering.SubmittedItem{
		{
			Name:        "Latte",
			ProductID:   "latte",
			Quantity:    2,
			UnitPrice:   clientMoney(t, "4.50"),
			ExtrasTotal: clientMoney(t, "0.00"),
			LineTotal:   clientMoney(t, "9.00"),
		},
	})

	assert.NoError(t, err)
}

func TestOrdersClient_FetchStatus(t *testing.T) {
	orderID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/orders/"+orderID.String()+"/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "preparing"})
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL)
	status, err := client.FetchStatus(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, ordering.OrderStatusPreparing, status)
}

func TestOrdersClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchStatus(ctx, uuid.New())
	assert.Error(t, err)
}
