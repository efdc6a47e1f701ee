package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/interfaces/http/middleware"
	"github.com/tableside/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// memSelectionRepo is an in-memory SelectionRepository for handler tests
type memSelectionRepo struct {
	mu         sync.Mutex
	selections map[uuid.UUID]*ordering.Selection
}

func newMemSelectionRepo() *memSelectionRepo {
	return &memSelectionRepo{selections: make(map[uuid.UUID]*ordering.Selection)}
}

func (r *memSelectionRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Selection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.selections[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *memSelectionRepo) Save(_ context.Context, selection *ordering.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[selection.ID] = selection
	return nil
}

func (r *memSelectionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selections, id)
	return nil
}

// memHistoryRepo is an in-memory OrderHistoryRepository for handler tests
type memHistoryRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*ordering.SubmittedOrder
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{orders: make(map[uuid.UUID]*ordering.SubmittedOrder)}
}

func (r *memHistoryRepo) Append(_ context.Context, order *ordering.SubmittedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memHistoryRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.SubmittedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *memHistoryRepo) ListByDevice(_ context.Context, device ordering.DeviceContext) ([]*ordering.SubmittedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ordering.SubmittedOrder
	for _, order := range r.orders {
		if order.Device.SessionID == device.SessionID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) ListActive(_ context.Context) ([]*ordering.SubmittedOrder, error) {
	return nil, nil
}

func (r *memHistoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, status ordering.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	order.Status = status
	return nil
}

// memCounter is an in-memory OrderCounter for handler tests
type memCounter struct {
	mu    sync.Mutex
	value uint64
}

func (c *memCounter) Next(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value, nil
}

func (c *memCounter) Current(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}

func (c *memCounter) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = 0
	return nil
}

// memSessionRepo is an in-memory billing SessionRepository for handler tests
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*billing.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*billing.Session)}
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *memSessionRepo) FindBySelection(_ context.Context, selectionID uuid.UUID) ([]*billing.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*billing.Session
	for _, s := range r.sessions {
		if s.SelectionID == selectionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Save(_ context.Context, session *billing.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// testPricing is a 10% exclusive tax venue with tipping enabled
func testPricing() billing.PricingConfig {
	return billing.PricingConfig{
		Tax: billing.TaxConfig{
			Enabled:     true,
			Percentage:  decimal.NewFromInt(10),
			DisplayMode: billing.TaxExclusive,
		},
		Tip: billing.TipConfig{
			Enabled:     true,
			Presets:     []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(15)},
			AllowCustom: true,
			Base:        billing.BasePreTax,
		},
	}
}

// newTestRouter wires registrars into a versioned engine the way main does
func newTestRouter(registrars ...router.RouteRegistrar) *gin.Engine {
	engine := gin.New()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, registrar := range registrars {
		r.Register(registrar)
	}
	r.Setup()
	return engine
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func addItemBody(productID, name, price string, quantity int) map[string]any {
	return map[string]any{
		"product": map[string]any{
			"id":    productID,
			"name":  name,
			"price": price,
		},
		"quantity": quantity,
	}
}
