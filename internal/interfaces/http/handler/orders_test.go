package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderingapp "github.com/tableside/backend/internal/application/ordering"
	"github.com/tableside/backend/internal/infrastructure/cache"
)

// newOrderEngine wires submission and history over in-memory stores with no
// remote gateway, so every submission takes the local path.
func newOrderEngine(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	selectionRepo := newMemSelectionRepo()
	historyRepo := newMemHistoryRepo()
	attemptStore := cache.NewInMemoryAttemptStore()
	t.Cleanup(func() { _ = attemptStore.Close() })

	selectionService := orderingapp.NewSelectionService(selectionRepo, testLogger())
	submissionService := orderingapp.NewSubmissionService(
		selectionRepo, historyRepo, &memCounter{}, nil, attemptStore, testPricing(), testLogger())
	historyService := orderingapp.NewHistoryService(historyRepo, testLogger())

	engine := newTestRouter(
		NewSelectionHandler(selectionService),
		NewOrderHandler(submissionService, historyService),
	)

	selectionID := uuid.New()
	w := doJSON(t, engine, http.MethodPost,
		"/api/v1/selections/"+selectionID.String()+"/items",
		addItemBody("latte", "Latte", "4.50", 2))
	require.Equal(t, http.StatusOK, w.Code)

	return engine, selectionID
}

func submitBody(attemptID string) map[string]any {
	return map[string]any{
		"attempt_id":         attemptID,
		"table_number":       "12",
		"session_id":         "sess-1",
		"device_fingerprint": "fp-1",
	}
}

func TestOrderHandler_Submit_LocalFallback(t *testing.T) {
	engine, selectionID := newOrderEngine(t)
	base := "/api/v1/selections/" + selectionID.String()

	w := doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-1"))

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "A-001", data["human_code"])
	assert.Equal(t, "local", data["origin"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "9", data["subtotal"])
	assert.Equal(t, "9.9", data["total"])
	assert.Equal(t, "12", data["table_number"])

	// the selection is cleared once the order is confirmed
	w = doJSON(t, engine, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeData(t, w)["item_count"])
}

func TestOrderHandler_Submit_SequentialCodes(t *testing.T) {
	engine, selectionID := newOrderEngine(t)
	base := "/api/v1/selections/" + selectionID.String()

	w := doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "A-001", decodeData(t, w)["human_code"])

	w = doJSON(t, engine, http.MethodPost, base+"/items", addItemBody("mocha", "Mocha", "5.00", 1))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-2"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "A-002", decodeData(t, w)["human_code"])
}

func TestOrderHandler_Submit_ReplayedAttemptRejected(t *testing.T) {
	engine, selectionID := newOrderEngine(t)
	base := "/api/v1/selections/" + selectionID.String()

	w := doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodPost, base+"/items", addItemBody("mocha", "Mocha", "5.00", 1))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-1"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderHandler_Submit_NegativeTipValueRejected(t *testing.T) {
	engine, selectionID := newOrderEngine(t)
	base := "/api/v1/selections/" + selectionID.String()

	body := submitBody("attempt-1")
	body["tip_mode"] = "custom"
	body["tip_value"] = "-5"
	w := doJSON(t, engine, http.MethodPost, base+"/submit", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the selection must be left intact for a corrected retry
	w = doJSON(t, engine, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeData(t, w)["item_count"])
}

func TestOrderHandler_Submit_EmptySelectionRejected(t *testing.T) {
	engine, _ := newOrderEngine(t)

	w := doJSON(t, engine, http.MethodPost,
		"/api/v1/selections/"+uuid.NewString()+"/submit", submitBody("attempt-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Submit_MissingAttemptIDRejected(t *testing.T) {
	engine, selectionID := newOrderEngine(t)

	w := doJSON(t, engine, http.MethodPost,
		"/api/v1/selections/"+selectionID.String()+"/submit",
		map[string]any{"table_number": "12"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_List_ByDevice(t *testing.T) {
	engine, selectionID := newOrderEngine(t)
	base := "/api/v1/selections/" + selectionID.String()

	w := doJSON(t, engine, http.MethodPost, base+"/submit", submitBody("attempt-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/orders?session_id=sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "A-001", resp.Data[0]["human_code"])
}

func TestOrderHandler_List_RequiresDeviceIdentity(t *testing.T) {
	engine, _ := newOrderEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/orders", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	engine, _ := newOrderEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
