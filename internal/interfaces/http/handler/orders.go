package handler

import (
	"github.com/gin-gonic/gin"

	orderingapp "github.com/tableside/backend/internal/application/ordering"
	"github.com/tableside/backend/internal/domain/ordering"
)

// OrderHandler handles order submission and history API endpoints
type OrderHandler struct {
	BaseHandler
	submissionService *orderingapp.SubmissionService
	historyService    *orderingapp.HistoryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(submissionService *orderingapp.SubmissionService, historyService *orderingapp.HistoryService) *OrderHandler {
	return &OrderHandler{
		submissionService: submissionService,
		historyService:    historyService,
	}
}

// RegisterRoutes registers order routes on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/selections/:id/submit", h.Submit)

	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
	}
}

// Submit places the order built in a selection
func (h *OrderHandler) Submit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req orderingapp.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.submissionService.Submit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List returns the calling device's mirrored orders, newest first
func (h *OrderHandler) List(c *gin.Context) {
	device := ordering.DeviceContext{
		SessionID:   c.Query("session_id"),
		Fingerprint: c.Query("device_fingerprint"),
	}
	if device.SessionID == "" && device.Fingerprint == "" {
		h.BadRequest(c, "session_id or device_fingerprint is required")
		return
	}

	orders, err := h.historyService.ListByDevice(c.Request.Context(), device)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID returns a single mirrored order
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.historyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
