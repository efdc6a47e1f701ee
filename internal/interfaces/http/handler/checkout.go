package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/tableside/backend/internal/application/billing"
)

// CheckoutHandler handles pricing, split and billing session API endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *billingapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *billingapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// RegisterRoutes registers checkout routes on the API group
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/checkout/config", h.GetConfig)

	selections := rg.Group("/selections/:id")
	{
		selections.GET("/quote", h.Quote)
		selections.POST("/split/equal", h.SplitEqual)
		selections.GET("/split/sessions", h.SplitBySessions)
		selections.POST("/sessions", h.CreateSession)
		selections.GET("/sessions", h.ListSessions)
	}

	sessions := rg.Group("/sessions")
	{
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/items", h.AssignItem)
		sessions.POST("/:id/items/unassign", h.UnassignItem)
		sessions.POST("/:id/payments", h.RecordPayment)
	}
}

// GetConfig returns the merchant pricing configuration so the UI can render
// the tip presets and enabled pricing stages
func (h *CheckoutHandler) GetConfig(c *gin.Context) {
	h.Success(c, billingapp.ToPricingConfigResponse(h.checkoutService.PricingConfig()))
}

// Quote returns the stage-by-stage price breakdown of a selection
func (h *CheckoutHandler) Quote(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req billingapp.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// SplitEqual splits the quoted total evenly across payers, exact to the cent
func (h *CheckoutHandler) SplitEqual(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req billingapp.EqualSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	split, err := h.checkoutService.SplitEqual(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, split)
}

// SplitBySessions allocates the selection's totals across billing sessions
func (h *CheckoutHandler) SplitBySessions(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req billingapp.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	split, err := h.checkoutService.SplitBySessions(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, split)
}

// CreateSession opens a named billing session for a selection
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req billingapp.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.checkoutService.CreateSession(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// ListSessions lists the billing sessions of a selection
func (h *CheckoutHandler) ListSessions(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	sessions, err := h.checkoutService.ListSessions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sessions)
}

// DeleteSession removes a billing session; its items return to the
// unassigned pool
func (h *CheckoutHandler) DeleteSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	if err := h.checkoutService.DeleteSession(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AssignItem assigns a line item to a session, moving it out of any
// sibling session
func (h *CheckoutHandler) AssignItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req billingapp.AssignItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.checkoutService.AssignItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UnassignItem returns a line item to the unassigned pool
func (h *CheckoutHandler) UnassignItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req billingapp.AssignItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.checkoutService.UnassignItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// PaymentResponse pairs the updated session with the derived order-level
// payment status
type PaymentResponse struct {
	Session            *billingapp.SessionResponse `json:"session"`
	OrderPaymentStatus string                      `json:"order_payment_status"`
}

// RecordPayment applies a payment against a session's share
func (h *CheckoutHandler) RecordPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req billingapp.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, orderStatus, err := h.checkoutService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PaymentResponse{Session: session, OrderPaymentStatus: orderStatus})
}
