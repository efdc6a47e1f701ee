package handler

import (
	"github.com/gin-gonic/gin"

	orderingapp "github.com/tableside/backend/internal/application/ordering"
	"github.com/tableside/backend/internal/interfaces/http/dto"
)

// SelectionHandler handles selection (cart) API endpoints
type SelectionHandler struct {
	BaseHandler
	selectionService *orderingapp.SelectionService
}

// NewSelectionHandler creates a new SelectionHandler
func NewSelectionHandler(selectionService *orderingapp.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionService: selectionService}
}

// RegisterRoutes registers selection routes on the API group
func (h *SelectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	selections := rg.Group("/selections")
	{
		selections.GET("/:id", h.Get)
		selections.POST("/:id/items", h.AddItem)
		selections.POST("/:id/items/increment", h.IncrementItem)
		selections.POST("/:id/items/decrement", h.DecrementItem)
		selections.POST("/:id/items/remove", h.RemoveItem)
		selections.POST("/:id/items/toggle", h.ToggleItem)
		selections.DELETE("/:id/items", h.Clear)
	}
}

// Get returns the current state of a selection. An unknown ID yields an
// empty selection rather than a 404, matching first-visit behavior.
func (h *SelectionHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	selection, err := h.selectionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// AddItem adds a line item, merging quantity when the same product and
// customization set is already present
func (h *SelectionHandler) AddItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req orderingapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	selection, err := h.selectionService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// IncrementItem adds one unit of the given product and customization set
func (h *SelectionHandler) IncrementItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req orderingapp.ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	selection, err := h.selectionService.IncrementItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// DecrementItem lowers a line item's quantity by one, removing it at one
func (h *SelectionHandler) DecrementItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req dto.LineKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	selection, err := h.selectionService.DecrementItem(c.Request.Context(), id, req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// RemoveItem removes a line item regardless of quantity
func (h *SelectionHandler) RemoveItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req dto.LineKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	selection, err := h.selectionService.RemoveItem(c.Request.Context(), id, req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// ToggleItem adds the pairing if absent and removes it if present
func (h *SelectionHandler) ToggleItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	var req orderingapp.ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	selection, err := h.selectionService.ToggleItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}

// Clear empties the selection
func (h *SelectionHandler) Clear(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid selection ID format")
		return
	}

	selection, err := h.selectionService.Clear(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, selection)
}
