// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
)

// AddItemRequest represents an item added to a pack
type AddItemRequest struct {
	ID           string          `json:"id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	Image        string          `json:"image"`
	BusinessID   string          `json:"business_id"`
	BusinessName string          `json:"business_name"`
}

// UpdateQuantityRequest sets the quantity of an item. Zero removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SetActivePackRequest selects the pack receiving new items
type SetActivePackRequest struct {
	PackID string `json:"pack_id" binding:"required"`
}

// BrownBagRequest sets the brown bag count. Negative values clamp to zero.
type BrownBagRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	sessions *Sessions
	pricing  pricing.Engine
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *Sessions, engine pricing.Engine) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		pricing:  engine,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartResponse(store.State(), h.pricing),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	h.dispatch(c, "Cart cleared successfully", cart.ClearCart{})
}

// AddPack handles POST /cart/packs
func (h *CartHandler) AddPack(c *gin.Context) {
	h.dispatchStatus(c, http.StatusCreated, "Pack added successfully", cart.AddPack{})
}

// RemovePack handles DELETE /cart/packs/:packId
func (h *CartHandler) RemovePack(c *gin.Context) {
	h.dispatch(c, "Pack removed successfully", cart.RemovePack{PackID: c.Param("packId")})
}

// DuplicatePack handles POST /cart/packs/:packId/duplicate
func (h *CartHandler) DuplicatePack(c *gin.Context) {
	h.dispatchStatus(c, http.StatusCreated, "Pack duplicated successfully", cart.DuplicatePack{PackID: c.Param("packId")})
}

// SetActivePack handles PUT /cart/active-pack
func (h *CartHandler) SetActivePack(c *gin.Context) {
	var req SetActivePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.dispatch(c, "Active pack updated successfully", cart.SetActivePack{PackID: req.PackID})
}

// AddItem handles POST /cart/packs/:packId/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price must not be negative",
		})
		return
	}

	item := cart.CartItem{
		ID:           req.ID,
		Name:         req.Name,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Image:        req.Image,
		BusinessID:   req.BusinessID,
		BusinessName: req.BusinessName,
	}
	h.dispatch(c, "Item added to cart successfully", cart.AddItemToPack{PackID: c.Param("packId"), Item: item})
}

// UpdateItemQuantity handles PUT /cart/packs/:packId/items/:itemId
func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.dispatch(c, "Cart item updated successfully", cart.UpdateItemQuantity{
		PackID:   c.Param("packId"),
		ItemID:   c.Param("itemId"),
		Quantity: *req.Quantity,
	})
}

// SetBrownBags handles PUT /cart/brown-bags
func (h *CartHandler) SetBrownBags(c *gin.Context) {
	var req BrownBagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.dispatch(c, "Brown bags updated successfully", cart.SetBrownBagQuantity{Quantity: req.Quantity})
}

func (h *CartHandler) dispatch(c *gin.Context, message string, action cart.Action) {
	h.dispatchStatus(c, http.StatusOK, message, action)
}

func (h *CartHandler) dispatchStatus(c *gin.Context, status int, message string, action cart.Action) {
	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	state := store.Dispatch(c.Request.Context(), action)

	c.JSON(status, gin.H{
		"message": message,
		"data":    newCartResponse(state, h.pricing),
	})
}
