// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
)

// PlaceOrderRequest represents the checkout form
type PlaceOrderRequest struct {
	VendorID             string `json:"vendor_id"`
	DeliveryAddress      string `json:"delivery_address"`
	AddressDeliverable   bool   `json:"address_deliverable"`
	PaymentMethod        string `json:"payment_method"`
	VendorInstructions   string `json:"vendor_instructions" binding:"max=500"`
	DeliveryInstructions string `json:"delivery_instructions" binding:"max=500"`
}

// SaveForLaterRequest represents a save-for-later request
type SaveForLaterRequest struct {
	VendorID       string `json:"vendor_id"`
	ClearAfterSave bool   `json:"clear_after_save"`
}

// PromoRequest represents a promo code redemption
type PromoRequest struct {
	Code string `json:"code"`
}

// CheckoutHandler handles checkout and promo endpoints
type CheckoutHandler struct {
	sessions *Sessions
	checkout *checkout.Service
	pricing  pricing.Engine
	logger   *logrus.Entry
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(sessions *Sessions, service *checkout.Service, engine pricing.Engine, logger *logrus.Entry) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		checkout: service,
		pricing:  engine,
		logger:   logger,
	}
}

// PlaceOrder handles POST /checkout/orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	conf, err := h.checkout.PlaceOrder(c.Request.Context(), store, checkout.PlaceOrderRequest{
		Customer:             customerFromContext(c),
		VendorID:             req.VendorID,
		Address:              checkout.Address{Text: req.DeliveryAddress, Deliverable: req.AddressDeliverable},
		PaymentMethod:        req.PaymentMethod,
		VendorInstructions:   req.VendorInstructions,
		DeliveryInstructions: req.DeliveryInstructions,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order":         conf,
			"rating_prompt": true,
			"cart":          newCartResponse(store.State(), h.pricing),
		},
	})
}

// SaveForLater handles POST /checkout/save-for-later
func (h *CheckoutHandler) SaveForLater(c *gin.Context) {
	var req SaveForLaterRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	saved, err := h.checkout.SaveForLater(c.Request.Context(), store, checkout.SaveRequest{
		Customer:       customerFromContext(c),
		VendorID:       req.VendorID,
		ClearAfterSave: req.ClearAfterSave,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Cart saved for later",
		"data": gin.H{
			"saved_cart": saved,
			"cart":       newCartResponse(store.State(), h.pricing),
		},
	})
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment methods retrieved successfully",
		"data":    checkout.PaymentMethods(),
	})
}

// ApplyPromo handles POST /cart/promo
func (h *CheckoutHandler) ApplyPromo(c *gin.Context) {
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	state, err := h.checkout.ApplyPromo(c.Request.Context(), store, customerFromContext(c), req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code applied successfully",
		"data":    newCartResponse(state, h.pricing),
	})
}

// RemovePromo handles DELETE /cart/promo
func (h *CheckoutHandler) RemovePromo(c *gin.Context) {
	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	state := h.checkout.RemovePromo(c.Request.Context(), store)

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code removed successfully",
		"data":    newCartResponse(state, h.pricing),
	})
}
