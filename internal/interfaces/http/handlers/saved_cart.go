// internal/interfaces/http/handlers/saved_cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
)

// RestoreRequest represents a saved cart restore
type RestoreRequest struct {
	ClearAfterRestore bool `json:"clear_after_restore"`
	ConfirmReplace    bool `json:"confirm_replace"`
}

// SavedCartHandler handles saved cart endpoints
type SavedCartHandler struct {
	sessions *Sessions
	manager  *savedcart.Manager
	pricing  pricing.Engine
	logger   *logrus.Entry
}

// NewSavedCartHandler creates a new saved cart handler
func NewSavedCartHandler(sessions *Sessions, manager *savedcart.Manager, engine pricing.Engine, logger *logrus.Entry) *SavedCartHandler {
	return &SavedCartHandler{
		sessions: sessions,
		manager:  manager,
		pricing:  engine,
		logger:   logger,
	}
}

// ListSavedCarts handles GET /saved-carts
func (h *SavedCartHandler) ListSavedCarts(c *gin.Context) {
	carts, err := h.manager.List(c.Request.Context(), customerFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Saved carts retrieved successfully",
		"data":    carts,
	})
}

// RestoreSavedCart handles POST /saved-carts/:id/restore
func (h *SavedCartHandler) RestoreSavedCart(c *gin.Context) {
	var req RestoreRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	customer := customerFromContext(c)

	saved, err := h.manager.Find(ctx, customer, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	store, ok := h.sessions.Store(c)
	if !ok {
		return
	}

	result, err := h.manager.Restore(ctx, store, customer, saved, savedcart.RestoreOptions{
		ClearAfterRestore: req.ClearAfterRestore,
		ConfirmReplace:    req.ConfirmReplace,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{
		"message":            "Saved cart restored successfully",
		"data":               newCartResponse(result.State, h.pricing),
		"saved_cart_deleted": result.SavedCartDeleted,
	}
	if result.DeleteErr != nil {
		warning := "Your cart was restored, but we could not delete the saved cart"
		var submissionErr *checkout.SubmissionError
		if errors.As(result.DeleteErr, &submissionErr) {
			warning = "Your cart was restored. " + submissionErr.Message
		}
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSavedCart handles DELETE /saved-carts/:id
func (h *SavedCartHandler) DeleteSavedCart(c *gin.Context) {
	customer := customerFromContext(c)
	if err := h.manager.Delete(c.Request.Context(), customer, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	carts, _ := h.manager.Cached(customer.UserID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Saved cart deleted successfully",
		"data":    carts,
	})
}
