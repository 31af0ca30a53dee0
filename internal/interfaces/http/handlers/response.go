// internal/interfaces/http/handlers/response.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/order"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
	"github.com/your-org/foodcart-backend/internal/domain/rating"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
)

// CartResponse is the cart as shown to the storefront
type CartResponse struct {
	Packs            []cart.Pack            `json:"packs"`
	ActivePackID     *string                `json:"active_pack_id"`
	BrownBagQuantity int                    `json:"brown_bag_quantity"`
	Promo            *cart.PromoApplication `json:"promo"`
	IsEmpty          bool                   `json:"is_empty"`
	Totals           pricing.Totals         `json:"totals"`
	Display          DisplayTotals          `json:"display"`
}

// DisplayTotals holds the rounded, formatted amounts
type DisplayTotals struct {
	Subtotal       string `json:"subtotal"`
	BrownBagAmount string `json:"brown_bag_amount"`
	DiscountAmount string `json:"discount_amount"`
	Total          string `json:"total"`
}

func newCartResponse(state cart.State, engine pricing.Engine) CartResponse {
	totals := engine.Compute(state)

	resp := CartResponse{
		Packs:            state.Packs,
		BrownBagQuantity: state.BrownBagQuantity,
		Promo:            state.Promo,
		IsEmpty:          state.IsEmpty(),
		Totals:           totals,
		Display: DisplayTotals{
			Subtotal:       engine.Format(totals.Subtotal),
			BrownBagAmount: engine.Format(totals.BrownBagAmount),
			DiscountAmount: engine.Format(totals.DiscountAmount),
			Total:          engine.Format(totals.Total),
		},
	}
	if state.ActivePackID != "" {
		activePackID := state.ActivePackID
		resp.ActivePackID = &activePackID
	}
	if resp.Packs == nil {
		resp.Packs = []cart.Pack{}
	}
	return resp
}

var validationCodes = map[error]string{
	checkout.ErrCartEmpty:             "cart_empty",
	checkout.ErrInvalidAddress:        "invalid_address",
	checkout.ErrPaymentMethodRequired: "payment_method_required",
	checkout.ErrUnknownPaymentMethod:  "unknown_payment_method",
	checkout.ErrPromoCodeRequired:     "promo_code_required",
}

// respondError maps domain errors to status codes and user-facing bodies
func respondError(c *gin.Context, logger *logrus.Entry, err error) {
	for sentinel, code := range validationCodes {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
				"code":  code,
			})
			return
		}
	}

	var (
		mismatch      *savedcart.VendorMismatchError
		submissionErr *checkout.SubmissionError
		serviceErr    *order.ServiceError
	)

	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":          err.Error(),
			"login_required": true,
		})

	case errors.As(err, &mismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error":                 "Your cart has items from another vendor. Clear it and restore the saved cart?",
			"code":                  "vendor_mismatch",
			"confirmation_required": true,
			"cart_vendor_id":        mismatch.CartVendorID,
			"saved_vendor_id":       mismatch.SavedVendorID,
		})

	case errors.Is(err, cart.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error": "This request is already being processed",
			"code":  "submit_in_progress",
		})

	case errors.Is(err, savedcart.ErrSavedCartNotFound), errors.Is(err, rating.ErrRatingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})

	case errors.As(err, &submissionErr):
		if errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":          checkout.ErrAuthRequired.Error(),
				"login_required": true,
			})
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{
			"error":     submissionErr.Message,
			"retryable": true,
		})

	default:
		logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

// bindOptionalJSON binds the body when one was sent. It writes the error
// response and returns false on malformed input.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return false
	}
	return true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
