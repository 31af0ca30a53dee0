// internal/interfaces/http/handlers/rating.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/rating"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
)

// RatingService keeps the post-order rating prompts
type RatingService interface {
	Pending(ctx context.Context, userID string) ([]rating.PendingRating, error)
	Dismiss(ctx context.Context, userID, orderID string) error
}

// RatingHandler handles rating prompt endpoints
type RatingHandler struct {
	ratings RatingService
	logger  *logrus.Entry
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratings RatingService, logger *logrus.Entry) *RatingHandler {
	return &RatingHandler{
		ratings: ratings,
		logger:  logger,
	}
}

// GetPending handles GET /ratings/pending
func (h *RatingHandler) GetPending(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	prompts, err := h.ratings.Pending(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if prompts == nil {
		prompts = []rating.PendingRating{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pending ratings retrieved successfully",
		"data":    prompts,
	})
}

// Dismiss handles DELETE /ratings/pending/:orderId
func (h *RatingHandler) Dismiss(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.ratings.Dismiss(c.Request.Context(), userID, c.Param("orderId")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating prompt dismissed",
	})
}
