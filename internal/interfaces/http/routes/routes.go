// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/handlers"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers mounted under /api/v1
type Handlers struct {
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	SavedCart *handlers.SavedCartHandler
	Rating    *handlers.RatingHandler
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	SetupCartRoutes(rg, h, validator)
	SetupCheckoutRoutes(rg, h, validator)
	SetupSavedCartRoutes(rg, h, validator)
	SetupRatingRoutes(rg, h, validator)
}

// SetupCartRoutes sets up cart related routes. Guests keep a cart through
// their session cookie, so auth is optional.
func SetupCartRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(validator))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)

		cart.POST("/packs", h.Cart.AddPack)
		cart.DELETE("/packs/:packId", h.Cart.RemovePack)
		cart.POST("/packs/:packId/duplicate", h.Cart.DuplicatePack)
		cart.POST("/packs/:packId/items", h.Cart.AddItem)
		cart.PUT("/packs/:packId/items/:itemId", h.Cart.UpdateItemQuantity)
		cart.PUT("/active-pack", h.Cart.SetActivePack)
		cart.PUT("/brown-bags", h.Cart.SetBrownBags)

		cart.POST("/promo", h.Checkout.ApplyPromo)
		cart.DELETE("/promo", h.Checkout.RemovePromo)
	}
}

// SetupCheckoutRoutes sets up checkout related routes. Guests get a
// login_required answer from the handlers rather than the middleware so the
// cart checks run first.
func SetupCheckoutRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(validator))
	{
		checkout.GET("/payment-methods", h.Checkout.GetPaymentMethods)
		checkout.POST("/orders", h.Checkout.PlaceOrder)
		checkout.POST("/save-for-later", h.Checkout.SaveForLater)
	}
}

// SetupSavedCartRoutes sets up saved cart routes
func SetupSavedCartRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	saved := rg.Group("/saved-carts")
	saved.Use(middleware.AuthMiddleware(validator))
	{
		saved.GET("", h.SavedCart.ListSavedCarts)
		saved.POST("/:id/restore", h.SavedCart.RestoreSavedCart)
		saved.DELETE("/:id", h.SavedCart.DeleteSavedCart)
	}
}

// SetupRatingRoutes sets up post-order rating prompt routes
func SetupRatingRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	ratings := rg.Group("/ratings")
	ratings.Use(middleware.AuthMiddleware(validator))
	{
		ratings.GET("/pending", h.Rating.GetPending)
		ratings.DELETE("/pending/:orderId", h.Rating.Dismiss)
	}
}
