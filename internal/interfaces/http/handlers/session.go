// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodcart-backend/internal/pkg/metrics"
)

// Sessions resolves the cart store of the calling browser session
type Sessions struct {
	registry     *cart.Registry
	cookieName   string
	cookieTTL    time.Duration
	secureCookie bool
}

// NewSessions creates a session resolver
func NewSessions(registry *cart.Registry, cookieName string, cookieTTL time.Duration, secureCookie bool) *Sessions {
	return &Sessions{
		registry:     registry,
		cookieName:   cookieName,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Store returns the cart store of the session, creating the session on first
// use. On failure the response is already written.
func (s *Sessions) Store(c *gin.Context) (*cart.Store, bool) {
	sessionID := s.getOrCreateSessionID(c)

	store, err := s.registry.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return nil, false
	}
	metrics.SetCachedSessions(s.registry.Len())

	return store, true
}

func (s *Sessions) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(s.cookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(sessionID); parseErr == nil {
			return sessionID
		}
	}

	sessionID = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, sessionID, int(s.cookieTTL.Seconds()), "/", "", s.secureCookie, true)
	return sessionID
}

// customerFromContext returns the authenticated caller, or a guest
func customerFromContext(c *gin.Context) checkout.Customer {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return checkout.Customer{}
	}
	token, _ := middleware.GetAccessTokenFromContext(c)
	return checkout.Customer{UserID: userID, Token: token}
}
