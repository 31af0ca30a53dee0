package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/your-org/foodcart-backend/internal/config"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
	"github.com/your-org/foodcart-backend/internal/infrastructure/orderapi"
	apihttp "github.com/your-org/foodcart-backend/internal/interfaces/http"
	"github.com/your-org/foodcart-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodcart-backend/internal/pkg/auth"
)

func newServer(t *testing.T) *apihttp.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "test", Version: "0.0.1", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Cart: config.CartConfig{
			StateKeyPrefix:    "cart:session:",
			SessionCacheSize:  4,
			SessionCookieName: "session_id",
			SessionCookieTTL:  time.Hour,
		},
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	registry, err := cart.NewRegistry(cfg.Cart.SessionCacheSize, cfg.Cart.StateKeyPrefix, nil, nil)
	require.NoError(t, err)
	engine, err := pricing.NewEngine("200", "NGN")
	require.NoError(t, err)

	// Nothing listens here; routes that reach the order service are not exercised.
	orders := orderapi.NewClient("http://127.0.0.1:1", time.Second, nil)
	manager, err := savedcart.NewManager(orders, 4, nil)
	require.NoError(t, err)

	return apihttp.NewServer(cfg, apihttp.Dependencies{
		Registry:  registry,
		Pricing:   engine,
		Checkout:  checkout.NewService(orders, engine, nil, nil),
		SavedCart: manager,
		Tokens:    auth.NewJWTManager("server-test-secret", ""),
	}, log)
}

func serve(s *apihttp.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_health(t *testing.T) {
	s := newServer(t)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", gjson.Get(w.Body.String(), "status").String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = serve(s, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", gjson.Get(w.Body.String(), "status").String())
}

func TestServer_metricsCountCartActions(t *testing.T) {
	s := newServer(t)

	w := serve(s, httptest.NewRequest(http.MethodPost, "/api/v1/cart/packs", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `foodcart_cart_actions_total{action="add_pack"}`))
}

func TestServer_routesRequireAuth(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/v1/saved-carts", "/api/v1/ratings/pending"} {
		w := serve(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.True(t, gjson.Get(w.Body.String(), "login_required").Bool(), path)
	}
}

func TestServer_paymentMethodsArePublic(t *testing.T) {
	s := newServer(t)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/payment-methods", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Card", gjson.Get(w.Body.String(), "data.0.name").String())
}
