package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodcart-backend/internal/pkg/metrics"
)

func TestHandlerExposesRecordedMetrics(t *testing.T) {
	metrics.RecordCartAction("add_pack")
	metrics.RecordSubmission("place_order", nil)
	metrics.RecordSubmission("place_order", errors.New("boom"))
	metrics.RecordRequest("get", "/api/v1/cart", http.StatusOK, 20*time.Millisecond)
	metrics.SetCachedSessions(3)

	done := metrics.RequestStarted()
	done()

	server := httptest.NewServer(metrics.Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `foodcart_cart_actions_total{action="add_pack"}`)
	assert.Contains(t, out, `foodcart_checkout_submissions_total{operation="place_order",result="failure"} 1`)
	assert.Contains(t, out, `foodcart_http_requests_total{method="GET",route="/api/v1/cart",status="200"}`)
	assert.Contains(t, out, `foodcart_cart_cached_sessions 3`)
}
