// internal/infrastructure/orderapi/client.go
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/order"
)

const maxResponseSize = 1 << 20

// Client talks to the external order service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewClient creates an order service client. Every request is bounded by
// timeout in addition to the caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Entry) *Client {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithField("component", "orderapi"),
	}
}

// savedCart is the wire shape of a saved cart: pack-tagged lines, the same
// layout the save-for-later request uses
type savedCart struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	VendorID         string            `json:"vendor_id"`
	Items            []order.OrderLine `json:"items"`
	ActivePackID     string            `json:"active_pack_id,omitempty"`
	BrownBagQuantity int               `json:"brown_bag_quantity"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (s savedCart) toDomain() order.SavedCart {
	return order.SavedCart{
		ID:       s.ID,
		UserID:   s.UserID,
		VendorID: s.VendorID,
		Cart: cart.Snapshot{
			Packs:            order.GroupLines(s.Items),
			ActivePackID:     s.ActivePackID,
			BrownBagQuantity: s.BrownBagQuantity,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// SubmitOrder handles POST /orders
func (c *Client) SubmitOrder(ctx context.Context, token string, req order.OrderRequest) (order.OrderConfirmation, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var conf order.OrderConfirmation
	if err := c.do(ctx, http.MethodPost, "/orders", token, headers, req, &conf); err != nil {
		return order.OrderConfirmation{}, err
	}
	if conf.OrderID == "" {
		return order.OrderConfirmation{}, &order.ServiceError{Message: "response has no order id"}
	}
	return conf, nil
}

// SaveCart handles POST /saved-carts
func (c *Client) SaveCart(ctx context.Context, token string, req order.SaveCartRequest) (order.SavedCart, error) {
	var out savedCart
	if err := c.do(ctx, http.MethodPost, "/saved-carts", token, nil, req, &out); err != nil {
		return order.SavedCart{}, err
	}
	return out.toDomain(), nil
}

// ListSavedCarts handles GET /saved-carts
func (c *Client) ListSavedCarts(ctx context.Context, token string) ([]order.SavedCart, error) {
	var out []savedCart
	if err := c.do(ctx, http.MethodGet, "/saved-carts", token, nil, nil, &out); err != nil {
		return nil, err
	}

	carts := make([]order.SavedCart, 0, len(out))
	for _, sc := range out {
		carts = append(carts, sc.toDomain())
	}
	return carts, nil
}

// DeleteSavedCart handles DELETE /saved-carts/:id
func (c *Client) DeleteSavedCart(ctx context.Context, token, id string) error {
	if id == "" {
		return fmt.Errorf("saved cart id is empty")
	}
	return c.do(ctx, http.MethodDelete, "/saved-carts/"+url.PathEscape(id), token, nil, nil, nil)
}

// RedeemPromo handles POST /promos/redeem
func (c *Client) RedeemPromo(ctx context.Context, token, code string) (order.Promo, error) {
	var promo order.Promo
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/promos/redeem", token, nil, body, &promo); err != nil {
		return order.Promo{}, err
	}
	return promo, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status_code": resp.StatusCode,
		"latency":     time.Since(start),
	}).Debug("Order service call completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &order.ServiceError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody, resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	// Responses may come wrapped as {"message": ..., "data": ...}
	if data := gjson.GetBytes(respBody, "data"); data.Exists() && (data.IsObject() || data.IsArray()) {
		respBody = []byte(data.Raw)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage picks the most specific human readable message out of an
// error body
func errorMessage(body []byte, statusCode int) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error", "detail"} {
			if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !gjson.ValidBytes(body) {
		return text
	}
	return http.StatusText(statusCode)
}
