// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
)

// OrderLine is one cart item flattened out of its pack. PackID lets the order
// service rebuild the packs.
type OrderLine struct {
	PackID       string          `json:"pack_id"`
	ItemID       string          `json:"item_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"` // Price per unit
	Quantity     int             `json:"quantity"`
	BusinessID   string          `json:"business_id,omitempty"`
	BusinessName string          `json:"business_name,omitempty"`
}

// OrderRequest represents the order submission payload
type OrderRequest struct {
	UserID               string          `json:"user_id"`
	VendorID             string          `json:"vendor_id"`
	Items                []OrderLine     `json:"items"`
	Total                decimal.Decimal `json:"total"`
	DeliveryAddress      string          `json:"delivery_address"`
	PromoCode            string          `json:"promo_code,omitempty"`
	VendorInstructions   string          `json:"vendor_instructions,omitempty"`
	DeliveryInstructions string          `json:"delivery_instructions,omitempty"`
	PaymentMethodID      int             `json:"payment_method_id"`
	BrownBagQuantity     int             `json:"brown_bag_quantity"`
	IdempotencyKey       string          `json:"-"`
}

// OrderConfirmation is returned by the order service for a created order
type OrderConfirmation struct {
	OrderID  string          `json:"order_id"`
	UserID   string          `json:"user_id,omitempty"`
	VendorID string          `json:"vendor_id,omitempty"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

// SaveCartRequest represents the save-for-later payload
type SaveCartRequest struct {
	VendorID         string      `json:"vendor_id"`
	Items            []OrderLine `json:"items"`
	ActivePackID     string      `json:"active_pack_id,omitempty"`
	BrownBagQuantity int         `json:"brown_bag_quantity"`
}

// SavedCart is a cart snapshot kept by the order service
type SavedCart struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	VendorID  string        `json:"vendor_id"`
	Cart      cart.Snapshot `json:"cart"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Promo is the promo redemption result
type Promo struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ServiceError is a failure reported by the order service
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("order service: %s", e.Message)
	}
	return fmt.Sprintf("order service returned %d: %s", e.StatusCode, e.Message)
}

// FlattenPacks turns packs into pack-tagged order lines
func FlattenPacks(packs []cart.Pack) []OrderLine {
	lines := make([]OrderLine, 0)
	for _, pack := range packs {
		for _, item := range pack.Items {
			lines = append(lines, OrderLine{
				PackID:       pack.ID,
				ItemID:       item.ID,
				Name:         item.Name,
				Price:        item.Price,
				Quantity:     item.Quantity,
				BusinessID:   item.BusinessID,
				BusinessName: item.BusinessName,
			})
		}
	}
	return lines
}

// GroupLines rebuilds packs from pack-tagged lines, keeping first-seen order
func GroupLines(lines []OrderLine) []cart.Pack {
	packs := make([]cart.Pack, 0)
	index := make(map[string]int)
	for _, line := range lines {
		i, ok := index[line.PackID]
		if !ok {
			i = len(packs)
			index[line.PackID] = i
			packs = append(packs, cart.Pack{ID: line.PackID, Items: []cart.CartItem{}})
		}
		packs[i].Items = append(packs[i].Items, cart.CartItem{
			ID:           line.ItemID,
			Name:         line.Name,
			Price:        line.Price,
			Quantity:     line.Quantity,
			BusinessID:   line.BusinessID,
			BusinessName: line.BusinessName,
		})
	}
	return packs
}
