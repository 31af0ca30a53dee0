// internal/domain/pricing/engine.go
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"golang.org/x/text/currency"
)

var hundred = decimal.NewFromInt(100)

// Totals represents calculated cart totals
type Totals struct {
	ItemCount        int             `json:"item_count"`     // Number of distinct line entries
	TotalQuantity    int             `json:"total_quantity"` // Sum of all quantities
	BrownBagQuantity int             `json:"brown_bag_quantity"`
	ItemsAmount      decimal.Decimal `json:"items_amount"`
	BrownBagAmount   decimal.Decimal `json:"brown_bag_amount"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	Total            decimal.Decimal `json:"total"`
}

// Engine derives totals from cart state. It holds no state of its own.
// Scale is the number of fraction digits shown for display.
type Engine struct {
	BrownBagUnitPrice decimal.Decimal
	Currency          currency.Unit
	Scale             int32
}

// NewEngine creates a pricing engine from config values
func NewEngine(brownBagUnitPrice, currencyCode string) (Engine, error) {
	price, err := decimal.NewFromString(brownBagUnitPrice)
	if err != nil {
		return Engine{}, fmt.Errorf("brown bag price[%s] is not valid: %w", brownBagUnitPrice, err)
	}
	if price.IsNegative() {
		return Engine{}, fmt.Errorf("brown bag price[%s] is negative", brownBagUnitPrice)
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return Engine{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return Engine{BrownBagUnitPrice: price, Currency: unit, Scale: int32(scale)}, nil
}

// WithScale returns a copy of e displaying scale fraction digits
func (e Engine) WithScale(scale int32) Engine {
	e.Scale = scale
	return e
}

// Compute calculates subtotal, discount and total. Amounts are exact; rounding
// happens only in Format.
func (e Engine) Compute(s cart.State) Totals {
	totals := Totals{
		ItemsAmount:      decimal.Zero,
		DiscountPercent:  decimal.Zero,
		DiscountAmount:   decimal.Zero,
		BrownBagQuantity: s.BrownBagQuantity,
	}

	for _, pack := range s.Packs {
		totals.ItemCount += len(pack.Items)
		for _, item := range pack.Items {
			totals.TotalQuantity += item.Quantity
			totals.ItemsAmount = totals.ItemsAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	totals.BrownBagAmount = e.BrownBagUnitPrice.Mul(decimal.NewFromInt(int64(s.BrownBagQuantity)))
	totals.Subtotal = totals.ItemsAmount.Add(totals.BrownBagAmount)

	if s.Promo != nil {
		totals.DiscountPercent = s.Promo.DiscountPercent
		totals.DiscountAmount = totals.Subtotal.Mul(s.Promo.DiscountPercent).Div(hundred)
	}

	totals.Total = totals.Subtotal.Sub(totals.DiscountAmount)
	return totals
}

// Round rounds half-up to the display scale
func (e Engine) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(e.Scale)
}

// Format renders an amount for display, e.g. "USD 1,234.57"
func (e Engine) Format(amount decimal.Decimal) string {
	return fmt.Sprintf("%v %s", e.Currency, groupThousands(e.Round(amount).StringFixed(e.Scale)))
}

// groupThousands inserts commas into the integer part of a plain decimal string
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
