// internal/domain/checkout/payment.go
package checkout

import "strings"

// PaymentMethodUnset is the placeholder shown before a method is chosen
const PaymentMethodUnset = "Select payment method"

// PaymentMethod represents a payment option offered at checkout
type PaymentMethod struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// paymentMethods maps display names to the order service's numeric ids
var paymentMethods = []PaymentMethod{
	{ID: 1, Name: "Card"},
	{ID: 2, Name: "Bank Transfer"},
	{ID: 3, Name: "Pay on Delivery"},
	{ID: 4, Name: "Wallet"},
}

// PaymentMethods returns the supported payment methods
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// ResolvePaymentMethod maps a display name to its numeric id
func ResolvePaymentMethod(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, PaymentMethodUnset) {
		return 0, ErrPaymentMethodRequired
	}

	for _, pm := range paymentMethods {
		if strings.EqualFold(pm.Name, name) {
			return pm.ID, nil
		}
	}
	return 0, ErrUnknownPaymentMethod
}
