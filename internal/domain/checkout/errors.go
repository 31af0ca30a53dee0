// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"
)

// Validation failures, detected before any network call
var (
	ErrCartEmpty             = errors.New("your cart is empty")
	ErrInvalidAddress        = errors.New("please enter a delivery address we can deliver to")
	ErrPaymentMethodRequired = errors.New("please choose a payment method")
	ErrUnknownPaymentMethod  = errors.New("the selected payment method is not supported")
	ErrPromoCodeRequired     = errors.New("please enter a promo code")
)

// ErrAuthRequired means the caller must sign in and then retry the action
var ErrAuthRequired = errors.New("please sign in to continue")

// SubmissionError is a failed call to the order service. Message is safe to
// show to the shopper; the cart is left as it was so the action can be retried.
type SubmissionError struct {
	Op      string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is one of the local validation failures
func IsValidation(err error) bool {
	return errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrPaymentMethodRequired) ||
		errors.Is(err, ErrUnknownPaymentMethod) ||
		errors.Is(err, ErrPromoCodeRequired)
}
