// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/order"
	"github.com/your-org/foodcart-backend/internal/domain/pricing"
)

// Submission operation names, also used as submitting-flag keys
const (
	OpPlaceOrder   = "place_order"
	OpSaveForLater = "save_for_later"
	OpApplyPromo   = "apply_promo"
)

// OrderService is the external order service
type OrderService interface {
	SubmitOrder(ctx context.Context, token string, req order.OrderRequest) (order.OrderConfirmation, error)
	SaveCart(ctx context.Context, token string, req order.SaveCartRequest) (order.SavedCart, error)
	RedeemPromo(ctx context.Context, token, code string) (order.Promo, error)
}

// PlacedOrderRecorder is told about every successfully placed order
type PlacedOrderRecorder interface {
	RecordPlaced(ctx context.Context, conf order.OrderConfirmation) error
}

// SubmissionObserver is notified about every finished submission attempt
type SubmissionObserver func(op string, err error)

// Customer is the authenticated caller. A zero Customer is a guest.
type Customer struct {
	UserID string
	Token  string
}

// Authenticated reports whether the customer is signed in
func (c Customer) Authenticated() bool {
	return c.UserID != "" && c.Token != ""
}

// Address is the delivery address as verified by the address collaborator
type Address struct {
	Text        string `json:"text"`
	Deliverable bool   `json:"deliverable"`
}

// Valid reports whether the address is present and deliverable
func (a Address) Valid() bool {
	return strings.TrimSpace(a.Text) != "" && a.Deliverable
}

// PlaceOrderRequest holds the signals gathered at checkout
type PlaceOrderRequest struct {
	Customer             Customer
	VendorID             string
	Address              Address
	PaymentMethod        string
	VendorInstructions   string
	DeliveryInstructions string
}

// SaveRequest holds the save-for-later inputs
type SaveRequest struct {
	Customer       Customer
	VendorID       string
	ClearAfterSave bool
}

// Service gates and assembles order submission
type Service struct {
	orders   OrderService
	pricing  pricing.Engine
	recorder PlacedOrderRecorder
	observer SubmissionObserver
	logger   *logrus.Entry
}

// NewService creates a new checkout service. recorder may be nil.
func NewService(orders OrderService, engine pricing.Engine, recorder PlacedOrderRecorder, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		orders:   orders,
		pricing:  engine,
		recorder: recorder,
		logger:   logger.WithField("component", "checkout"),
	}
}

// SetObserver registers a callback invoked after every submission attempt
func (s *Service) SetObserver(observer SubmissionObserver) {
	s.observer = observer
}

// PlaceOrder validates the cart and signals, submits the order and clears the
// cart once the order service accepted it
func (s *Service) PlaceOrder(ctx context.Context, store *cart.Store, req PlaceOrderRequest) (order.OrderConfirmation, error) {
	state := store.State()

	if state.IsEmpty() {
		return order.OrderConfirmation{}, ErrCartEmpty
	}
	if !req.Customer.Authenticated() {
		return order.OrderConfirmation{}, ErrAuthRequired
	}
	if !req.Address.Valid() {
		return order.OrderConfirmation{}, ErrInvalidAddress
	}
	paymentMethodID, err := ResolvePaymentMethod(req.PaymentMethod)
	if err != nil {
		return order.OrderConfirmation{}, err
	}

	release, err := store.BeginSubmit(ctx, OpPlaceOrder)
	if err != nil {
		return order.OrderConfirmation{}, err
	}
	defer release()

	totals := s.pricing.Compute(state)
	payload := order.OrderRequest{
		UserID:               req.Customer.UserID,
		VendorID:             vendorFor(state, req.VendorID),
		Items:                order.FlattenPacks(state.Packs),
		Total:                totals.Total,
		DeliveryAddress:      strings.TrimSpace(req.Address.Text),
		VendorInstructions:   strings.TrimSpace(req.VendorInstructions),
		DeliveryInstructions: strings.TrimSpace(req.DeliveryInstructions),
		PaymentMethodID:      paymentMethodID,
		BrownBagQuantity:     state.BrownBagQuantity,
		IdempotencyKey:       uuid.NewString(),
	}
	if state.Promo != nil {
		payload.PromoCode = state.Promo.Code
	}

	conf, err := s.orders.SubmitOrder(ctx, req.Customer.Token, payload)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		err = s.submissionFailed(OpPlaceOrder, "We could not place your order", err)
		return order.OrderConfirmation{}, err
	}

	store.Dispatch(ctx, cart.ClearCart{})
	s.notify(OpPlaceOrder, nil)

	if conf.UserID == "" {
		conf.UserID = payload.UserID
	}
	if conf.VendorID == "" {
		conf.VendorID = payload.VendorID
	}
	if conf.Total.IsZero() {
		conf.Total = payload.Total
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":  conf.OrderID,
		"user_id":   conf.UserID,
		"vendor_id": conf.VendorID,
	}).Info("Order placed")

	if s.recorder != nil {
		if err := s.recorder.RecordPlaced(context.WithoutCancel(ctx), conf); err != nil {
			s.logger.WithError(err).WithField("order_id", conf.OrderID).Warn("Failed to record rating prompt")
		}
	}

	return conf, nil
}

// SaveForLater stores the live cart with the order service. The live cart is
// kept unless ClearAfterSave is set, in which case it is cleared only after the
// save succeeded.
func (s *Service) SaveForLater(ctx context.Context, store *cart.Store, req SaveRequest) (order.SavedCart, error) {
	state := store.State()

	if state.IsEmpty() {
		return order.SavedCart{}, ErrCartEmpty
	}
	if !req.Customer.Authenticated() {
		return order.SavedCart{}, ErrAuthRequired
	}

	release, err := store.BeginSubmit(ctx, OpSaveForLater)
	if err != nil {
		return order.SavedCart{}, err
	}
	defer release()

	payload := order.SaveCartRequest{
		VendorID:         vendorFor(state, req.VendorID),
		Items:            order.FlattenPacks(state.Packs),
		ActivePackID:     state.ActivePackID,
		BrownBagQuantity: state.BrownBagQuantity,
	}

	saved, err := s.orders.SaveCart(ctx, req.Customer.Token, payload)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return order.SavedCart{}, s.submissionFailed(OpSaveForLater, "We could not save your cart", err)
	}
	s.notify(OpSaveForLater, nil)

	if req.ClearAfterSave {
		store.Dispatch(ctx, cart.ClearCart{})
	}

	s.logger.WithFields(logrus.Fields{
		"saved_cart_id": saved.ID,
		"vendor_id":     payload.VendorID,
		"cleared":       req.ClearAfterSave,
	}).Info("Cart saved for later")

	return saved, nil
}

// ApplyPromo redeems code and applies the returned discount. A failed
// redemption leaves the cart as it was.
func (s *Service) ApplyPromo(ctx context.Context, store *cart.Store, customer Customer, code string) (cart.State, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return store.State(), ErrPromoCodeRequired
	}
	if !customer.Authenticated() {
		return store.State(), ErrAuthRequired
	}

	release, err := store.BeginSubmit(ctx, OpApplyPromo)
	if err != nil {
		return store.State(), err
	}
	defer release()

	promo, err := s.orders.RedeemPromo(ctx, customer.Token, code)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return store.State(), s.submissionFailed(OpApplyPromo, "This promo code could not be applied", err)
	}

	application := cart.PromoApplication{Code: promo.Code, DiscountPercent: promo.DiscountPercent}
	if application.Code == "" {
		application.Code = code
	}
	if err := cart.ValidatePromo(application); err != nil {
		return store.State(), s.submissionFailed(OpApplyPromo, "This promo code could not be applied", err)
	}

	s.notify(OpApplyPromo, nil)
	return store.Dispatch(ctx, cart.ApplyPromo{Promo: application}), nil
}

// RemovePromo drops the applied promo
func (s *Service) RemovePromo(ctx context.Context, store *cart.Store) cart.State {
	return store.Dispatch(ctx, cart.RemovePromo{})
}

func (s *Service) submissionFailed(op, fallback string, err error) error {
	message := fallback
	var serviceErr *order.ServiceError
	switch {
	case errors.As(err, &serviceErr) && serviceErr.Message != "":
		message = fmt.Sprintf("%s: %s", fallback, serviceErr.Message)
	case errors.Is(err, context.Canceled):
		message = fallback + ": the request was cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		message = fallback + ": the order service did not respond in time"
	}

	s.logger.WithError(err).WithField("operation", op).Warn("Order service call failed")
	s.notify(op, err)

	return &SubmissionError{Op: op, Message: message, Err: err}
}

func (s *Service) notify(op string, err error) {
	if s.observer != nil {
		s.observer(op, err)
	}
}

// vendorFor prefers the caller's vendor id and falls back to the business of
// the first item in the cart
func vendorFor(state cart.State, vendorID string) string {
	if vendorID = strings.TrimSpace(vendorID); vendorID != "" {
		return vendorID
	}
	if first, ok := state.FirstItem(); ok {
		return first.BusinessID
	}
	return ""
}
