// internal/domain/savedcart/manager.go
package savedcart

import (
	"context"
	"errors"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/order"
)

const (
	opListSavedCarts  = "list_saved_carts"
	opDeleteSavedCart = "delete_saved_cart"
)

var (
	ErrSavedCartNotFound = errors.New("saved cart not found")
	ErrVendorMismatch    = errors.New("your cart has items from a different vendor")
)

// VendorMismatchError is returned by Restore when the live cart belongs to a
// different vendor and the replacement was not confirmed
type VendorMismatchError struct {
	CartVendorID  string
	SavedVendorID string
}

func (e *VendorMismatchError) Error() string {
	return fmt.Sprintf("%s: cart vendor %q, saved cart vendor %q", ErrVendorMismatch, e.CartVendorID, e.SavedVendorID)
}

func (e *VendorMismatchError) Is(target error) bool {
	return target == ErrVendorMismatch
}

// Service is the saved-cart side of the order service
type Service interface {
	ListSavedCarts(ctx context.Context, token string) ([]order.SavedCart, error)
	DeleteSavedCart(ctx context.Context, token, id string) error
}

// RestoreOptions controls Restore
type RestoreOptions struct {
	// ClearAfterRestore deletes the saved cart once its contents are restored
	ClearAfterRestore bool
	// ConfirmReplace allows replacing a live cart of another vendor
	ConfirmReplace bool
}

// Manager lists, restores and deletes saved carts, keeping the last fetched
// list per user
type Manager struct {
	service Service
	cache   *lru.Cache[string, []order.SavedCart]
	logger  *logrus.Entry
}

// NewManager creates a manager caching the lists of up to cacheSize users
func NewManager(service Service, cacheSize int, logger *logrus.Entry) (*Manager, error) {
	cache, err := lru.New[string, []order.SavedCart](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("lru.New: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		service: service,
		cache:   cache,
		logger:  logger.WithField("component", "savedcart"),
	}, nil
}

// List fetches the customer's saved carts and refreshes the cache. An empty
// list is a valid result.
func (m *Manager) List(ctx context.Context, customer checkout.Customer) ([]order.SavedCart, error) {
	if !customer.Authenticated() {
		return nil, checkout.ErrAuthRequired
	}

	carts, err := m.service.ListSavedCarts(ctx, customer.Token)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", customer.UserID).Warn("Failed to list saved carts")
		return nil, &checkout.SubmissionError{Op: opListSavedCarts, Message: "We could not load your saved carts", Err: err}
	}
	if carts == nil {
		carts = []order.SavedCart{}
	}

	m.cache.Add(customer.UserID, carts)
	return slices.Clone(carts), nil
}

// Cached returns the last fetched list for userID
func (m *Manager) Cached(userID string) ([]order.SavedCart, bool) {
	carts, ok := m.cache.Get(userID)
	if !ok {
		return nil, false
	}
	return slices.Clone(carts), true
}

// Find looks id up in the cached list, fetching the list once on a miss
func (m *Manager) Find(ctx context.Context, customer checkout.Customer, id string) (order.SavedCart, error) {
	if !customer.Authenticated() {
		return order.SavedCart{}, checkout.ErrAuthRequired
	}

	if carts, ok := m.cache.Get(customer.UserID); ok {
		if i := indexOf(carts, id); i >= 0 {
			return carts[i], nil
		}
	}

	carts, err := m.List(ctx, customer)
	if err != nil {
		return order.SavedCart{}, err
	}
	if i := indexOf(carts, id); i >= 0 {
		return carts[i], nil
	}
	return order.SavedCart{}, ErrSavedCartNotFound
}

// RestoreResult is the outcome of a restore. DeleteErr is set when the
// restore succeeded but the requested deletion of the saved cart failed.
type RestoreResult struct {
	State            cart.State
	SavedCartDeleted bool
	DeleteErr        error
}

// Restore loads saved into the live cart. A non-empty live cart of another
// vendor is only replaced when opts.ConfirmReplace is set. Once the cart is
// replaced the call succeeds; a failed follow-up delete is reported in the
// result, not as an error.
func (m *Manager) Restore(ctx context.Context, store *cart.Store, customer checkout.Customer, saved order.SavedCart, opts RestoreOptions) (RestoreResult, error) {
	if !customer.Authenticated() {
		return RestoreResult{State: store.State()}, checkout.ErrAuthRequired
	}

	live := store.State()
	actions := []cart.Action{cart.RestoreCart{Snapshot: saved.Cart}}
	if cartVendor, mismatch := VendorMismatch(live, saved.VendorID); mismatch {
		if !opts.ConfirmReplace {
			return RestoreResult{State: live}, &VendorMismatchError{CartVendorID: cartVendor, SavedVendorID: saved.VendorID}
		}
		actions = append([]cart.Action{cart.ClearCart{}}, actions...)
	}

	result := RestoreResult{State: store.Dispatch(ctx, actions...)}
	m.logger.WithFields(logrus.Fields{
		"saved_cart_id": saved.ID,
		"user_id":       customer.UserID,
		"replaced":      len(actions) > 1,
	}).Info("Saved cart restored")

	if !opts.ClearAfterRestore {
		return result, nil
	}

	if err := m.Delete(ctx, customer, saved.ID); err != nil {
		result.DeleteErr = err
		return result, nil
	}
	result.SavedCartDeleted = true
	return result, nil
}

// Delete removes a saved cart. The cached list only changes when the order
// service confirmed the deletion.
func (m *Manager) Delete(ctx context.Context, customer checkout.Customer, id string) error {
	if !customer.Authenticated() {
		return checkout.ErrAuthRequired
	}

	if err := m.service.DeleteSavedCart(ctx, customer.Token, id); err != nil {
		m.logger.WithError(err).WithField("saved_cart_id", id).Warn("Failed to delete saved cart")
		return &checkout.SubmissionError{Op: opDeleteSavedCart, Message: "We could not delete this saved cart", Err: err}
	}

	if carts, ok := m.cache.Get(customer.UserID); ok {
		if i := indexOf(carts, id); i >= 0 {
			m.cache.Add(customer.UserID, slices.Delete(slices.Clone(carts), i, i+1))
		}
	}
	return nil
}

// VendorMismatch reports whether the live cart holds items of a vendor other
// than vendorID, returning that vendor
func VendorMismatch(live cart.State, vendorID string) (string, bool) {
	first, ok := live.FirstItem()
	if !ok {
		return "", false
	}
	return first.BusinessID, first.BusinessID != vendorID
}

func indexOf(carts []order.SavedCart, id string) int {
	return slices.IndexFunc(carts, func(c order.SavedCart) bool { return c.ID == id })
}
