package savedcart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
	"github.com/your-org/foodcart-backend/internal/domain/checkout"
	"github.com/your-org/foodcart-backend/internal/domain/order"
	"github.com/your-org/foodcart-backend/internal/domain/savedcart"
)

type fakeService struct {
	carts     []order.SavedCart
	listErr   error
	deleteErr error
	lists     int
	deleted   []string
}

func (f *fakeService) ListSavedCarts(context.Context, string) ([]order.SavedCart, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.carts, nil
}

func (f *fakeService) DeleteSavedCart(_ context.Context, _ string, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var (
	customer        = checkout.Customer{UserID: "user-1", Token: "tok"}
	decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
)

func line(id, vendor string, price int64, qty int) cart.CartItem {
	return cart.CartItem{ID: id, Name: id, Price: decimal.NewFromInt(price), Quantity: qty, BusinessID: vendor}
}

func savedFor(id, vendor string) order.SavedCart {
	return order.SavedCart{
		ID:       id,
		UserID:   customer.UserID,
		VendorID: vendor,
		Cart: cart.Snapshot{
			Packs: []cart.Pack{
				{ID: "Pack: 1", Items: []cart.CartItem{line("amala", vendor, 1200, 1)}},
				{ID: "Pack: 2", Items: []cart.CartItem{line("ewedu", vendor, 300, 2)}},
			},
			ActivePackID:     "Pack: 2",
			BrownBagQuantity: 2,
		},
	}
}

func liveStore(t *testing.T, vendor string) *cart.Store {
	t.Helper()
	store := cart.NewStore("k", nil, nil)
	store.Dispatch(t.Context(), cart.AddPack{}, cart.AddItemToPack{PackID: "Pack: 1", Item: line("rice", vendor, 1000, 1)})
	return store
}

func newManager(t *testing.T, svc savedcart.Service) *savedcart.Manager {
	t.Helper()
	m, err := savedcart.NewManager(svc, 16, nil)
	require.NoError(t, err)
	return m
}

func TestList(t *testing.T) {
	svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "B"), savedFor("sc-2", "A")}}
	m := newManager(t, svc)

	_, ok := m.Cached(customer.UserID)
	assert.False(t, ok)

	carts, err := m.List(t.Context(), customer)
	require.NoError(t, err)
	assert.Len(t, carts, 2)

	cached, ok := m.Cached(customer.UserID)
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(carts, cached, decimalComparer))
}

func TestList_emptyIsValid(t *testing.T) {
	m := newManager(t, &fakeService{})

	carts, err := m.List(t.Context(), customer)
	require.NoError(t, err)
	assert.NotNil(t, carts)
	assert.Empty(t, carts)
}

func TestList_errors(t *testing.T) {
	m := newManager(t, &fakeService{listErr: errors.New("timeout")})

	_, err := m.List(t.Context(), customer)
	var submissionErr *checkout.SubmissionError
	require.ErrorAs(t, err, &submissionErr)
	assert.Equal(t, "We could not load your saved carts", submissionErr.Message)

	_, err = m.List(t.Context(), checkout.Customer{})
	require.ErrorIs(t, err, checkout.ErrAuthRequired)
}

func TestFind(t *testing.T) {
	svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "B")}}
	m := newManager(t, svc)

	got, err := m.Find(t.Context(), customer, "sc-1")
	require.NoError(t, err)
	assert.Equal(t, "sc-1", got.ID)

	_, err = m.Find(t.Context(), customer, "sc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.lists)

	_, err = m.Find(t.Context(), customer, "missing")
	require.ErrorIs(t, err, savedcart.ErrSavedCartNotFound)
	assert.Equal(t, 2, svc.lists)
}

func TestRestore_vendorMismatch(t *testing.T) {
	saved := savedFor("sc-1", "B")

	t.Run("requires confirmation", func(t *testing.T) {
		m := newManager(t, &fakeService{})
		store := liveStore(t, "A")
		before := store.State()

		result, err := m.Restore(t.Context(), store, customer, saved, savedcart.RestoreOptions{})

		require.ErrorIs(t, err, savedcart.ErrVendorMismatch)
		var mismatch *savedcart.VendorMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "A", mismatch.CartVendorID)
		assert.Equal(t, "B", mismatch.SavedVendorID)

		assert.Empty(t, cmp.Diff(before, result.State, decimalComparer))
		assert.Empty(t, cmp.Diff(before, store.State(), decimalComparer))
	})

	t.Run("confirmed replaces the live cart", func(t *testing.T) {
		m := newManager(t, &fakeService{})
		store := liveStore(t, "A")
		store.Dispatch(t.Context(), cart.ApplyPromo{Promo: cart.PromoApplication{Code: "TEN", DiscountPercent: decimal.NewFromInt(10)}})

		result, err := m.Restore(t.Context(), store, customer, saved, savedcart.RestoreOptions{ConfirmReplace: true})
		require.NoError(t, err)
		state := result.State

		assert.Empty(t, cmp.Diff(saved.Cart, state.Snapshot(), decimalComparer))
		assert.Nil(t, state.Promo)
	})
}

func TestRestore_sameVendorOrEmptyCart(t *testing.T) {
	saved := savedFor("sc-1", "A")

	tests := []struct {
		name  string
		store func(t *testing.T) *cart.Store
	}{
		{name: "empty live cart", store: func(*testing.T) *cart.Store { return cart.NewStore("k", nil, nil) }},
		{name: "same vendor", store: func(t *testing.T) *cart.Store { return liveStore(t, "A") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, &fakeService{})
			result, err := m.Restore(t.Context(), tt.store(t), customer, saved, savedcart.RestoreOptions{})
			require.NoError(t, err)
			assert.False(t, result.SavedCartDeleted)
			assert.Empty(t, cmp.Diff(saved.Cart, result.State.Snapshot(), decimalComparer, cmpopts.EquateEmpty()))
		})
	}
}

func TestRestore_clearAfterRestore(t *testing.T) {
	svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "A"), savedFor("sc-2", "A")}}
	m := newManager(t, svc)

	_, err := m.List(t.Context(), customer)
	require.NoError(t, err)

	saved, err := m.Find(t.Context(), customer, "sc-1")
	require.NoError(t, err)

	store := cart.NewStore("k", nil, nil)
	result, err := m.Restore(t.Context(), store, customer, saved, savedcart.RestoreOptions{ClearAfterRestore: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.State.ItemCount())
	assert.True(t, result.SavedCartDeleted)
	assert.NoError(t, result.DeleteErr)

	assert.Equal(t, []string{"sc-1"}, svc.deleted)
	cached, _ := m.Cached(customer.UserID)
	require.Len(t, cached, 1)
	assert.Equal(t, "sc-2", cached[0].ID)
	assert.Equal(t, 1, svc.lists)
}

func TestRestore_deleteFailureKeepsRestoredCart(t *testing.T) {
	svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "A")}}
	m := newManager(t, svc)

	saved, err := m.Find(t.Context(), customer, "sc-1")
	require.NoError(t, err)

	svc.deleteErr = &order.ServiceError{StatusCode: 503, Message: "unavailable"}
	store := liveStore(t, "B")
	result, err := m.Restore(t.Context(), store, customer, saved, savedcart.RestoreOptions{
		ConfirmReplace:    true,
		ClearAfterRestore: true,
	})
	require.NoError(t, err)

	assert.False(t, result.SavedCartDeleted)
	var submissionErr *checkout.SubmissionError
	require.ErrorAs(t, result.DeleteErr, &submissionErr)
	assert.Empty(t, cmp.Diff(saved.Cart, result.State.Snapshot(), decimalComparer))
	assert.Empty(t, cmp.Diff(saved.Cart, store.State().Snapshot(), decimalComparer))

	cached, _ := m.Cached(customer.UserID)
	assert.Len(t, cached, 1)
}

func TestDelete(t *testing.T) {
	t.Run("failure leaves the cache untouched", func(t *testing.T) {
		svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "A")}}
		m := newManager(t, svc)
		_, err := m.List(t.Context(), customer)
		require.NoError(t, err)

		svc.deleteErr = &order.ServiceError{StatusCode: 500, Message: "boom"}
		err = m.Delete(t.Context(), customer, "sc-1")

		var submissionErr *checkout.SubmissionError
		require.ErrorAs(t, err, &submissionErr)
		cached, _ := m.Cached(customer.UserID)
		assert.Len(t, cached, 1)
	})

	t.Run("success removes without re-fetch", func(t *testing.T) {
		svc := &fakeService{carts: []order.SavedCart{savedFor("sc-1", "A"), savedFor("sc-2", "B")}}
		m := newManager(t, svc)
		_, err := m.List(t.Context(), customer)
		require.NoError(t, err)

		require.NoError(t, m.Delete(t.Context(), customer, "sc-2"))

		cached, _ := m.Cached(customer.UserID)
		require.Len(t, cached, 1)
		assert.Equal(t, "sc-1", cached[0].ID)
		assert.Equal(t, 1, svc.lists)
	})

	t.Run("guest", func(t *testing.T) {
		m := newManager(t, &fakeService{})
		require.ErrorIs(t, m.Delete(t.Context(), checkout.Customer{}, "sc-1"), checkout.ErrAuthRequired)
	})
}

func TestVendorMismatch(t *testing.T) {
	empty := cart.InitialState()
	_, mismatch := savedcart.VendorMismatch(empty, "B")
	assert.False(t, mismatch)

	live := cart.ReduceAll(cart.InitialState(), cart.AddPack{}, cart.AddItemToPack{PackID: "Pack: 1", Item: line("x", "", 10, 1)})
	vendor, mismatch := savedcart.VendorMismatch(live, "B")
	assert.True(t, mismatch)
	assert.Empty(t, vendor)
}
