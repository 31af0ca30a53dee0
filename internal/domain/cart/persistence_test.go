package cart_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodcart-backend/internal/domain/cart"
)

func TestEncodeReplay_roundTrip(t *testing.T) {
	s := cart.InitialState()
	for range 3 {
		s = cart.Reduce(s, cart.AddPack{})
		for range gofakeit.Number(1, 4) {
			s = cart.Reduce(s, cart.AddItemToPack{PackID: s.ActivePackID, Item: randomItem()})
		}
	}
	s = cart.ReduceAll(s,
		cart.SetBrownBagQuantity{Quantity: 2},
		cart.SetActivePack{PackID: "Pack: 2"},
		cart.ApplyPromo{Promo: promo("TEN", 10)},
	)

	data, err := cart.Encode(s)
	require.NoError(t, err)

	snap, err := cart.Decode(data)
	require.NoError(t, err)

	got := cart.Replay(snap)

	assert.Empty(t, cmp.Diff(s.Packs, got.Packs, decimalComparer))
	assert.Equal(t, s.BrownBagQuantity, got.BrownBagQuantity)
	assert.Equal(t, "Pack: 2", got.ActivePackID)
	assert.Nil(t, got.Promo, "promo is not persisted")
}

func TestReplay_rederivesPackIDs(t *testing.T) {
	snap := cart.Snapshot{
		Packs: []cart.Pack{
			{ID: "Pack: 2", Items: []cart.CartItem{item("a", 100, 1)}},
			{ID: "Pack: 5", Items: []cart.CartItem{item("b", 200, 2), item("b", 200, 3)}},
		},
		ActivePackID:     "Pack: 5",
		BrownBagQuantity: -3,
	}

	got := cart.Replay(snap)

	assert.Equal(t, []string{"Pack: 1", "Pack: 2"}, packIDs(got))
	assert.Equal(t, "Pack: 2", got.ActivePackID, "active follows its pack")
	require.Len(t, got.Packs[1].Items, 1)
	assert.Equal(t, 5, got.Packs[1].Items[0].Quantity, "duplicate ids merge on replay")
	assert.Zero(t, got.BrownBagQuantity)
}

func TestReplay_danglingActivePack(t *testing.T) {
	tests := []struct {
		name       string
		snap       cart.Snapshot
		wantActive string
	}{
		{
			name: "active pack missing: first pack",
			snap: cart.Snapshot{
				Packs:        []cart.Pack{{ID: "Pack: 1", Items: []cart.CartItem{item("a", 1, 1)}}},
				ActivePackID: "Pack: 7",
			},
			wantActive: "Pack: 1",
		},
		{
			name:       "no packs: null",
			snap:       cart.Snapshot{ActivePackID: "Pack: 1"},
			wantActive: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cart.Replay(tt.snap)
			assert.Equal(t, tt.wantActive, got.ActivePackID)
		})
	}
}

func TestDecode_errors(t *testing.T) {
	_, err := cart.Decode(nil)
	require.Error(t, err)

	_, err = cart.Decode([]byte(`{"packs": "nope"}`))
	require.Error(t, err)
}
