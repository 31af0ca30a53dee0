// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
)

// CartItem is a purchasable line entry inside a pack
type CartItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"` // Unit price, major currency units
	Quantity     int             `json:"quantity"`
	Image        string          `json:"image,omitempty"`
	BusinessID   string          `json:"business_id,omitempty"`
	BusinessName string          `json:"business_name,omitempty"`
}

// Pack is one parcel of the order; an order can be split into several packs
type Pack struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// PromoApplication is the currently applied promo code. It lives only as long
// as the session and is never written to the cart state slot.
type PromoApplication struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Snapshot is the persisted part of the cart. Saved carts embed one as well.
type Snapshot struct {
	Packs            []Pack `json:"packs"`
	ActivePackID     string `json:"active_pack_id,omitempty"`
	BrownBagQuantity int    `json:"brown_bag_quantity"`
}

// State is the aggregate root of a shopping session.
// ActivePackID == "" means no pack is active.
type State struct {
	Packs            []Pack            `json:"packs"`
	ActivePackID     string            `json:"active_pack_id,omitempty"`
	BrownBagQuantity int               `json:"brown_bag_quantity"`
	Promo            *PromoApplication `json:"promo,omitempty"`
}

// IsEmpty reports whether the cart has no packs
func (s State) IsEmpty() bool {
	return len(s.Packs) == 0
}

// Snapshot returns a deep copy of the persisted fields
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Packs:            clonePacks(s.Packs),
		ActivePackID:     s.ActivePackID,
		BrownBagQuantity: s.BrownBagQuantity,
	}
}

// FindPack returns the pack with the given id
func (s State) FindPack(packID string) (Pack, bool) {
	if i := s.packIndex(packID); i >= 0 {
		return s.Packs[i], true
	}
	return Pack{}, false
}

// FirstItem returns the first item of the first non-empty pack
func (s State) FirstItem() (CartItem, bool) {
	for _, p := range s.Packs {
		if len(p.Items) > 0 {
			return p.Items[0], true
		}
	}
	return CartItem{}, false
}

// ItemCount returns the number of distinct line entries across all packs
func (s State) ItemCount() int {
	n := 0
	for _, p := range s.Packs {
		n += len(p.Items)
	}
	return n
}

func (s State) packIndex(packID string) int {
	for i := range s.Packs {
		if s.Packs[i].ID == packID {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := State{
		Packs:            clonePacks(s.Packs),
		ActivePackID:     s.ActivePackID,
		BrownBagQuantity: s.BrownBagQuantity,
	}
	if s.Promo != nil {
		promo := *s.Promo
		out.Promo = &promo
	}
	return out
}

func (p Pack) clone() Pack {
	items := make([]CartItem, len(p.Items))
	copy(items, p.Items)
	return Pack{ID: p.ID, Items: items}
}

func (p Pack) itemIndex(itemID string) int {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func clonePacks(packs []Pack) []Pack {
	if packs == nil {
		return []Pack{}
	}
	out := make([]Pack, len(packs))
	for i := range packs {
		out[i] = packs[i].clone()
	}
	return out
}
