// internal/domain/cart/reducer.go
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const packIDPrefix = "Pack: "

// Action is a cart state transition. The set of actions is closed.
type Action interface {
	// Name identifies the action in logs and metrics
	Name() string
	apply(s State) State
}

// AddPack appends a new empty pack and makes it active
type AddPack struct{}

// RemovePack removes a pack; unknown ids are ignored
type RemovePack struct {
	PackID string
}

// DuplicatePack appends a deep copy of an existing pack under a fresh id
type DuplicatePack struct {
	PackID string
}

// AddItemToPack merges an item into a pack. Adding an id that is already in
// the pack increases its quantity.
type AddItemToPack struct {
	PackID string
	Item   CartItem
}

// UpdateItemQuantity sets the quantity of an item. Quantities below one
// remove the item, and empty packs are pruned afterwards.
type UpdateItemQuantity struct {
	PackID   string
	ItemID   string
	Quantity int
}

// SetActivePack points the active pack at PackID without validating it
type SetActivePack struct {
	PackID string
}

// SetBrownBagQuantity sets the brown bag count, clamped at zero
type SetBrownBagQuantity struct {
	Quantity int
}

// ClearCart resets the cart to its initial empty state
type ClearCart struct{}

// RestoreCart replaces packs, active pack and brown bags with a snapshot.
// Other session fields such as the promo are kept.
type RestoreCart struct {
	Snapshot Snapshot
}

// ApplyPromo replaces the active promo
type ApplyPromo struct {
	Promo PromoApplication
}

// RemovePromo clears the active promo
type RemovePromo struct{}

func (AddPack) Name() string             { return "add_pack" }
func (RemovePack) Name() string          { return "remove_pack" }
func (DuplicatePack) Name() string       { return "duplicate_pack" }
func (AddItemToPack) Name() string       { return "add_item_to_pack" }
func (UpdateItemQuantity) Name() string  { return "update_item_quantity" }
func (SetActivePack) Name() string       { return "set_active_pack" }
func (SetBrownBagQuantity) Name() string { return "set_brown_bag_quantity" }
func (ClearCart) Name() string           { return "clear_cart" }
func (RestoreCart) Name() string         { return "restore_cart" }
func (ApplyPromo) Name() string          { return "apply_promo" }
func (RemovePromo) Name() string         { return "remove_promo" }

// Reduce applies an action to a state and returns the resulting state.
// The input state is never modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// ReduceAll applies actions in order
func ReduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

// InitialState returns the empty cart
func InitialState() State {
	return State{Packs: []Pack{}}
}

func (AddPack) apply(s State) State {
	next := s.clone()
	id := nextPackID(next.Packs)
	next.Packs = append(next.Packs, Pack{ID: id, Items: []CartItem{}})
	next.ActivePackID = id
	return next
}

func (a RemovePack) apply(s State) State {
	idx := s.packIndex(a.PackID)
	if idx < 0 {
		return s
	}

	next := s.clone()
	next.Packs = append(next.Packs[:idx], next.Packs[idx+1:]...)
	if next.ActivePackID == a.PackID {
		next.ActivePackID = firstPackID(next.Packs)
	}
	return next
}

func (a DuplicatePack) apply(s State) State {
	src, ok := s.FindPack(a.PackID)
	if !ok {
		return s
	}

	next := s.clone()
	dup := src.clone()
	dup.ID = nextPackID(next.Packs)
	next.Packs = append(next.Packs, dup)
	next.ActivePackID = dup.ID
	return next
}

func (a AddItemToPack) apply(s State) State {
	idx := s.packIndex(a.PackID)
	if idx < 0 || a.Item.ID == "" || a.Item.Quantity < 1 {
		return s
	}

	next := s.clone()
	pack := &next.Packs[idx]
	if i := pack.itemIndex(a.Item.ID); i >= 0 {
		pack.Items[i].Quantity += a.Item.Quantity
	} else {
		pack.Items = append(pack.Items, a.Item)
	}
	return next
}

func (a UpdateItemQuantity) apply(s State) State {
	idx := s.packIndex(a.PackID)
	if idx < 0 {
		return s
	}
	itemIdx := s.Packs[idx].itemIndex(a.ItemID)
	if itemIdx < 0 {
		return s
	}

	next := s.clone()
	pack := &next.Packs[idx]
	if a.Quantity < 1 {
		pack.Items = append(pack.Items[:itemIdx], pack.Items[itemIdx+1:]...)
	} else {
		pack.Items[itemIdx].Quantity = a.Quantity
	}

	return pruneEmptyPacks(next)
}

func (a SetActivePack) apply(s State) State {
	next := s.clone()
	next.ActivePackID = a.PackID
	return next
}

func (a SetBrownBagQuantity) apply(s State) State {
	next := s.clone()
	next.BrownBagQuantity = max(0, a.Quantity)
	return next
}

func (ClearCart) apply(State) State {
	return InitialState()
}

func (a RestoreCart) apply(s State) State {
	next := s.clone()
	next.Packs = normalizePacks(a.Snapshot.Packs)
	next.BrownBagQuantity = max(0, a.Snapshot.BrownBagQuantity)
	next.ActivePackID = a.Snapshot.ActivePackID
	if next.packIndex(next.ActivePackID) < 0 {
		next.ActivePackID = firstPackID(next.Packs)
	}
	return next
}

func (a ApplyPromo) apply(s State) State {
	if err := ValidatePromo(a.Promo); err != nil {
		return s
	}
	next := s.clone()
	promo := a.Promo
	next.Promo = &promo
	return next
}

func (RemovePromo) apply(s State) State {
	next := s.clone()
	next.Promo = nil
	return next
}

var hundred = decimal.NewFromInt(100)

// ValidatePromo checks that a promo has a code and a percentage within 0..100
func ValidatePromo(p PromoApplication) error {
	if p.Code == "" {
		return fmt.Errorf("promo code is empty")
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("promo discount %s is outside 0..100", p.DiscountPercent)
	}
	return nil
}

// nextPackID derives "Pack: N" from the pack count, skipping ids still in use
// after earlier removals.
func nextPackID(packs []Pack) string {
	used := make(map[string]struct{}, len(packs))
	for _, p := range packs {
		used[p.ID] = struct{}{}
	}
	for n := len(packs) + 1; ; n++ {
		id := fmt.Sprintf("%s%d", packIDPrefix, n)
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

func firstPackID(packs []Pack) string {
	if len(packs) == 0 {
		return ""
	}
	return packs[0].ID
}

func pruneEmptyPacks(s State) State {
	kept := s.Packs[:0]
	activeGone := false
	for _, p := range s.Packs {
		if len(p.Items) == 0 {
			if p.ID == s.ActivePackID {
				activeGone = true
			}
			continue
		}
		kept = append(kept, p)
	}
	s.Packs = kept
	if activeGone {
		s.ActivePackID = firstPackID(s.Packs)
	}
	return s
}

// normalizePacks deep copies packs from outside the store, dropping entries
// that would break the cart invariants: non-positive quantities, duplicate
// item ids within a pack (merged) and duplicate pack ids.
func normalizePacks(packs []Pack) []Pack {
	out := make([]Pack, 0, len(packs))
	seen := make(map[string]struct{}, len(packs))
	for _, p := range packs {
		if _, dup := seen[p.ID]; dup || p.ID == "" {
			continue
		}
		seen[p.ID] = struct{}{}

		np := Pack{ID: p.ID, Items: make([]CartItem, 0, len(p.Items))}
		for _, item := range p.Items {
			if item.ID == "" || item.Quantity < 1 {
				continue
			}
			if i := np.itemIndex(item.ID); i >= 0 {
				np.Items[i].Quantity += item.Quantity
				continue
			}
			np.Items = append(np.Items, item)
		}
		if len(np.Items) > 0 {
			out = append(out, np)
		}
	}
	return out
}
