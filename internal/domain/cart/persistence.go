// internal/domain/cart/persistence.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStateNotFound is returned by a StateStore when the slot is empty
var ErrStateNotFound = errors.New("cart state not found")

// StateStore is a durable key-value slot holding one serialized cart per key.
// The slot is shared by every replica serving the session.
type StateStore interface {
	LoadState(ctx context.Context, key string) ([]byte, error)
	SaveState(ctx context.Context, key string, data []byte) error
	// UpdateState runs fn against the current value (nil when the slot is
	// empty) and writes its result only if the slot did not change meanwhile.
	UpdateState(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// SubmitLocker guards a submission across every holder of a cart. A held lock
// expires after ttl so a crashed replica cannot block the cart forever.
type SubmitLocker interface {
	AcquireSubmit(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSubmit(ctx context.Context, key, token string) error
}

// LocalSubmitLocker is a process-local SubmitLocker
type LocalSubmitLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	clock func() time.Time
}

type localLock struct {
	token   string
	expires time.Time
}

// NewLocalSubmitLocker creates an in-process submit locker
func NewLocalSubmitLocker() *LocalSubmitLocker {
	return &LocalSubmitLocker{held: make(map[string]localLock), clock: time.Now}
}

// AcquireSubmit takes the lock at key unless a live holder has it
func (l *LocalSubmitLocker) AcquireSubmit(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if held, ok := l.held[key]; ok && (held.expires.IsZero() || now.Before(held.expires)) {
		return "", false, nil
	}

	lock := localLock{token: uuid.NewString()}
	if ttl > 0 {
		lock.expires = now.Add(ttl)
	}
	l.held[key] = lock
	return lock.token, true, nil
}

// ReleaseSubmit drops the lock at key if token still owns it
func (l *LocalSubmitLocker) ReleaseSubmit(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.held[key]; ok && held.token == token {
		delete(l.held, key)
	}
	return nil
}

// Encode serializes the persisted part of a state
func Encode(s State) ([]byte, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// Decode parses a serialized snapshot
func Decode(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return Snapshot{}, fmt.Errorf("empty cart state")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return snap, nil
}

// Replay rebuilds a state from a snapshot by dispatching the regular actions,
// so every cart invariant is re-checked on load. Pack ids are re-derived; the
// active pack follows the pack it pointed at before.
func Replay(snap Snapshot) State {
	s := InitialState()
	activeID := ""

	for _, p := range snap.Packs {
		s = Reduce(s, AddPack{})
		newID := s.ActivePackID
		for _, item := range p.Items {
			s = Reduce(s, AddItemToPack{PackID: newID, Item: item})
		}
		if p.ID != "" && p.ID == snap.ActivePackID {
			activeID = newID
		}
	}

	s = Reduce(s, SetBrownBagQuantity{Quantity: snap.BrownBagQuantity})

	if activeID == "" {
		activeID = firstPackID(s.Packs)
	}
	return Reduce(s, SetActivePack{PackID: activeID})
}
