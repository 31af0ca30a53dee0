// internal/domain/cart/store.go
package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrSubmitInProgress is returned when the same submission is already running
// for this cart
var ErrSubmitInProgress = errors.New("submission already in progress")

// SubmitLockTTL bounds how long a submission lock is held if its release is lost
const SubmitLockTTL = 2 * time.Minute

// ActionObserver is notified after every applied action
type ActionObserver func(action Action)

// Store owns the cart state of one shopping session. The state slot is the
// source of truth: every action is applied to the slot's current value and
// written back atomically, so replicas sharing a session never overwrite each
// other's changes.
type Store struct {
	mu         sync.Mutex
	key        string
	state      State
	data       []byte
	stateStore StateStore
	locker     SubmitLocker
	logger     *logrus.Entry
	observer   ActionObserver
}

// NewStore creates a store with an empty cart bound to a state slot. Submit
// locks go through the slot when it implements SubmitLocker.
func NewStore(key string, stateStore StateStore, logger *logrus.Entry) *Store {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	var locker SubmitLocker = NewLocalSubmitLocker()
	if l, ok := stateStore.(SubmitLocker); ok {
		locker = l
	}

	return &Store{
		key:        key,
		state:      InitialState(),
		stateStore: stateStore,
		locker:     locker,
		logger:     logger.WithField("cart_key", key),
	}
}

// Key returns the state slot key
func (s *Store) Key() string {
	return s.key
}

// SetObserver registers a callback invoked after each applied action
func (s *Store) SetObserver(observer ActionObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

func (s *Store) setLocker(locker SubmitLocker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locker = locker
}

// Load syncs the store with the slot. A slot written elsewhere is replayed,
// an emptied or malformed slot empties the cart. Read failures are logged and
// keep the current cart.
func (s *Store) Load(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stateStore == nil {
		return s.state.clone()
	}

	data, err := s.stateStore.LoadState(ctx, s.key)
	if errors.Is(err, ErrStateNotFound) {
		data, err = nil, nil
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read cart state, keeping the current cart")
		return s.state.clone()
	}

	s.state = s.baseFor(data)
	s.data = data
	return s.state.clone()
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies actions in order and returns the resulting state
func (s *Store) Dispatch(ctx context.Context, actions ...Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		if a == nil {
			continue
		}
		s.apply(ctx, a)
		if s.observer != nil {
			s.observer(a)
		}
	}
	return s.state.clone()
}

// BeginSubmit marks op as in flight for every holder of this cart. The
// returned release func must be called once the submission finished.
func (s *Store) BeginSubmit(ctx context.Context, op string) (func(), error) {
	s.mu.Lock()
	locker := s.locker
	s.mu.Unlock()

	lockKey := s.key + ":submitting:" + op
	token, ok, err := locker.AcquireSubmit(ctx, lockKey, SubmitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: acquire submit lock: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSubmitInProgress)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := locker.ReleaseSubmit(context.WithoutCancel(ctx), lockKey, token); err != nil {
				s.logger.WithError(err).WithField("op", op).Warn("Failed to release submit lock")
			}
		})
	}, nil
}

// apply must be called with mu held
func (s *Store) apply(ctx context.Context, a Action) {
	if s.stateStore == nil {
		s.state = Reduce(s.state, a)
		return
	}

	var (
		next    State
		written []byte
	)
	// The write must land even if the request that triggered it is gone.
	err := s.stateStore.UpdateState(context.WithoutCancel(ctx), s.key, func(current []byte) ([]byte, error) {
		next = Reduce(s.baseFor(current), a)
		data, err := Encode(next)
		if err != nil {
			return nil, err
		}
		written = data
		return data, nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("action", a.Name()).Error("Failed to persist cart state")
		s.state = Reduce(s.state, a)
		return
	}

	s.state = next
	s.data = written
}

// baseFor returns the state current stands for. The in-memory state is used
// while the slot still holds what this store last saw; anything else is
// replayed. The transient promo survives a replay but not an emptied slot.
// Must be called with mu held.
func (s *Store) baseFor(current []byte) State {
	if bytes.Equal(current, s.data) {
		return s.state.clone()
	}
	if current == nil {
		return InitialState()
	}

	snap, err := Decode(current)
	if err != nil {
		s.logger.WithError(err).Warn("Discarding malformed cart state")
		return InitialState()
	}

	state := Replay(snap)
	if s.state.Promo != nil && !state.IsEmpty() {
		promo := *s.state.Promo
		state.Promo = &promo
	}
	return state
}
