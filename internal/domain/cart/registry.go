// internal/domain/cart/registry.go
package cart

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Registry hands out one Store per session. Stores are kept in a bounded
// cache and synced with the state slot on every Get, so a cached cart never
// hides writes made by another replica or an expired slot.
type Registry struct {
	mu         sync.Mutex
	stores     *lru.Cache[string, *Store]
	stateStore StateStore
	locker     SubmitLocker
	keyPrefix  string
	logger     *logrus.Entry
	observer   ActionObserver
}

// NewRegistry creates a session registry
func NewRegistry(size int, keyPrefix string, stateStore StateStore, logger *logrus.Entry) (*Registry, error) {
	stores, err := lru.New[string, *Store](size)
	if err != nil {
		return nil, fmt.Errorf("lru.New: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	// Submissions must stay exclusive across evictions.
	var locker SubmitLocker = NewLocalSubmitLocker()
	if l, ok := stateStore.(SubmitLocker); ok {
		locker = l
	}

	return &Registry{
		stores:     stores,
		stateStore: stateStore,
		locker:     locker,
		keyPrefix:  keyPrefix,
		logger:     logger,
	}, nil
}

// SetObserver registers an action observer on every store handed out from now on
func (r *Registry) SetObserver(observer ActionObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = observer
}

// Get returns the store for a session, synced with its state slot
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is empty")
	}

	r.mu.Lock()
	store, ok := r.stores.Get(sessionID)
	if !ok {
		store = NewStore(r.keyPrefix+sessionID, r.stateStore, r.logger)
		store.setLocker(r.locker)
		if r.observer != nil {
			store.SetObserver(r.observer)
		}
		r.stores.Add(sessionID, store)
	}
	r.mu.Unlock()

	store.Load(ctx)
	return store, nil
}

// Len returns the number of cached sessions
func (r *Registry) Len() int {
	return r.stores.Len()
}
