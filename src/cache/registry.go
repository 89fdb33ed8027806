package cache

import (
	"fmt"
	"sync"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// PublishListener is called on the refreshing goroutine after a snapshot has
// been published.
type PublishListener func(*models.MSnapshot)

// Registry owns one Store per source.
type Registry struct {
	Logger *logger.Logger

	mu        sync.RWMutex
	stores    map[models.MSourceID]*Store
	order     []models.MSourceID
	listeners []PublishListener
}

// -----------------------------------------------------------------------------

func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewLogger(nil, "Registry")
	}
	return &Registry{
		Logger: log,
		stores: make(map[models.MSourceID]*Store),
	}
}

// -----------------------------------------------------------------------------

// Add creates the store for a fetcher. Each source may be added once.
func (r *Registry) Add(fetcher interfaces.IFetcher, cadence time.Duration, opts ...StoreOption) (*Store, error) {
	id := fetcher.Source()

	opts = append([]StoreOption{WithLogger(r.Logger.Named("Store-" + string(id)))}, opts...)
	store := NewStore(fetcher, cadence, opts...)
	store.notify = r.notify

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[id]; exists {
		return nil, fmt.Errorf("source %s already registered", id)
	}
	r.stores[id] = store
	r.order = append(r.order, id)
	r.Logger.Info("Registered source %s (every %s)", id, store.cadence)
	return store, nil
}

// -----------------------------------------------------------------------------

// Store returns the store of a source.
func (r *Registry) Store(id models.MSourceID) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", helpers.ErrUnknownSource, id)
	}
	return store, nil
}

// Get returns the current snapshot of a source, nil when unknown or absent.
func (r *Registry) Get(id models.MSourceID) *models.MSnapshot {
	store, err := r.Store(id)
	if err != nil {
		return nil
	}
	return store.Get()
}

// Stores lists every store in registration order.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Store, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.stores[id])
	}
	return list
}

// -----------------------------------------------------------------------------

// Subscribe registers a listener for every future publish.
func (r *Registry) Subscribe(fn PublishListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) notify(snap *models.MSnapshot) {
	r.mu.RLock()
	listeners := make([]PublishListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
