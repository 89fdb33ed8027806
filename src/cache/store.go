package cache

import (
	"context"
	"sync/atomic"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/interfaces"
	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// Store holds the latest accepted snapshot of one source and gates refreshes
// on nextEligibleAt. Readers never block: Get is a single atomic load.
type Store struct {
	id      models.MSourceID
	fetcher interfaces.IFetcher
	cadence time.Duration
	now     func() time.Time
	logger  *logger.Logger
	notify  func(*models.MSnapshot)

	current        atomic.Pointer[models.MSnapshot]
	nextEligibleAt atomic.Int64 // unix nanos
	inFlight       atomic.Bool

	fetches   atomic.Int64
	failures  atomic.Int64
	lastError atomic.Pointer[string]
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger replaces the default logger.
func WithLogger(log *logger.Logger) StoreOption {
	return func(s *Store) { s.logger = log }
}

// -----------------------------------------------------------------------------

func NewStore(fetcher interfaces.IFetcher, cadence time.Duration, opts ...StoreOption) *Store {
	if cadence <= 0 {
		cadence = 30 * time.Minute
	}
	s := &Store{
		id:      fetcher.Source(),
		fetcher: fetcher,
		cadence: cadence,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewLogger(nil, "Store-"+string(s.id))
	}
	return s
}

// -----------------------------------------------------------------------------

// Source returns the source this store serves.
func (s *Store) Source() models.MSourceID {
	return s.id
}

// Cadence returns the refresh interval.
func (s *Store) Cadence() time.Duration {
	return s.cadence
}

// Get returns the current snapshot or nil when none was ever published.
func (s *Store) Get() *models.MSnapshot {
	return s.current.Load()
}

// NextEligibleAt is the earliest time a refresh may start a fetch.
func (s *Store) NextEligibleAt() time.Time {
	return time.Unix(0, s.nextEligibleAt.Load())
}

// -----------------------------------------------------------------------------

// Refresh fetches a new snapshot if the store is eligible. A call made before
// nextEligibleAt, or while another fetch is running, returns nil at once.
// Transport and decode failures keep the previous snapshot and are returned
// for logging; nextEligibleAt stays advanced either way.
func (s *Store) Refresh(ctx context.Context) error {
	if s.now().UnixNano() < s.nextEligibleAt.Load() {
		return nil
	}
	return s.refresh(ctx, false)
}

// ForceRefresh ignores nextEligibleAt but still never overlaps a running fetch.
func (s *Store) ForceRefresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

// GetOrRefresh is Refresh followed by Get. Refresh errors are already logged
// and are not surfaced to readers.
func (s *Store) GetOrRefresh(ctx context.Context) *models.MSnapshot {
	_ = s.Refresh(ctx)
	return s.Get()
}

// -----------------------------------------------------------------------------

func (s *Store) refresh(ctx context.Context, force bool) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer s.inFlight.Store(false)

	now := s.now()
	next := s.nextEligibleAt.Load()
	if !force && now.UnixNano() < next {
		// Another caller finished a fetch between our check and the claim.
		return nil
	}
	claim := now.Truncate(s.cadence).Add(s.cadence).UnixNano()
	if !s.nextEligibleAt.CompareAndSwap(next, claim) {
		return nil
	}

	s.fetches.Add(1)
	// A reader going away must not abort the claimed fetch.
	snap, err := s.fetcher.Fetch(context.WithoutCancel(ctx))
	if err != nil {
		s.failures.Add(1)
		msg := err.Error()
		s.lastError.Store(&msg)
		s.logger.Warning("Refresh failed (%s), keeping previous snapshot until %s: %v",
			helpers.Kind(err), time.Unix(0, claim).Format(time.RFC3339), err)
		return err
	}

	s.lastError.Store(nil)
	if !s.publish(snap) {
		s.logger.Warning("Discarded snapshot %s: retrieved at %s, older than the current one", snap.FetchID, snap.RetrievedAt.Format(time.RFC3339))
		return nil
	}

	s.logger.Info("Published snapshot %s with %d rows", snap.FetchID, snap.RowCount())
	if s.notify != nil {
		s.notify(snap)
	}
	return nil
}

// publish replaces the current snapshot unless snap is older than it.
func (s *Store) publish(snap *models.MSnapshot) bool {
	for {
		cur := s.current.Load()
		if cur != nil && snap.RetrievedAt.Before(cur.RetrievedAt) {
			return false
		}
		if s.current.CompareAndSwap(cur, snap) {
			return true
		}
	}
}

// -----------------------------------------------------------------------------

// Metrics reports the refresh state for status surfaces.
func (s *Store) Metrics() models.MRefreshMetrics {
	m := models.MRefreshMetrics{
		Source:         s.id,
		Interval:       s.cadence.String(),
		NextEligibleAt: s.NextEligibleAt(),
		Fetches:        s.fetches.Load(),
		Failures:       s.failures.Load(),
	}
	if snap := s.Get(); snap != nil {
		m.HasSnapshot = true
		m.RetrievedAt = snap.RetrievedAt
	}
	if msg := s.lastError.Load(); msg != nil {
		m.LastError = *msg
	}
	return m
}
