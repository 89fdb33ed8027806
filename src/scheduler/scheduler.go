package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spot-observer/src/cache"
	"spot-observer/src/helpers"
	"spot-observer/src/logger"

	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Scheduler refreshes every store of a registry on its own cadence, on a
// fixed-size worker pool, independently of reader traffic.
type Scheduler struct {
	Registry *cache.Registry
	Logger   *logger.Logger

	workers int
	sem     chan struct{}

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewScheduler(reg *cache.Registry, workers int, log *logger.Logger) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.NewLogger(nil, "Scheduler")
	}
	return &Scheduler{
		Registry: reg,
		Logger:   log,
		workers:  workers,
		sem:      make(chan struct{}, workers),
	}
}

// -----------------------------------------------------------------------------

// Start launches one loop per store. Each loop refreshes immediately and then
// on every tick of the store's cadence until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelFunc != nil {
		return errors.New("scheduler is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	stores := s.Registry.Stores()
	for _, store := range stores {
		s.wg.Add(1)
		go s.loop(ctx, store)
	}

	s.Logger.Info("Scheduler started: %d sources on %d workers", len(stores), s.workers)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels pending ticks and waits for every loop to exit. A fetch that is
// already running is allowed to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	s.Logger.Info("Stopping scheduler...")
	cancel()
	s.wg.Wait()
	s.Logger.Info("Scheduler stopped.")
}

// -----------------------------------------------------------------------------

func (s *Scheduler) loop(ctx context.Context, store *cache.Store) {
	defer s.wg.Done()

	s.run(ctx, store)

	ticker := time.NewTicker(store.Cadence())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, store)
		}
	}
}

// run takes a worker slot and refreshes one store. The fetch runs on a context
// detached from the scheduler's cancellation.
func (s *Scheduler) run(ctx context.Context, store *cache.Store) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.sem }()

	if err := store.Refresh(context.WithoutCancel(ctx)); err != nil {
		s.Logger.Error("Scheduled refresh of %s failed (%s); next attempt at %s",
			store.Source(), helpers.Kind(err), store.NextEligibleAt().Format(time.RFC3339))
	}
}

// -----------------------------------------------------------------------------

// RefreshAll refreshes every source once, at most `workers` at a time. With
// force the TTL gate is bypassed (a running fetch is still never duplicated).
// Every source is attempted; the first failure is returned.
func (s *Scheduler) RefreshAll(ctx context.Context, force bool) error {
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, store := range s.Registry.Stores() {
		g.Go(func() error {
			var err error
			if force {
				err = store.ForceRefresh(ctx)
			} else {
				err = store.Refresh(ctx)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", store.Source(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
