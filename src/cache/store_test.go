package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// fakeFetcher returns snapshots stamped with the clock, or the queued error.
type fakeFetcher struct {
	id    models.MSourceID
	clock *fakeClock
	calls atomic.Int64

	mu  sync.Mutex
	err error
}

func (f *fakeFetcher) Source() models.MSourceID { return f.id }

func (f *fakeFetcher) Fetch(ctx context.Context) (*models.MSnapshot, error) {
	n := f.calls.Add(1)
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &models.MSnapshot{
		Source:      f.id,
		FetchID:     string(rune('a' + n)),
		RetrievedAt: f.clock.Now(),
		Series:      map[string][]models.MRow{models.SeriesPrices: {{StartTime: f.clock.Now(), Value: "1"}}},
	}, nil
}

func (f *fakeFetcher) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var t0 = time.Date(2024, 5, 2, 10, 7, 0, 0, time.UTC)

func newTestStore(cadence time.Duration) (*Store, *fakeFetcher, *fakeClock) {
	clock := &fakeClock{t: t0}
	f := &fakeFetcher{id: models.SourceDayAheadPrice, clock: clock}
	s := NewStore(f, cadence, WithClock(clock.Now), WithLogger(logger.NewTestLogger(io.Discard, "store")))
	return s, f, clock
}

func TestStore_AbsentUntilFirstFetch(t *testing.T) {
	s, f, _ := newTestStore(30 * time.Minute)

	assert.Nil(t, s.Get())
	assert.Zero(t, f.calls.Load(), "Get never fetches")

	snap := s.GetOrRefresh(context.Background())
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), f.calls.Load())
	assert.Same(t, snap, s.Get())
}

func TestStore_TTLGate(t *testing.T) {
	s, f, clock := newTestStore(30 * time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC), s.NextEligibleAt().UTC())

	clock.Set(t0.Add(20 * time.Minute))
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int64(1), f.calls.Load(), "still inside the window")

	clock.Set(time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC))
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int64(2), f.calls.Load())
	assert.Equal(t, time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC), s.NextEligibleAt().UTC())
}

func TestStore_SingleFlight(t *testing.T) {
	s, f, _ := newTestStore(30 * time.Minute)

	const n = 64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			s.GetOrRefresh(context.Background())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), f.calls.Load())
	assert.NotNil(t, s.Get())
}

func TestStore_SingleFlightWhileFetching(t *testing.T) {
	clock := &fakeClock{t: t0}
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int64
	f := fetcherFunc(func(ctx context.Context) (*models.MSnapshot, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return &models.MSnapshot{Source: models.SourceWindEstimate, RetrievedAt: clock.Now()}, nil
	})
	s := NewStore(f, time.Minute, WithClock(clock.Now), WithLogger(logger.NewTestLogger(io.Discard, "store")))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Refresh(context.Background())
	}()
	<-entered

	// Even a forced refresh past the window must not start a second fetch.
	clock.Set(t0.Add(time.Hour))
	assert.Nil(t, s.GetOrRefresh(context.Background()), "readers do not wait for the running fetch")
	assert.NoError(t, s.ForceRefresh(context.Background()))

	close(release)
	<-done
	assert.Equal(t, int64(1), calls.Load())
	assert.NotNil(t, s.Get())
}

func TestStore_KeepLastGood(t *testing.T) {
	s, f, clock := newTestStore(30 * time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	before := s.Get()
	require.NotNil(t, before)

	clock.Set(t0.Add(30 * time.Minute))
	f.FailWith(helpers.NewDecodeError("bad payload", nil))
	err := s.Refresh(ctx)
	assert.True(t, helpers.IsDecode(err))
	assert.Same(t, before, s.Get())

	// Transport failure: snapshot kept, window advanced to the next boundary.
	clock.Set(time.Date(2024, 5, 2, 11, 12, 0, 0, time.UTC))
	f.FailWith(helpers.NewTransportError("connection refused", errors.New("dial tcp")))
	err = s.Refresh(ctx)
	assert.True(t, helpers.IsTransport(err))
	assert.Same(t, before, s.Get())
	assert.Equal(t, time.Date(2024, 5, 2, 11, 30, 0, 0, time.UTC), s.NextEligibleAt().UTC())

	m := s.Metrics()
	assert.Equal(t, int64(3), m.Fetches)
	assert.Equal(t, int64(2), m.Failures)
	assert.Contains(t, m.LastError, "connection refused")
	assert.True(t, m.HasSnapshot)
}

func TestStore_Monotonic(t *testing.T) {
	s, _, clock := newTestStore(time.Minute)
	ctx := context.Background()

	var last time.Time
	for i := 0; i < 5; i++ {
		clock.Set(t0.Add(time.Duration(i) * time.Minute))
		require.NoError(t, s.Refresh(ctx))
		got := s.Get().RetrievedAt
		assert.False(t, got.Before(last))
		last = got
	}

	current := s.Get()
	assert.False(t, s.publish(&models.MSnapshot{RetrievedAt: current.RetrievedAt.Add(-time.Second)}))
	assert.Same(t, current, s.Get())

	newer := &models.MSnapshot{RetrievedAt: current.RetrievedAt.Add(time.Second)}
	assert.True(t, s.publish(newer))
	assert.Same(t, newer, s.Get())
}

func TestStore_ForceRefresh(t *testing.T) {
	s, f, _ := newTestStore(30 * time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, int64(1), f.calls.Load())

	require.NoError(t, s.ForceRefresh(ctx))
	assert.Equal(t, int64(2), f.calls.Load())
}

type fetcherFunc func(ctx context.Context) (*models.MSnapshot, error)

func (fn fetcherFunc) Source() models.MSourceID { return models.SourceWindEstimate }

func (fn fetcherFunc) Fetch(ctx context.Context) (*models.MSnapshot, error) { return fn(ctx) }

func TestStore_GetOrRefreshIgnoresReaderCancellation(t *testing.T) {
	clock := &fakeClock{t: t0}
	fetcher := fetcherFunc(func(ctx context.Context) (*models.MSnapshot, error) {
		if err := ctx.Err(); err != nil {
			return nil, helpers.NewTransportError("request aborted", err)
		}
		return &models.MSnapshot{
			Source:      models.SourceWindEstimate,
			FetchID:     "wind",
			RetrievedAt: clock.Now(),
			Series:      map[string][]models.MRow{models.SeriesWindEstimate: {{StartTime: clock.Now(), Value: "1"}}},
		}, nil
	})
	s := NewStore(fetcher, 30*time.Minute, WithClock(clock.Now), WithLogger(logger.NewTestLogger(io.Discard, "store")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := s.GetOrRefresh(ctx)
	require.NotNil(t, snap)
	assert.Equal(t, "wind", snap.FetchID)
	assert.Zero(t, s.Metrics().Failures)
	assert.Same(t, snap, s.GetOrRefresh(context.Background()))
}
