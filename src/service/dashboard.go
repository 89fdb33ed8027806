package service

import (
	"context"
	"fmt"
	"time"

	"spot-observer/src/analysis"
	"spot-observer/src/cache"
	"spot-observer/src/helpers"
	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// Dashboard is the read surface offered to collaborators. All accessors read
// the cached snapshots; only the lazy variants may trigger a fetch.
type Dashboard struct {
	Registry *cache.Registry
	Analysis *analysis.AnalysisFacade
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

// businessDayCounter is implemented by calendars that can count a range.
type businessDayCounter interface {
	BusinessDaysBetween(from, to time.Time) int
}

// -----------------------------------------------------------------------------

func NewDashboard(reg *cache.Registry, facade *analysis.AnalysisFacade, log *logger.Logger) *Dashboard {
	return &Dashboard{
		Registry: reg,
		Analysis: facade,
		Location: facade.Location,
		Logger:   log,
		Now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

func (d *Dashboard) GetLatestPrices() *models.MSnapshot {
	return d.Registry.Get(models.SourceDayAheadPrice)
}

func (d *Dashboard) GetLatestGridSeries() *models.MSnapshot {
	return d.Registry.Get(models.SourceGridProduction)
}

func (d *Dashboard) GetLatestWindEstimate() *models.MSnapshot {
	return d.Registry.Get(models.SourceWindEstimate)
}

func (d *Dashboard) GetLatestExternalPriceSnapshot() *models.MSnapshot {
	return d.Registry.Get(models.SourceExternalPriceSnapshot)
}

// -----------------------------------------------------------------------------

// Snapshot returns the current snapshot of any source. With lazy set, a stale
// store is refreshed first through the same TTL gate as the scheduler.
func (d *Dashboard) Snapshot(ctx context.Context, id models.MSourceID, lazy bool) (*models.MSnapshot, error) {
	store, err := d.Registry.Store(id)
	if err != nil {
		return nil, err
	}

	var snap *models.MSnapshot
	if lazy {
		snap = store.GetOrRefresh(ctx)
	} else {
		snap = store.Get()
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", helpers.ErrNoSnapshot, id)
	}
	return snap, nil
}

// Sources reports the refresh state of every registered source.
func (d *Dashboard) Sources() []models.MRefreshMetrics {
	stores := d.Registry.Stores()
	out := make([]models.MRefreshMetrics, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.Metrics())
	}
	return out
}

// Summaries is the metadata view of every published snapshot.
func (d *Dashboard) Summaries() map[models.MSourceID]models.MSnapshotSummary {
	out := make(map[models.MSourceID]models.MSnapshotSummary)
	for _, s := range d.Registry.Stores() {
		snap := s.Get()
		if snap == nil {
			continue
		}
		sum := models.Summarize(snap)
		sum.NextEligibleAt = s.NextEligibleAt().Unix()
		out[s.Source()] = sum
	}
	return out
}

// Refresh runs one refresh of a source. With force set the TTL gate is
// bypassed, but never while another fetch of the same source is running.
func (d *Dashboard) Refresh(ctx context.Context, id models.MSourceID, force bool) error {
	store, err := d.Registry.Store(id)
	if err != nil {
		return err
	}
	if force {
		return store.ForceRefresh(ctx)
	}
	return store.Refresh(ctx)
}

// -----------------------------------------------------------------------------

func (d *Dashboard) prices() (*models.MSnapshot, error) {
	snap := d.GetLatestPrices()
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", helpers.ErrNoSnapshot, models.SourceDayAheadPrice)
	}
	return snap, nil
}

// AveragePrice is the mean scaled price over from <= t < to.
func (d *Dashboard) AveragePrice(from, to time.Time, regime models.MVatRegime) (float64, error) {
	snap, err := d.prices()
	if err != nil {
		return 0, err
	}
	return analysis.Average(snap.Rows(), from, to, regime)
}

// DailyExtrema returns the lowest and highest scaled price of day's local date.
func (d *Dashboard) DailyExtrema(day time.Time, regime models.MVatRegime) (float64, float64, error) {
	snap, err := d.prices()
	if err != nil {
		return 0, 0, err
	}
	return analysis.DailyExtrema(snap.Rows(), day, d.Location, regime)
}

// DailyReport is DailyExtrema with the business-day flag.
func (d *Dashboard) DailyReport(day time.Time, regime models.MVatRegime) (models.MDailyExtrema, error) {
	snap, err := d.prices()
	if err != nil {
		return models.MDailyExtrema{}, err
	}
	return d.Analysis.DailyExtrema(snap, day, regime)
}

// BusinessDayAverage averages prices over business days only.
func (d *Dashboard) BusinessDayAverage(from, to time.Time, regime models.MVatRegime) (float64, error) {
	snap, err := d.prices()
	if err != nil {
		return 0, err
	}
	if d.Analysis.Calendar == nil {
		return analysis.Average(snap.Rows(), from, to, regime)
	}
	return analysis.BusinessDayAverage(snap.Rows(), from, to, d.Analysis.Calendar, regime)
}

// BusinessDays counts the business days in [from, to). It is 0 when the
// calendar cannot count ranges.
func (d *Dashboard) BusinessDays(from, to time.Time) int {
	counter, ok := d.Analysis.Calendar.(businessDayCounter)
	if !ok {
		return 0
	}
	return counter.BusinessDaysBetween(from, to)
}

// -----------------------------------------------------------------------------

// PriceSummary builds the dashboard price view at now, refreshing the price
// store first when it is stale.
func (d *Dashboard) PriceSummary(ctx context.Context, now time.Time, regime models.MVatRegime) (models.MPriceSummary, error) {
	snap, err := d.Snapshot(ctx, models.SourceDayAheadPrice, true)
	if err != nil {
		return models.MPriceSummary{}, err
	}
	return d.Analysis.PriceSummary(snap, now, regime)
}

// -----------------------------------------------------------------------------

// Renewables is the wind + hydro + solar production series.
func (d *Dashboard) Renewables() ([]models.MSeriesPoint, error) {
	snap := d.GetLatestGridSeries()
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", helpers.ErrNoSnapshot, models.SourceGridProduction)
	}
	return analysis.RenewablesSeries(snap), nil
}

// NetImportExport sums the import/export balance of day's local date.
func (d *Dashboard) NetImportExport(day time.Time) (float64, error) {
	snap := d.GetLatestGridSeries()
	if snap == nil {
		return 0, fmt.Errorf("%w: %s", helpers.ErrNoSnapshot, models.SourceGridProduction)
	}
	return analysis.DailySum(snap.Series[models.SeriesNetImportExport], day, d.Location)
}
