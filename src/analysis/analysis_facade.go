package analysis

import (
	"time"

	"spot-observer/src/logger"
	"spot-observer/src/models"
)

// AnalysisFacade bundles the aggregations shown together on the dashboard.
type AnalysisFacade struct {
	Location *time.Location
	Calendar BusinessDayChecker
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(loc *time.Location, cal BusinessDayChecker, log *logger.Logger) *AnalysisFacade {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalysisFacade{
		Location: loc,
		Calendar: cal,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// PriceSummary derives price now, in one hour, today's extrema and the week,
// month and year averages from a price snapshot. Values missing from the
// snapshot are left nil.
func (a *AnalysisFacade) PriceSummary(snapshot *models.MSnapshot, now time.Time, regime models.MVatRegime) (models.MPriceSummary, error) {
	if _, err := regimeMultiplier(regime); err != nil {
		return models.MPriceSummary{}, err
	}

	summary := models.MPriceSummary{
		Vat:            int(regime),
		At:             now.In(a.Location),
		RetrievedAt:    snapshot.RetrievedAt,
		UpstreamUpdate: snapshot.UpstreamUpdatedAt,
	}
	rows := snapshot.Rows()

	if v, ok := PriceNow(rows, now, regime); ok {
		summary.Now = &v
	}
	if v, ok := PriceInOneHour(rows, now, regime); ok {
		summary.InOneHour = &v
	}
	if lo, hi, err := DailyExtrema(rows, now, a.Location, regime); err == nil {
		summary.TodayMin, summary.TodayMax = &lo, &hi
	}
	if v, err := WeekAverage(rows, now, a.Location, regime); err == nil {
		summary.WeekAverage = &v
	}
	if v, err := MonthAverage(rows, now, a.Location, regime); err == nil {
		summary.MonthAverage = &v
	}
	if v, err := YearAverage(rows, now, a.Location, regime); err == nil {
		summary.YearAverage = &v
	}

	if a.Logger != nil {
		a.Logger.Debug("Price summary for %s from %d rows (fetch %s)", regime, len(rows), snapshot.FetchID)
	}
	return summary, nil
}

// -----------------------------------------------------------------------------

// DailyExtrema wraps the package function with the facade's location and adds
// the business-day flag.
func (a *AnalysisFacade) DailyExtrema(snapshot *models.MSnapshot, day time.Time, regime models.MVatRegime) (models.MDailyExtrema, error) {
	lo, hi, err := DailyExtrema(snapshot.Rows(), day, a.Location, regime)
	if err != nil {
		return models.MDailyExtrema{}, err
	}

	out := models.MDailyExtrema{
		Day: day.In(a.Location).Format(time.DateOnly),
		Vat: int(regime),
		Min: lo,
		Max: hi,
	}
	if a.Calendar != nil {
		out.BusinessDay = a.Calendar.IsBusinessDay(day)
	}
	return out, nil
}
