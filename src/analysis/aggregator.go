package analysis

import (
	"time"

	"spot-observer/src/analysis/core"
	"spot-observer/src/helpers"
	"spot-observer/src/models"

	"github.com/shopspring/decimal"
)

// BusinessDayChecker decides whether a date is a working day.
type BusinessDayChecker interface {
	IsBusinessDay(t time.Time) bool
}

// -----------------------------------------------------------------------------

// collectRaw parses every row accepted by keep. Rows that fail to parse are
// skipped.
func collectRaw(rows []models.MRow, keep func(models.MRow) bool) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		if !keep(row) {
			continue
		}
		v, err := ParseRaw(row.Value)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

// collect is collectRaw followed by VAT scaling.
func collect(rows []models.MRow, regime models.MVatRegime, keep func(models.MRow) bool) ([]decimal.Decimal, error) {
	mult, err := regimeMultiplier(regime)
	if err != nil {
		return nil, err
	}
	values := collectRaw(rows, keep)
	for i, v := range values {
		values[i] = v.Mul(mult).Div(ten)
	}
	return values, nil
}

func inWindow(from, to time.Time) func(models.MRow) bool {
	return func(r models.MRow) bool {
		return !r.StartTime.Before(from) && r.StartTime.Before(to)
	}
}

// -----------------------------------------------------------------------------

// Average is the mean scaled price over from <= startTime < to. Rows carrying
// the DST sentinel are left out of both the sum and the count.
func Average(rows []models.MRow, from, to time.Time, regime models.MVatRegime) (float64, error) {
	values, err := collect(rows, regime, inWindow(from, to))
	if err != nil {
		return 0, err
	}
	mean, ok := core.CalculateMean(values)
	if !ok {
		return 0, helpers.ErrNoRows
	}
	return mean.InexactFloat64(), nil
}

// -----------------------------------------------------------------------------

// DailyExtrema returns the lowest and highest scaled price among rows on
// day's local date.
func DailyExtrema(rows []models.MRow, day time.Time, loc *time.Location, regime models.MVatRegime) (float64, float64, error) {
	values, err := collect(rows, regime, func(r models.MRow) bool {
		return sameLocalDate(r.StartTime, day, loc)
	})
	if err != nil {
		return 0, 0, err
	}
	min, max, ok := core.CalculateMinMax(values)
	if !ok {
		return 0, 0, helpers.ErrNoRows
	}
	return min.InexactFloat64(), max.InexactFloat64(), nil
}

// -----------------------------------------------------------------------------

// PointAt finds the row starting in the same hour as ts. ok is false when no
// row matches or the matching row holds no number.
func PointAt(rows []models.MRow, ts time.Time, regime models.MVatRegime) (float64, bool) {
	for _, row := range rows {
		if !sameHour(row.StartTime, ts) {
			continue
		}
		v, err := ScalePrice(row.Value, regime)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// PriceNow is the price of the hour containing now.
func PriceNow(rows []models.MRow, now time.Time, regime models.MVatRegime) (float64, bool) {
	return PointAt(rows, now, regime)
}

// PriceInOneHour is the price of the hour after now.
func PriceInOneHour(rows []models.MRow, now time.Time, regime models.MVatRegime) (float64, bool) {
	return PointAt(rows, now.Add(time.Hour), regime)
}

// -----------------------------------------------------------------------------

// MonthAverage averages over the local calendar month containing now.
func MonthAverage(rows []models.MRow, now time.Time, loc *time.Location, regime models.MVatRegime) (float64, error) {
	from, to := MonthBounds(now, loc)
	return Average(rows, from, to, regime)
}

// YearAverage averages over the local calendar year containing now.
func YearAverage(rows []models.MRow, now time.Time, loc *time.Location, regime models.MVatRegime) (float64, error) {
	from, to := YearBounds(now, loc)
	return Average(rows, from, to, regime)
}

// WeekAverage averages over the seven local days ending today.
func WeekAverage(rows []models.MRow, now time.Time, loc *time.Location, regime models.MVatRegime) (float64, error) {
	from, to := WeekBounds(now, loc)
	return Average(rows, from, to, regime)
}

// -----------------------------------------------------------------------------

// BusinessDayAverage averages over from <= startTime < to, keeping only rows
// whose local date is a business day.
func BusinessDayAverage(rows []models.MRow, from, to time.Time, cal BusinessDayChecker, regime models.MVatRegime) (float64, error) {
	window := inWindow(from, to)
	values, err := collect(rows, regime, func(r models.MRow) bool {
		return window(r) && cal.IsBusinessDay(r.StartTime)
	})
	if err != nil {
		return 0, err
	}
	mean, ok := core.CalculateMean(values)
	if !ok {
		return 0, helpers.ErrNoRows
	}
	return mean.InexactFloat64(), nil
}

// -----------------------------------------------------------------------------

// RenewablesSeries sums wind, hydro and solar production index by index. An
// index where any component holds no number is skipped.
func RenewablesSeries(snapshot *models.MSnapshot) []models.MSeriesPoint {
	if snapshot == nil {
		return nil
	}
	wind := snapshot.Series[models.SeriesWindPower]
	hydro := snapshot.Series[models.SeriesHydroPower]
	solar := snapshot.Series[models.SeriesSolarPower]

	n := min(len(wind), len(hydro), len(solar))
	out := make([]models.MSeriesPoint, 0, n)
	for i := 0; i < n; i++ {
		total := decimal.Zero
		valid := true
		for _, r := range []models.MRow{wind[i], hydro[i], solar[i]} {
			d, err := ParseRaw(r.Value)
			if err != nil {
				valid = false
				break
			}
			total = total.Add(d)
		}
		if !valid {
			continue
		}
		out = append(out, models.MSeriesPoint{StartTime: wind[i].StartTime, Value: total.InexactFloat64()})
	}
	return out
}

// DailySum adds the raw values of rows on day's local date. Used for the net
// import/export balance.
func DailySum(rows []models.MRow, day time.Time, loc *time.Location) (float64, error) {
	values := collectRaw(rows, func(r models.MRow) bool {
		return sameLocalDate(r.StartTime, day, loc)
	})
	if len(values) == 0 {
		return 0, helpers.ErrNoRows
	}
	return core.CalculateSum(values).InexactFloat64(), nil
}
