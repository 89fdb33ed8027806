package analysis

import "time"

// -----------------------------------------------------------------------------

// KeepEveryNth keeps element i iff i % n == 0. The first element is always
// kept and the result has ceil(len/n) elements. n <= 1 returns the input.
func KeepEveryNth[T any](data []T, n int) []T {
	if n <= 1 || len(data) == 0 {
		return data
	}

	out := make([]T, 0, (len(data)+n-1)/n)
	for i := 0; i < len(data); i += n {
		out = append(out, data[i])
	}
	return out
}

// -----------------------------------------------------------------------------

// DayBounds returns the local midnight of t's day and the next local midnight.
// The window is 23 or 25 hours long on DST transition days.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the local start of t's month and of the next month.
func MonthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// YearBounds returns the local start of t's year and of the next year.
func YearBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}

// WeekBounds covers the seven local days ending with t's day.
func WeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start, end := DayBounds(t, loc)
	return start.AddDate(0, 0, -6), end
}

// -----------------------------------------------------------------------------

// sameHour compares two instants at hour precision.
func sameHour(a, b time.Time) bool {
	return a.Truncate(time.Hour).Equal(b.Truncate(time.Hour))
}

// sameLocalDate reports whether a and b fall on the same calendar date in loc.
func sameLocalDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
