package models

import "time"

// MPriceSummary is the derived price view shown on the dashboard. Nil fields
// mean the value is not available in the current snapshot.
type MPriceSummary struct {
	Vat            int       `json:"vat"`
	At             time.Time `json:"at"`
	Now            *float64  `json:"now"`
	InOneHour      *float64  `json:"in_one_hour"`
	TodayMin       *float64  `json:"today_min"`
	TodayMax       *float64  `json:"today_max"`
	WeekAverage    *float64  `json:"week_average"`
	MonthAverage   *float64  `json:"month_average"`
	YearAverage    *float64  `json:"year_average"`
	RetrievedAt    time.Time `json:"retrieved_at"`
	UpstreamUpdate time.Time `json:"upstream_updated_at,omitempty"`
}

// MDailyExtrema is the lowest and highest scaled price of one local day.
type MDailyExtrema struct {
	Day         string  `json:"day"`
	Vat         int     `json:"vat"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	BusinessDay bool    `json:"business_day"`
}

// MSeriesPoint is one point of a derived series.
type MSeriesPoint struct {
	StartTime time.Time `json:"startTime"`
	Value     float64   `json:"value"`
}
