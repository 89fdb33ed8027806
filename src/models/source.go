package models

import "fmt"

// MSourceID identifies one upstream data source.
type MSourceID string

const (
	SourceDayAheadPrice         MSourceID = "day_ahead_price"
	SourceGridProduction        MSourceID = "grid_production"
	SourceWindEstimate          MSourceID = "wind_estimate"
	SourceExternalPriceSnapshot MSourceID = "external_price_snapshot"
)

// AllSources lists every known source in a stable order.
var AllSources = []MSourceID{
	SourceDayAheadPrice,
	SourceGridProduction,
	SourceWindEstimate,
	SourceExternalPriceSnapshot,
}

// -----------------------------------------------------------------------------

// ParseSourceID validates a source identifier coming from config or a request.
func ParseSourceID(s string) (MSourceID, error) {
	for _, id := range AllSources {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// -----------------------------------------------------------------------------

// Primary series name for each source. Rows() on a snapshot returns this one.
const (
	SeriesPrices          = "prices"
	SeriesHydroPower      = "HydroPower"
	SeriesNuclearPower    = "NuclearPower"
	SeriesWindPower       = "WindPower"
	SeriesSolarPower      = "SolarPower"
	SeriesConsumption     = "Consumption"
	SeriesNetImportExport = "NetImportExport"
	SeriesWindEstimate    = "windEstimate"
)

// GridSeries are the production series published by the grid operator.
var GridSeries = []string{
	SeriesHydroPower,
	SeriesNuclearPower,
	SeriesWindPower,
	SeriesSolarPower,
	SeriesConsumption,
	SeriesNetImportExport,
}

// PrimarySeries returns the series name that carries the main values of a source.
func PrimarySeries(id MSourceID) string {
	switch id {
	case SourceGridProduction:
		return SeriesWindPower
	case SourceWindEstimate:
		return SeriesWindEstimate
	default:
		return SeriesPrices
	}
}
