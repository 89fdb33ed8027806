package base

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/models"
)

// timestampLayouts are tried in order when parsing upstream start times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// WireRow is the row shape shared by the upstreams. The start time arrives as
// startTime, start_time or date depending on the provider.
type WireRow struct {
	StartTime      string           `json:"startTime"`
	StartTimeSnake string           `json:"start_time"`
	Date           string           `json:"date"`
	Value          models.MRawValue `json:"value"`
}

func (w WireRow) start() string {
	switch {
	case w.StartTime != "":
		return w.StartTime
	case w.StartTimeSnake != "":
		return w.StartTimeSnake
	default:
		return w.Date
	}
}

// -----------------------------------------------------------------------------

// ParseTimestamp accepts RFC 3339 and the zone-less variants some providers
// send. Zone-less values are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// -----------------------------------------------------------------------------

// ConvertRows maps wire rows to model rows. Any unparsable timestamp fails the
// whole series.
func ConvertRows(name string, wire []WireRow, loc *time.Location) ([]models.MRow, error) {
	rows := make([]models.MRow, 0, len(wire))
	for i, w := range wire {
		ts, err := ParseTimestamp(w.start(), loc)
		if err != nil {
			return nil, helpers.NewDecodeError(fmt.Sprintf("series %s row %d", name, i), err)
		}
		rows = append(rows, models.MRow{StartTime: ts, Value: w.Value})
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

// ValidateSeries is the validity predicate applied before a snapshot may be
// published: the series is non-empty and its first row starts before its last.
func ValidateSeries(name string, rows []models.MRow) error {
	if len(rows) == 0 {
		return helpers.NewDecodeError(fmt.Sprintf("series %s is empty", name), nil)
	}
	first, last := rows[0].StartTime, rows[len(rows)-1].StartTime
	if len(rows) > 1 && !first.Before(last) {
		return helpers.NewDecodeError(fmt.Sprintf("series %s has a malformed range %s..%s", name, first.Format(time.RFC3339), last.Format(time.RFC3339)), nil)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Unmarshal wraps JSON failures as DecodeError.
func Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return helpers.NewDecodeError("malformed payload", err)
	}
	return nil
}

// ParseUpdatedAt parses an optional upstream update stamp. Empty or
// unparsable input yields the zero time.
func ParseUpdatedAt(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := ParseTimestamp(s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
