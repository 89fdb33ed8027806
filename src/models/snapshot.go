package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DSTGapValue is the placeholder the price upstream sends for the hour that does
// not exist when clocks move forward.
const DSTGapValue = "-"

// MRawValue keeps the upstream value token as received. Numbers and numeric
// strings (including comma decimals) are both accepted.
type MRawValue string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (v *MRawValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = MRawValue(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = MRawValue(n.String())
	return nil
}

// MarshalJSON writes numeric tokens as numbers and anything else as a string.
func (v MRawValue) MarshalJSON() ([]byte, error) {
	if f, ok := v.Float(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(string(v))
}

// Float parses the token. ok is false for the DST sentinel, empty values,
// NaN and infinities, and anything else that is not a number.
func (v MRawValue) Float() (float64, bool) {
	s := string(v)
	if s == "" || s == DSTGapValue {
		return 0, false
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// -----------------------------------------------------------------------------

// MRow is one (timestamp, value) pair of an upstream series.
type MRow struct {
	StartTime time.Time `json:"startTime"`
	Value     MRawValue `json:"value"`
}

// -----------------------------------------------------------------------------

// MSnapshot is the immutable result of one successful fetch. Once published it
// is shared by every reader and must not be modified.
type MSnapshot struct {
	Source            MSourceID         `json:"source"`
	FetchID           string            `json:"fetch_id"`
	RetrievedAt       time.Time         `json:"retrieved_at"`
	UpstreamUpdatedAt time.Time         `json:"upstream_updated_at,omitempty"`
	Series            map[string][]MRow `json:"series"`
}

// Rows returns the primary series of the snapshot.
func (s *MSnapshot) Rows() []MRow {
	if s == nil {
		return nil
	}
	return s.Series[PrimarySeries(s.Source)]
}

// RowCount counts rows across all series.
func (s *MSnapshot) RowCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, rows := range s.Series {
		n += len(rows)
	}
	return n
}
