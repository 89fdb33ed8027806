package models

// -----------------------------------------------------------------------------
// Push message sent to websocket clients
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type      string                         `json:"type"` // "INITIAL" or "UPDATE"
	Sources   map[MSourceID]MSnapshotSummary `json:"sources"`
	Timestamp int64                          `json:"timestamp"`
}

// MSnapshotSummary is the metadata of a snapshot without its rows.
type MSnapshotSummary struct {
	Source            MSourceID      `json:"source"`
	FetchID           string         `json:"fetch_id"`
	RetrievedAt       int64          `json:"retrieved_at"`
	UpstreamUpdatedAt int64          `json:"upstream_updated_at,omitempty"`
	SeriesRows        map[string]int `json:"series_rows"`
	NextEligibleAt    int64          `json:"next_eligible_at"`
}

// Summarize builds the metadata view of a snapshot.
func Summarize(s *MSnapshot) MSnapshotSummary {
	sum := MSnapshotSummary{
		Source:      s.Source,
		FetchID:     s.FetchID,
		RetrievedAt: s.RetrievedAt.Unix(),
		SeriesRows:  make(map[string]int, len(s.Series)),
	}
	if !s.UpstreamUpdatedAt.IsZero() {
		sum.UpstreamUpdatedAt = s.UpstreamUpdatedAt.Unix()
	}
	for name, rows := range s.Series {
		sum.SeriesRows[name] = len(rows)
	}
	return sum
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Sources []string `json:"sources"`
}
