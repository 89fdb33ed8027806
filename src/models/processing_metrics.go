package models

import "time"

// MRefreshMetrics describes the refresh state of one source.
type MRefreshMetrics struct {
	Source         MSourceID `json:"source"`
	Interval       string    `json:"interval"`
	HasSnapshot    bool      `json:"has_snapshot"`
	RetrievedAt    time.Time `json:"retrieved_at,omitempty"`
	NextEligibleAt time.Time `json:"next_eligible_at"`
	Fetches        int64     `json:"fetches"`
	Failures       int64     `json:"failures"`
	LastError      string    `json:"last_error,omitempty"`
}
