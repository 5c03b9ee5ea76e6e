package models

import "time"

// DataPoint is one observation of a single-valued series.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int64     `json:"count"`
}

// When returns the observation instant.
func (p DataPoint) When() time.Time { return p.Timestamp }

// CategoryPoint is one observation of a multi-category series
// (token supply split by tier). Absent categories are zero.
type CategoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Low       int64     `json:"low"`
	Medium    int64     `json:"medium"`
	High      int64     `json:"high"`
	Total     int64     `json:"total"`
}

// When returns the observation instant.
func (p CategoryPoint) When() time.Time { return p.Timestamp }

// Period is a half-open time window a source is queried for.
type Period struct {
	From time.Time
	To   time.Time
}

// NetworkInfo is the decoded gateway network-info response.
type NetworkInfo struct {
	Network string `json:"network"`
	Version int    `json:"version"`
	Height  int64  `json:"height"`
	Blocks  int64  `json:"blocks"`
	Peers   int    `json:"peers"`
}
