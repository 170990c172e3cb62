package model

import "time"

// CollectStats summarizes one collection pass.
type CollectStats struct {
	PairsAttempted   int  `json:"pairs_attempted"`
	PairsSucceeded   int  `json:"pairs_succeeded"`
	QuotesAttempted  int  `json:"quotes_attempted"`
	QuotesSucceeded  int  `json:"quotes_succeeded"`
	QuotesFailed     int  `json:"quotes_failed"`
	QuotesVoid       int  `json:"quotes_void"`
	QuotesThin       int  `json:"quotes_thin"`
	DeadlineExceeded bool `json:"deadline_exceeded"`
}

// CollectResult is the output of one collection pass.
type CollectResult struct {
	Quotes   QuoteSet
	Stats    CollectStats
	Failures []Failure
	// Block is the block every quote was pinned to, 0 when quoting at latest.
	Block uint64
}

// ScanCycle is the sealed record of one scan cycle.
type ScanCycle struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Block     uint64    `json:"block,omitempty"`
	CollectStats
	DirectCandidates     int         `json:"direct_candidates"`
	TriangularCandidates int         `json:"triangular_candidates"`
	Opportunities        []TradePlan `json:"opportunities"`
}

// Duration returns the wall time the cycle took.
func (c ScanCycle) Duration() time.Duration {
	return c.EndedAt.Sub(c.StartedAt)
}
