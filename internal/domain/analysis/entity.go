package analysis

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// GraphCounts value object, summarizes what the builder produced
type GraphCounts struct {
	Nodes         int `json:"nodes"`
	Relationships int `json:"relationships"`
	Files         int `json:"files"`
}

// Aggregate Root: Analysis
//
// Only run metadata lives here; the graph itself is returned to the
// caller and never stored.
type Analysis struct {
	ID            AnalysisID  `json:"id"`
	RepositoryURL string      `json:"repository_url"`
	TriggeredAt   time.Time   `json:"triggered_at"`
	Status        Status      `json:"status"`
	Counts        GraphCounts `json:"counts"`
	DurationMS    int64       `json:"duration_ms"`
	Error         string      `json:"error,omitempty"`
}
