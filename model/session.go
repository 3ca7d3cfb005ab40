package model

import "time"

// SessionRecord is the catalog row for one processed recording session,
// together with the intervals that were resolved from its annotations and
// the clips that were exported.
type SessionRecord struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	SourcePrefix string           `json:"sourcePrefix"`
	SegmentCount int              `json:"segmentCount"`
	MarkerCount  int              `json:"markerCount"`
	Duration     float64          `json:"duration"` // Seconds
	CreatedAt    time.Time        `json:"createdAt"`
	ProcessedAt  time.Time        `json:"processedAt"`
	Intervals    []IntervalRecord `json:"intervals,omitempty"`
	Exports      []ExportRecord   `json:"exports,omitempty"`
}

// IntervalRecord is one resolved annotation interval, kept even for
// patterns that are never exported so the catalog stays a faithful audit
// of what the operator marked.
type IntervalRecord struct {
	ID        int64   `json:"id"`
	SessionID int64   `json:"sessionId"`
	Pattern   string  `json:"pattern"`
	StartSec  float64 `json:"startSec"`
	EndSec    float64 `json:"endSec"`
}

// ExportRecord is one clip written by the exporter.
type ExportRecord struct {
	ID        int64   `json:"id"`
	SessionID int64   `json:"sessionId"`
	Pattern   string  `json:"pattern"`
	Sequence  int     `json:"sequence"`
	Path      string  `json:"path"`
	StartSec  float64 `json:"startSec"`
	EndSec    float64 `json:"endSec"`
}
