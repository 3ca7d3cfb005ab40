package model

// TrackMark represents a single annotation event: the operator pressed the
// recorder's track-mark button while audio was rolling.
type TrackMark struct {
	Offset float64 `json:"offset"` // Seconds from the start of the owning recording
}

// MarkerSequence is the ordered list of track marks for one recording.
// The recorder appends marks as they happen, so offsets are strictly
// increasing; everything downstream relies on that order.
type MarkerSequence []TrackMark
